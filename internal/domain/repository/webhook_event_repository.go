package repository

import (
	"context"
	"time"
)

// WebhookEvent is the persisted record of one delivery.
type WebhookEvent struct {
	EventID    string
	EventType  string
	APIVersion string
	CreatedAt  time.Time
	Data       map[string]interface{}
}

// WebhookEventRepository records provider deliveries by event id.
type WebhookEventRepository interface {
	// Record stores the event if unseen and reports whether it was
	// already completed by an earlier delivery.
	Record(ctx context.Context, event WebhookEvent) (alreadyCompleted bool, err error)
	MarkCompleted(ctx context.Context, eventID string) error
	MarkIgnored(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, cause error) error
}
