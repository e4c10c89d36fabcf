package model

import (
	"database/sql/driver"
	"time"
)

// WebhookStatus represents the processing status of a webhook
type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusCompleted WebhookStatus = "completed"
	WebhookStatusIgnored   WebhookStatus = "ignored"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// StripeWebhookEvent records each delivered provider event by its id.
type StripeWebhookEvent struct {
	ID                 int64         `gorm:"primaryKey;autoIncrement"`
	StripeEventID      string        `gorm:"size:255;not null;uniqueIndex"`
	EventType          string        `gorm:"size:100;not null;index"`
	Status             WebhookStatus `gorm:"size:16;not null;default:'pending';index"`
	Data               JSONB         `gorm:"type:jsonb"`
	APIVersion         *string       `gorm:"size:32"`
	ProcessingAttempts int           `gorm:"not null;default:0"`
	LastError          *string
	ProcessedAt        *time.Time
	StripeCreatedAt    *time.Time
	CreatedAt          time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (StripeWebhookEvent) TableName() string {
	return "stripe_webhook_events"
}
