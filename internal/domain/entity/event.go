package entity

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionChanged is published after a reconciliation writes a row.
type SubscriptionChanged struct {
	UserID               uuid.UUID       `json:"user_id"`
	PlanID               *uuid.UUID      `json:"plan_id,omitempty"`
	StripeSubscriptionID string          `json:"stripe_subscription_id,omitempty"`
	Status               string          `json:"status"`
	Active               bool            `json:"active"`
	CurrentPeriodEnd     *time.Time      `json:"current_period_end,omitempty"`
	BillingInterval      BillingInterval `json:"billing_interval,omitempty"`
	Source               string          `json:"source"`
	OccurredAt           time.Time       `json:"occurred_at"`
}
