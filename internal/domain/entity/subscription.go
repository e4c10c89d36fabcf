package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subscription statuses written by this service. Any other provider status
// (past_due, canceled, unpaid, ...) is stored verbatim.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type BillingInterval string

const (
	IntervalMonth BillingInterval = "month"
	IntervalYear  BillingInterval = "year"
)

// Valid reports whether i is month or year.
func (i BillingInterval) Valid() bool {
	return i == IntervalMonth || i == IntervalYear
}

type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountAmount  DiscountKind = "amount"
)

// Discount describes the coupon applied to a subscription. Magnitude is a
// percentage for DiscountPercent and a major-unit amount for DiscountAmount.
type Discount struct {
	CouponID        string          `json:"coupon_id"`
	PromotionCodeID string          `json:"promotion_code_id,omitempty"`
	Kind            DiscountKind    `json:"kind"`
	Magnitude       decimal.Decimal `json:"magnitude"`
	Currency        string          `json:"currency,omitempty"`
}

// UserSubscription mirrors one user's billing relationship. There is at
// most one per user and it is never deleted.
type UserSubscription struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               uuid.UUID       `json:"user_id"`
	PlanID               *uuid.UUID      `json:"subscription_plan_id,omitempty"`
	StripeCustomerID     string          `json:"stripe_customer_id"`
	StripeSubscriptionID *string         `json:"stripe_subscription_id,omitempty"`
	Status               string          `json:"status"`
	CurrentPeriodStart   *time.Time      `json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time      `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool            `json:"cancel_at_period_end"`
	BillingInterval      BillingInterval `json:"billing_interval,omitempty"`
	Discount             *Discount       `json:"discount,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (s *UserSubscription) IsActive() bool {
	return s != nil && s.Status == StatusActive
}

// HasSubscriptionID is false until a checkout has completed.
func (s *UserSubscription) HasSubscriptionID() bool {
	return s.StripeSubscriptionID != nil && *s.StripeSubscriptionID != ""
}

// SubscriptionUpdate is the provider-observed state written over an
// existing row. Discount is only written when SetDiscount is true, and an
// empty BillingInterval leaves the stored interval alone.
type SubscriptionUpdate struct {
	Status             string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
	BillingInterval    BillingInterval
	SetDiscount        bool
	Discount           *Discount
}

// SubscriptionStatus is the entitlement answer returned by the status
// endpoint. It is computed per request and never stored.
type SubscriptionStatus struct {
	Active            bool              `json:"active"`
	Status            string            `json:"status,omitempty"`
	Plan              *SubscriptionPlan `json:"plan"`
	CurrentPeriodEnd  *time.Time        `json:"current_period_end"`
	CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	BillingInterval   *BillingInterval  `json:"billing_interval"`
	Discount          *Discount         `json:"discount,omitempty"`
	Message           string            `json:"message,omitempty"`
}

// InactiveStatus is the answer for anyone without a usable subscription.
func InactiveStatus() *SubscriptionStatus {
	return &SubscriptionStatus{Active: false}
}

// SubscriptionFilter narrows admin listings.
type SubscriptionFilter struct {
	Status string
	PlanID *uuid.UUID
}
