package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserSubscription is the user_subscriptions row. user_id is unique so the
// webhook path can upsert on it.
type UserSubscription struct {
	ID                    uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID                uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_user_subscriptions_user_id"`
	SubscriptionPlanID    *uuid.UUID       `gorm:"type:uuid;index"`
	StripeCustomerID      string           `gorm:"size:100;not null;default:''"`
	StripeSubscriptionID  *string          `gorm:"size:100"`
	Status                string           `gorm:"size:32;not null;default:'inactive'"`
	CurrentPeriodStart    *time.Time
	CurrentPeriodEnd      *time.Time
	CancelAtPeriodEnd     bool             `gorm:"not null;default:false"`
	BillingInterval       string           `gorm:"size:10"`
	DiscountCouponID      *string          `gorm:"size:100"`
	DiscountPromotionCode *string          `gorm:"column:discount_promotion_code_id;size:100"`
	DiscountKind          *string          `gorm:"size:16"`
	DiscountMagnitude     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	DiscountCurrency      *string          `gorm:"size:3"`
	CreatedAt             time.Time        `gorm:"not null"`
	UpdatedAt             time.Time        `gorm:"not null"`
}

// BeforeCreate assigns the primary key so inserts never depend on a
// database default.
func (s *UserSubscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
