package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubscriptionPlan is the subscription_plans row.
type SubscriptionPlan struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Title                string          `gorm:"size:200;not null;uniqueIndex"`
	Description          string          `gorm:"type:text"`
	MonthlyPrice         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AnnualPrice          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency             string          `gorm:"size:3;not null;default:'usd'"`
	Benefits             Benefits        `gorm:"type:jsonb;not null"`
	Status               string          `gorm:"size:16;not null;default:'active';index"`
	SortOrder            int             `gorm:"not null;default:0"`
	StripeProductID      *string         `gorm:"size:100"`
	StripeMonthlyPriceID *string         `gorm:"column:stripe_price_id_monthly;size:100"`
	StripeAnnualPriceID  *string         `gorm:"column:stripe_price_id_annual;size:100"`
	CreatedAt            time.Time       `gorm:"not null"`
	UpdatedAt            time.Time       `gorm:"not null"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (p *SubscriptionPlan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}
