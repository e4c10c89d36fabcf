package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
)

// SubscriptionPlan is a purchasable tier.
type SubscriptionPlan struct {
	ID                   uuid.UUID       `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	MonthlyPrice         decimal.Decimal `json:"monthly_price"`
	AnnualPrice          decimal.Decimal `json:"annual_price"`
	Currency             string          `json:"currency"`
	Benefits             []string        `json:"benefits"`
	Status               PlanStatus      `json:"status"`
	SortOrder            int             `json:"sort_order"`
	StripeProductID      *string         `json:"stripe_product_id,omitempty"`
	StripeMonthlyPriceID *string         `json:"stripe_price_id_monthly,omitempty"`
	StripeAnnualPriceID  *string         `json:"stripe_price_id_annual,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// PriceID returns the provider price for interval, or false while the plan
// is not yet integrated with billing.
func (p *SubscriptionPlan) PriceID(interval BillingInterval) (string, bool) {
	var id *string
	switch interval {
	case IntervalMonth:
		id = p.StripeMonthlyPriceID
	case IntervalYear:
		id = p.StripeAnnualPriceID
	}
	if id == nil || *id == "" {
		return "", false
	}
	return *id, true
}

func (p *SubscriptionPlan) IsActive() bool {
	return p.Status == PlanStatusActive
}

// NormalizeBenefits turns the shapes benefits have been stored in (a list,
// a JSON-encoded list inside a string, a single string) into one ordered
// list. Blank entries are dropped.
func NormalizeBenefits(raw interface{}) []string {
	out := []string{}
	switch v := raw.(type) {
	case nil:
	case []string:
		for _, s := range v {
			out = appendBenefit(out, s)
		}
	case []interface{}:
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = appendBenefit(out, s)
			case nil:
			default:
				out = appendBenefit(out, fmt.Sprint(s))
			}
		}
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "\"") {
			var decoded interface{}
			if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
				return NormalizeBenefits(decoded)
			}
		}
		out = appendBenefit(out, trimmed)
	case []byte:
		var decoded interface{}
		if err := json.Unmarshal(v, &decoded); err != nil {
			return NormalizeBenefits(string(v))
		}
		return NormalizeBenefits(decoded)
	case json.RawMessage:
		return NormalizeBenefits([]byte(v))
	default:
		out = appendBenefit(out, fmt.Sprint(v))
	}
	return out
}

func appendBenefit(list []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return list
	}
	return append(list, s)
}
