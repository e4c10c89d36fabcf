package stripe

import (
	"strings"
	"time"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
)

func toSubscription(sub *stripe.Subscription) *provider.Subscription {
	out := &provider.Subscription{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: unixUTC(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixUTC(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		Metadata:           sub.Metadata,
		Discount:           toDiscount(sub.Discount),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		switch {
		case item.Price != nil && item.Price.Recurring != nil:
			out.Interval = entity.BillingInterval(item.Price.Recurring.Interval)
		case item.Plan != nil:
			out.Interval = entity.BillingInterval(item.Plan.Interval)
		}
	}
	return out
}

// toDiscount returns nil when no coupon is attached.
func toDiscount(d *stripe.Discount) *entity.Discount {
	if d == nil || d.Coupon == nil {
		return nil
	}
	out := &entity.Discount{CouponID: d.Coupon.ID}
	if d.PromotionCode != nil {
		out.PromotionCodeID = d.PromotionCode.ID
	}
	if d.Coupon.PercentOff > 0 {
		out.Kind = entity.DiscountPercent
		out.Magnitude = decimal.NewFromFloat(d.Coupon.PercentOff)
	} else {
		out.Kind = entity.DiscountAmount
		out.Magnitude = fromMinorUnits(d.Coupon.AmountOff, string(d.Coupon.Currency))
		out.Currency = string(d.Coupon.Currency)
	}
	return out
}

func toCheckoutSession(s *stripe.CheckoutSession) *provider.CheckoutSession {
	out := &provider.CheckoutSession{
		ID:            s.ID,
		CustomerEmail: s.CustomerEmail,
		Metadata:      s.Metadata,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Subscription != nil {
		out.SubscriptionID = s.Subscription.ID
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}

func toPromotionCode(p *stripe.PromotionCode) *provider.PromotionCode {
	out := &provider.PromotionCode{ID: p.ID, Code: p.Code, Active: p.Active}
	if p.Coupon != nil {
		out.CouponID = p.Coupon.ID
	}
	return out
}

func toPrice(p *stripe.Price) provider.Price {
	out := provider.Price{
		ID:         p.ID,
		UnitAmount: fromMinorUnits(p.UnitAmount, string(p.Currency)),
		Currency:   string(p.Currency),
		Active:     p.Active,
	}
	if p.Product != nil {
		out.ProductID = p.Product.ID
	}
	if p.Recurring != nil {
		out.Interval = entity.BillingInterval(p.Recurring.Interval)
	}
	return out
}

func toCoupon(c *stripe.Coupon) provider.Coupon {
	return provider.Coupon{
		ID:               c.ID,
		Name:             c.Name,
		PercentOff:       c.PercentOff,
		AmountOff:        fromMinorUnits(c.AmountOff, string(c.Currency)),
		Currency:         string(c.Currency),
		Duration:         string(c.Duration),
		DurationInMonths: c.DurationInMonths,
		Valid:            c.Valid,
		TimesRedeemed:    c.TimesRedeemed,
	}
}

func unixUTC(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// zeroDecimalCurrencies are charged in whole units by Stripe.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

func minorUnitExponent(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return 0
	}
	return 2
}

// Amounts are in the currency's minor unit (cents, or whole yen).
func fromMinorUnits(v int64, currency string) decimal.Decimal {
	return decimal.New(v, -minorUnitExponent(currency))
}

func toMinorUnits(d decimal.Decimal, currency string) int64 {
	return d.Shift(minorUnitExponent(currency)).Round(0).IntPart()
}
