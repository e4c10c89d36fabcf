package repository

import (
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/model"
)

func subscriptionToEntity(m *model.UserSubscription) *entity.UserSubscription {
	return &entity.UserSubscription{
		ID:                   m.ID,
		UserID:               m.UserID,
		PlanID:               m.SubscriptionPlanID,
		StripeCustomerID:     m.StripeCustomerID,
		StripeSubscriptionID: m.StripeSubscriptionID,
		Status:               m.Status,
		CurrentPeriodStart:   m.CurrentPeriodStart,
		CurrentPeriodEnd:     m.CurrentPeriodEnd,
		CancelAtPeriodEnd:    m.CancelAtPeriodEnd,
		BillingInterval:      entity.BillingInterval(m.BillingInterval),
		Discount:             discountFromColumns(m),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func subscriptionToModel(e *entity.UserSubscription) *model.UserSubscription {
	m := discountColumns(e.Discount)
	m.ID = e.ID
	m.UserID = e.UserID
	m.SubscriptionPlanID = e.PlanID
	m.StripeCustomerID = e.StripeCustomerID
	m.StripeSubscriptionID = e.StripeSubscriptionID
	m.Status = e.Status
	m.CurrentPeriodStart = e.CurrentPeriodStart
	m.CurrentPeriodEnd = e.CurrentPeriodEnd
	m.CancelAtPeriodEnd = e.CancelAtPeriodEnd
	m.BillingInterval = string(e.BillingInterval)
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
	return m
}

// discountColumns returns a model holding only the discount columns; all
// nil when d is nil so a removed coupon clears them.
func discountColumns(d *entity.Discount) *model.UserSubscription {
	m := &model.UserSubscription{}
	if d == nil {
		return m
	}
	kind := string(d.Kind)
	magnitude := d.Magnitude
	m.DiscountCouponID = &d.CouponID
	m.DiscountKind = &kind
	m.DiscountMagnitude = &magnitude
	if d.PromotionCodeID != "" {
		m.DiscountPromotionCode = &d.PromotionCodeID
	}
	if d.Currency != "" {
		m.DiscountCurrency = &d.Currency
	}
	return m
}

func discountFromColumns(m *model.UserSubscription) *entity.Discount {
	if m.DiscountCouponID == nil || *m.DiscountCouponID == "" {
		return nil
	}
	d := &entity.Discount{CouponID: *m.DiscountCouponID}
	if m.DiscountPromotionCode != nil {
		d.PromotionCodeID = *m.DiscountPromotionCode
	}
	if m.DiscountKind != nil {
		d.Kind = entity.DiscountKind(*m.DiscountKind)
	}
	if m.DiscountMagnitude != nil {
		d.Magnitude = *m.DiscountMagnitude
	}
	if m.DiscountCurrency != nil {
		d.Currency = *m.DiscountCurrency
	}
	return d
}

func planToEntity(m *model.SubscriptionPlan) *entity.SubscriptionPlan {
	benefits := []string(m.Benefits)
	if benefits == nil {
		benefits = []string{}
	}
	return &entity.SubscriptionPlan{
		ID:                   m.ID,
		Title:                m.Title,
		Description:          m.Description,
		MonthlyPrice:         m.MonthlyPrice,
		AnnualPrice:          m.AnnualPrice,
		Currency:             m.Currency,
		Benefits:             benefits,
		Status:               entity.PlanStatus(m.Status),
		SortOrder:            m.SortOrder,
		StripeProductID:      m.StripeProductID,
		StripeMonthlyPriceID: m.StripeMonthlyPriceID,
		StripeAnnualPriceID:  m.StripeAnnualPriceID,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func planToModel(e *entity.SubscriptionPlan) *model.SubscriptionPlan {
	return &model.SubscriptionPlan{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		MonthlyPrice:         e.MonthlyPrice,
		AnnualPrice:          e.AnnualPrice,
		Currency:             e.Currency,
		Benefits:             model.Benefits(entity.NormalizeBenefits(e.Benefits)),
		Status:               string(e.Status),
		SortOrder:            e.SortOrder,
		StripeProductID:      e.StripeProductID,
		StripeMonthlyPriceID: e.StripeMonthlyPriceID,
		StripeAnnualPriceID:  e.StripeAnnualPriceID,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}
