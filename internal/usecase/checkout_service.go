package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	domainErrors "github.com/Douglas360/auction-intel-estate-sub000/internal/domain/errors"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutURLs are the redirect targets handed to the provider.
type CheckoutURLs struct {
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

type CheckoutInput struct {
	UserID        uuid.UUID
	Email         string
	PlanID        uuid.UUID
	Interval      entity.BillingInterval
	PromotionCode string
}

// CheckoutResult is where the client should be sent. Portal is true when
// the user already subscribes and gets the billing portal instead.
type CheckoutResult struct {
	URL    string `json:"url"`
	Portal bool   `json:"portal"`
}

// CheckoutService starts checkouts and portal sessions. It never writes
// local state; rows appear once the provider reports the checkout.
type CheckoutService struct {
	subscriptions repository.SubscriptionRepository
	plans         repository.PlanRepository
	provider      provider.CheckoutProvider
	urls          CheckoutURLs
	logger        *zap.Logger
}

func NewCheckoutService(
	subscriptions repository.SubscriptionRepository,
	plans repository.PlanRepository,
	billing provider.CheckoutProvider,
	urls CheckoutURLs,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		subscriptions: subscriptions,
		plans:         plans,
		provider:      billing,
		urls:          urls,
		logger:        logger,
	}
}

// StartCheckout returns a checkout URL for the plan and interval, or a
// portal URL when the user is already active.
func (s *CheckoutService) StartCheckout(ctx context.Context, in CheckoutInput) (result *CheckoutResult, err error) {
	defer func() {
		switch {
		case err != nil:
			metrics.CheckoutSessions.WithLabelValues("error").Inc()
		case result.Portal:
			metrics.CheckoutSessions.WithLabelValues("portal").Inc()
		default:
			metrics.CheckoutSessions.WithLabelValues("session").Inc()
		}
	}()

	if !in.Interval.Valid() {
		return nil, domainErrors.ErrInvalidBillingInterval
	}
	log := s.logger.With(zap.String("user_id", in.UserID.String()), zap.String("plan_id", in.PlanID.String()))

	existing, err := s.subscriptions.GetByUserID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if existing.IsActive() && existing.StripeCustomerID != "" {
		url, err := s.provider.CreatePortalSession(ctx, existing.StripeCustomerID, s.urls.PortalReturnURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create portal session: %w", err)
		}
		log.Info("User already subscribed; returning portal session")
		return &CheckoutResult{URL: url, Portal: true}, nil
	}

	plan, err := s.plans.GetByID(ctx, in.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil || !plan.IsActive() {
		return nil, domainErrors.ErrPlanNotFound
	}
	priceID, ok := plan.PriceID(in.Interval)
	if !ok {
		log.Warn("Plan has no provider price for interval", zap.String("interval", string(in.Interval)))
		return nil, domainErrors.ErrPlanNotIntegrated
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, domainErrors.ErrMissingEmail
	}
	customer, err := s.resolveCustomer(ctx, email, in.UserID)
	if err != nil {
		return nil, err
	}

	req := provider.CheckoutRequest{
		CustomerID: customer.ID,
		PriceID:    priceID,
		Metadata: map[string]string{
			provider.MetadataUserID:          in.UserID.String(),
			provider.MetadataPlanID:          plan.ID.String(),
			provider.MetadataBillingInterval: string(in.Interval),
		},
		SuccessURL: s.urls.SuccessURL,
		CancelURL:  s.urls.CancelURL,
	}

	if code := strings.TrimSpace(in.PromotionCode); code != "" {
		promo, err := s.provider.FindPromotionCode(ctx, code)
		if errors.Is(err, provider.ErrNotFound) {
			return nil, domainErrors.ErrPromotionCodeNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up promotion code: %w", err)
		}
		req.PromotionCodeID = promo.ID
	}

	url, err := s.provider.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	log.Info("Checkout session created",
		zap.String("customer_id", customer.ID),
		zap.String("price_id", priceID),
		zap.Bool("promotion", req.PromotionCodeID != ""))
	return &CheckoutResult{URL: url}, nil
}

// PortalURL opens a billing portal session for a user who has a customer.
func (s *CheckoutService) PortalURL(ctx context.Context, userID uuid.UUID) (string, error) {
	sub, err := s.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil || sub.StripeCustomerID == "" {
		return "", domainErrors.ErrNoCustomer
	}

	url, err := s.provider.CreatePortalSession(ctx, sub.StripeCustomerID, s.urls.PortalReturnURL)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return url, nil
}

func (s *CheckoutService) resolveCustomer(ctx context.Context, email string, userID uuid.UUID) (*provider.Customer, error) {
	customer, err := s.provider.FindCustomerByEmail(ctx, email)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, provider.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	customer, err = s.provider.CreateCustomer(ctx, email, map[string]string{
		provider.MetadataUserID: userID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	s.logger.Info("Created billing customer",
		zap.String("user_id", userID.String()),
		zap.String("customer_id", customer.ID))
	return customer, nil
}
