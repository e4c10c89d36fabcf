package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/metrics"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"
)

// Config configures the Stripe client.
type Config struct {
	SecretKey         string
	WebhookSecret     string
	Timeout           time.Duration
	MaxNetworkRetries int64
	// BaseURL overrides the API endpoint; used by tests.
	BaseURL string
}

// StripeProvider implements provider.BillingProvider on the Stripe API.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

var _ provider.BillingProvider = (*StripeProvider)(nil)

// NewStripeProvider builds a client whose every call is bounded by
// cfg.Timeout.
func NewStripeProvider(cfg Config, logger *zap.Logger) *StripeProvider {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		LeveledLogger:     logger.Named("stripe").Sugar(),
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, stripe.NewBackendsWithConfig(backendCfg))

	return &StripeProvider{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}
}

// GetSubscription retrieves a subscription by id.
func (s *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (sub *provider.Subscription, err error) {
	defer observe("get_subscription", time.Now(), &err)

	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	raw, err := s.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, wrapError("get_subscription", err)
	}
	return toSubscription(raw), nil
}

// LatestSubscription returns the most recently created subscription of a
// customer, whatever its status.
func (s *StripeProvider) LatestSubscription(ctx context.Context, customerID string) (sub *provider.Subscription, err error) {
	defer observe("list_subscriptions", time.Now(), &err)

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := s.api.Subscriptions.List(params)
	if iter.Next() {
		return toSubscription(iter.Subscription()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapError("list_subscriptions", err)
	}
	return nil, fmt.Errorf("no subscription for customer %s: %w", customerID, provider.ErrNotFound)
}

func (s *StripeProvider) FindCustomerByEmail(ctx context.Context, email string) (c *provider.Customer, err error) {
	defer observe("find_customer", time.Now(), &err)

	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := s.api.Customers.List(params)
	if iter.Next() {
		cust := iter.Customer()
		return &provider.Customer{ID: cust.ID, Email: cust.Email}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapError("find_customer", err)
	}
	return nil, fmt.Errorf("no customer with email: %w", provider.ErrNotFound)
}

func (s *StripeProvider) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (c *provider.Customer, err error) {
	defer observe("create_customer", time.Now(), &err)

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	cust, err := s.api.Customers.New(params)
	if err != nil {
		return nil, wrapError("create_customer", err)
	}
	s.logger.Info("Created Stripe customer", zap.String("customer_id", cust.ID))
	return &provider.Customer{ID: cust.ID, Email: cust.Email}, nil
}

// FindPromotionCode looks up an active promotion code by the code a
// customer typed.
func (s *StripeProvider) FindPromotionCode(ctx context.Context, code string) (pc *provider.PromotionCode, err error) {
	defer observe("find_promotion_code", time.Now(), &err)

	params := &stripe.PromotionCodeListParams{
		Code:   stripe.String(code),
		Active: stripe.Bool(true),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := s.api.PromotionCodes.List(params)
	if iter.Next() {
		return toPromotionCode(iter.PromotionCode()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapError("find_promotion_code", err)
	}
	return nil, fmt.Errorf("promotion code %q: %w", code, provider.ErrNotFound)
}

// CreateCheckoutSession starts a subscription checkout. A resolved
// promotion code is applied directly; otherwise the customer may enter one
// on the hosted page.
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, req provider.CheckoutRequest) (url string, err error) {
	defer observe("create_checkout_session", time.Now(), &err)

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(req.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: req.Metadata,
		},
	}
	params.Context = ctx
	if userID, ok := req.Metadata[provider.MetadataUserID]; ok {
		params.ClientReferenceID = stripe.String(userID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.PromotionCodeID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{PromotionCode: stripe.String(req.PromotionCodeID)},
		}
	} else {
		params.AllowPromotionCodes = stripe.Bool(true)
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", wrapError("create_checkout_session", err)
	}
	s.logger.Info("Created checkout session",
		zap.String("session_id", sess.ID),
		zap.String("customer_id", req.CustomerID),
		zap.String("price_id", req.PriceID),
	)
	return sess.URL, nil
}

func (s *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (url string, err error) {
	defer observe("create_portal_session", time.Now(), &err)

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", wrapError("create_portal_session", err)
	}
	return sess.URL, nil
}

// ListPrices returns the active recurring prices of a product.
func (s *StripeProvider) ListPrices(ctx context.Context, productID string) (prices []provider.Price, err error) {
	defer observe("list_prices", time.Now(), &err)

	params := &stripe.PriceListParams{
		Product: stripe.String(productID),
		Active:  stripe.Bool(true),
		Type:    stripe.String(string(stripe.PriceTypeRecurring)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	iter := s.api.Prices.List(params)
	for iter.Next() {
		prices = append(prices, toPrice(iter.Price()))
	}
	if err := iter.Err(); err != nil {
		return nil, wrapError("list_prices", err)
	}
	return prices, nil
}

// ListCoupons returns every coupon with its promotion codes.
func (s *StripeProvider) ListCoupons(ctx context.Context) (coupons []provider.Coupon, err error) {
	defer observe("list_coupons", time.Now(), &err)

	params := &stripe.CouponListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	iter := s.api.Coupons.List(params)
	for iter.Next() {
		coupons = append(coupons, toCoupon(iter.Coupon()))
	}
	if err := iter.Err(); err != nil {
		return nil, wrapError("list_coupons", err)
	}

	for i := range coupons {
		codes, err := s.listPromotionCodes(ctx, coupons[i].ID)
		if err != nil {
			return nil, err
		}
		coupons[i].PromotionCodes = codes
	}
	return coupons, nil
}

func (s *StripeProvider) listPromotionCodes(ctx context.Context, couponID string) ([]provider.PromotionCode, error) {
	params := &stripe.PromotionCodeListParams{Coupon: stripe.String(couponID)}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var codes []provider.PromotionCode
	iter := s.api.PromotionCodes.List(params)
	for iter.Next() {
		codes = append(codes, *toPromotionCode(iter.PromotionCode()))
	}
	if err := iter.Err(); err != nil {
		return nil, wrapError("list_promotion_codes", err)
	}
	return codes, nil
}

func (s *StripeProvider) CreateCoupon(ctx context.Context, req provider.CouponRequest) (c *provider.Coupon, err error) {
	defer observe("create_coupon", time.Now(), &err)

	params := &stripe.CouponParams{
		Duration: stripe.String(req.Duration),
	}
	params.Context = ctx
	if req.Name != "" {
		params.Name = stripe.String(req.Name)
	}
	if req.PercentOff > 0 {
		params.PercentOff = stripe.Float64(req.PercentOff)
	} else {
		params.AmountOff = stripe.Int64(toMinorUnits(req.AmountOff, req.Currency))
		params.Currency = stripe.String(req.Currency)
	}
	if req.DurationInMonths > 0 {
		params.DurationInMonths = stripe.Int64(req.DurationInMonths)
	}

	coupon, err := s.api.Coupons.New(params)
	if err != nil {
		return nil, wrapError("create_coupon", err)
	}
	out := toCoupon(coupon)
	return &out, nil
}

func (s *StripeProvider) CreatePromotionCode(ctx context.Context, couponID, code string) (pc *provider.PromotionCode, err error) {
	defer observe("create_promotion_code", time.Now(), &err)

	params := &stripe.PromotionCodeParams{
		Coupon: stripe.String(couponID),
		Code:   stripe.String(code),
	}
	params.Context = ctx

	promo, err := s.api.PromotionCodes.New(params)
	if err != nil {
		return nil, wrapError("create_promotion_code", err)
	}
	return toPromotionCode(promo), nil
}

func observe(op string, start time.Time, err *error) {
	metrics.ObserveProviderCall(op, start, *err)
}

// wrapError maps resource_missing and 404 to provider.ErrNotFound and
// everything else to a *provider.ProviderError.
func wrapError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%s: %s: %w", op, stripeErr.Msg, provider.ErrNotFound)
		}
		return &provider.ProviderError{
			Op:         op,
			Code:       string(stripeErr.Code),
			HTTPStatus: stripeErr.HTTPStatusCode,
			Err:        err,
		}
	}
	return &provider.ProviderError{Op: op, Err: err}
}
