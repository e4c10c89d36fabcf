package provider

import (
	"context"
	"errors"
	"time"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the provider reports the resource does
	// not exist. Callers treat it differently from every other failure.
	ErrNotFound = errors.New("billing provider: resource not found")

	// ErrInvalidSignature is returned for webhook payloads that fail
	// verification.
	ErrInvalidSignature = errors.New("billing provider: invalid webhook signature")
)

// Event types the reconciler acts on. Everything else is acknowledged.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
)

// Metadata keys written on checkout sessions.
const (
	MetadataUserID          = "user_id"
	MetadataPlanID          = "plan_id"
	MetadataBillingInterval = "billing_interval"
)

// Subscription is the provider's view of a subscription.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	Interval           entity.BillingInterval
	Discount           *entity.Discount
	Metadata           map[string]string
	// ObservedAt is the creation time of the event that carried this
	// state. Zero for subscriptions read directly from the provider.
	ObservedAt time.Time
}

// CheckoutSession is a completed checkout as delivered by webhook.
type CheckoutSession struct {
	ID             string
	CustomerID     string
	CustomerEmail  string
	SubscriptionID string
	Metadata       map[string]string
}

// Event is a verified webhook delivery. At most one of CheckoutSession and
// Subscription is set, depending on Type.
type Event struct {
	ID              string
	Type            string
	APIVersion      string
	Created         time.Time
	Object          map[string]interface{}
	CheckoutSession *CheckoutSession
	Subscription    *Subscription
}

type Customer struct {
	ID    string
	Email string
}

type PromotionCode struct {
	ID       string
	Code     string
	CouponID string
	Active   bool
}

type Price struct {
	ID         string
	ProductID  string
	Interval   entity.BillingInterval
	UnitAmount decimal.Decimal
	Currency   string
	Active     bool
}

type Coupon struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	PercentOff       float64         `json:"percent_off,omitempty"`
	AmountOff        decimal.Decimal `json:"amount_off"`
	Currency         string          `json:"currency,omitempty"`
	Duration         string          `json:"duration"`
	DurationInMonths int64           `json:"duration_in_months,omitempty"`
	Valid            bool            `json:"valid"`
	TimesRedeemed    int64           `json:"times_redeemed"`
	PromotionCodes   []PromotionCode `json:"promotion_codes,omitempty"`
}

type CouponRequest struct {
	Name             string
	PercentOff       float64
	AmountOff        decimal.Decimal
	Currency         string
	Duration         string
	DurationInMonths int64
}

type CheckoutRequest struct {
	CustomerID      string
	PriceID         string
	PromotionCodeID string
	Metadata        map[string]string
	SuccessURL      string
	CancelURL       string
}

// SubscriptionReader is what the reconciler needs from the provider.
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	// LatestSubscription returns the newest subscription of a customer or
	// ErrNotFound.
	LatestSubscription(ctx context.Context, customerID string) (*Subscription, error)
}

type CheckoutProvider interface {
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (*Customer, error)
	FindPromotionCode(ctx context.Context, code string) (*PromotionCode, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

type WebhookVerifier interface {
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type CatalogProvider interface {
	ListPrices(ctx context.Context, productID string) ([]Price, error)
}

type CouponProvider interface {
	ListCoupons(ctx context.Context) ([]Coupon, error)
	CreateCoupon(ctx context.Context, req CouponRequest) (*Coupon, error)
	CreatePromotionCode(ctx context.Context, couponID, code string) (*PromotionCode, error)
}

// BillingProvider is the full provider surface.
type BillingProvider interface {
	SubscriptionReader
	CheckoutProvider
	WebhookVerifier
	CatalogProvider
	CouponProvider
}

// ProviderError carries a provider failure that is neither not-found nor a
// bad signature.
type ProviderError struct {
	Op         string
	Code       string
	HTTPStatus int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := "billing provider " + e.Op + " failed"
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }
