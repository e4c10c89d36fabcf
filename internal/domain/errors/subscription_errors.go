package errors

import "errors"

var (
	// ErrPlanNotFound indicates the plan does not exist or is not offered.
	ErrPlanNotFound = errors.New("subscription plan not found")

	// ErrPlanNotIntegrated indicates the plan has no provider price for the
	// requested interval yet.
	ErrPlanNotIntegrated = errors.New("subscription plan is not integrated with billing")

	ErrInvalidBillingInterval = errors.New("billing interval must be month or year")

	// ErrNoCustomer indicates the user has never started a checkout.
	ErrNoCustomer = errors.New("no billing customer for user")

	ErrSubscriptionNotFound = errors.New("subscription not found")

	ErrPromotionCodeNotFound = errors.New("promotion code not found")

	// ErrMissingEmail indicates the caller's identity carries no email to
	// key the provider customer on.
	ErrMissingEmail = errors.New("user email is required for checkout")
)
