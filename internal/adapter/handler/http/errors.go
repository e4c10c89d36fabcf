package http

import (
	"context"

	domainErrors "github.com/Douglas360/auction-intel-estate-sub000/internal/domain/errors"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/errors"
)

var domainErrorCodes = []struct {
	err  error
	code string
}{
	{domainErrors.ErrInvalidBillingInterval, errors.ErrInvalidArgument},
	{domainErrors.ErrMissingEmail, errors.ErrInvalidArgument},
	{usecase.ErrInvalidCoupon, errors.ErrInvalidArgument},
	{usecase.ErrInvalidDuration, errors.ErrInvalidArgument},
	{domainErrors.ErrPlanNotFound, errors.ErrNotFound},
	{domainErrors.ErrPromotionCodeNotFound, errors.ErrNotFound},
	{domainErrors.ErrNoCustomer, errors.ErrNotFound},
	{domainErrors.ErrSubscriptionNotFound, errors.ErrNotFound},
	{domainErrors.ErrPlanNotIntegrated, errors.ErrConflict},
}

// toAppError gives usecase errors their HTTP-facing code. Deadlines become
// 504, provider failures 502; anything unrecognized stays internal.
func toAppError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.NewAppError(errors.ErrTimeout, "request timed out", err)
	}
	for _, m := range domainErrorCodes {
		if errors.Is(err, m.err) {
			return errors.NewAppError(m.code, m.err.Error(), err)
		}
	}
	var providerErr *provider.ProviderError
	if errors.As(err, &providerErr) || errors.Is(err, provider.ErrNotFound) {
		return errors.NewAppError(errors.ErrUpstream, "billing provider unavailable", err)
	}
	return err
}
