package http

import (
	"context"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/middleware/auth"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) ParseWebhook(payload []byte, signature string) (*provider.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Event), args.Error(1)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) HandleCheckoutCompleted(ctx context.Context, session *provider.CheckoutSession) (usecase.Outcome, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(usecase.Outcome), args.Error(1)
}

func (m *MockProcessor) HandleSubscriptionUpdated(ctx context.Context, sub *provider.Subscription) (usecase.Outcome, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(usecase.Outcome), args.Error(1)
}

func (m *MockProcessor) HandleSubscriptionDeleted(ctx context.Context, sub *provider.Subscription) (usecase.Outcome, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(usecase.Outcome), args.Error(1)
}

type MockEventLog struct {
	mock.Mock
}

func (m *MockEventLog) Record(ctx context.Context, event repository.WebhookEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventLog) MarkCompleted(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

func (m *MockEventLog) MarkIgnored(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

func (m *MockEventLog) MarkFailed(ctx context.Context, eventID string, cause error) error {
	return m.Called(ctx, eventID, cause).Error(0)
}

type MockStatusChecker struct {
	mock.Mock
}

func (m *MockStatusChecker) CheckStatus(ctx context.Context, userID *uuid.UUID) *entity.SubscriptionStatus {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*entity.SubscriptionStatus)
}

type MockCheckout struct {
	mock.Mock
}

func (m *MockCheckout) StartCheckout(ctx context.Context, in usecase.CheckoutInput) (*usecase.CheckoutResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CheckoutResult), args.Error(1)
}

func (m *MockCheckout) PortalURL(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, userID uuid.UUID) (*entity.SubscriptionStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SubscriptionStatus), args.Error(1)
}

// newTestEcho mirrors the production error handling and validation.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = errors.NewHTTPErrorHandler(zap.NewNop())
	e.Validator = NewRequestValidator()
	return e
}

// withUser fakes an authenticated request without minting a token.
func withUser(user *auth.AuthUser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user != nil {
				ctx := auth.ContextWithUser(c.Request().Context(), user)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}
