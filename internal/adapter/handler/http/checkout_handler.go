package http

import (
	"context"
	"net/http"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/middleware/auth"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CheckoutStarter interface {
	StartCheckout(ctx context.Context, in usecase.CheckoutInput) (*usecase.CheckoutResult, error)
	PortalURL(ctx context.Context, userID uuid.UUID) (string, error)
}

type CheckoutHandler struct {
	checkout CheckoutStarter
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout CheckoutStarter, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger,
	}
}

type CreateCheckoutRequest struct {
	PlanID          string `json:"plan_id" validate:"required,uuid"`
	BillingInterval string `json:"billing_interval" validate:"required,oneof=month year"`
	PromotionCode   string `json:"promotion_code" validate:"omitempty,max=64"`
}

// CreateCheckout answers {url, portal}. portal is true when the user
// already subscribes and the url opens the billing portal.
func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return errors.NewAppError(errors.ErrUnauthenticated, "Authentication required", err)
	}

	var req CreateCheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	planID, _ := uuid.Parse(req.PlanID)

	h.logger.Info("Creating checkout session...",
		zap.String("user_id", user.UserID.String()),
		zap.String("plan_id", req.PlanID),
		zap.String("interval", req.BillingInterval))

	result, err := h.checkout.StartCheckout(c.Request().Context(), usecase.CheckoutInput{
		UserID:        user.UserID,
		Email:         user.Email,
		PlanID:        planID,
		Interval:      entity.BillingInterval(req.BillingInterval),
		PromotionCode: req.PromotionCode,
	})
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) CreatePortalSession(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return errors.NewAppError(errors.ErrUnauthenticated, "Authentication required", err)
	}

	url, err := h.checkout.PortalURL(c.Request().Context(), user.UserID)
	if err != nil {
		return toAppError(err)
	}

	h.logger.Info("Portal session created", zap.String("user_id", user.UserID.String()))
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}
