package http

import (
	"context"
	"net/http"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CouponManager interface {
	List(ctx context.Context) ([]provider.Coupon, error)
	Create(ctx context.Context, in usecase.CouponInput) (*provider.Coupon, error)
}

type SubscriptionLister interface {
	List(ctx context.Context, filter entity.SubscriptionFilter, page entity.PaginationParams) (*entity.PaginatedSubscriptions, error)
}

type UserReconciler interface {
	Reconcile(ctx context.Context, userID uuid.UUID) (*entity.SubscriptionStatus, error)
}

// AdminHandler serves the back-office routes behind the admin role.
type AdminHandler struct {
	coupons       CouponManager
	subscriptions SubscriptionLister
	reconciler    UserReconciler
	logger        *zap.Logger
}

func NewAdminHandler(coupons CouponManager, subscriptions SubscriptionLister, reconciler UserReconciler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		coupons:       coupons,
		subscriptions: subscriptions,
		reconciler:    reconciler,
		logger:        logger,
	}
}

type CreateCouponRequest struct {
	Name             string          `json:"name" validate:"max=40"`
	PercentOff       float64         `json:"percent_off" validate:"gte=0,lte=100"`
	AmountOff        decimal.Decimal `json:"amount_off"`
	Currency         string          `json:"currency" validate:"omitempty,len=3"`
	Duration         string          `json:"duration" validate:"required,oneof=once forever repeating"`
	DurationInMonths int64           `json:"duration_in_months" validate:"gte=0"`
	PromotionCode    string          `json:"promotion_code" validate:"omitempty,alphanum,max=64"`
}

func (h *AdminHandler) ListCoupons(c echo.Context) error {
	coupons, err := h.coupons.List(c.Request().Context())
	if err != nil {
		return toAppError(err)
	}
	if coupons == nil {
		coupons = []provider.Coupon{}
	}
	return c.JSON(http.StatusOK, echo.Map{"coupons": coupons})
}

func (h *AdminHandler) CreateCoupon(c echo.Context) error {
	var req CreateCouponRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	coupon, err := h.coupons.Create(c.Request().Context(), usecase.CouponInput{
		Name:             req.Name,
		PercentOff:       req.PercentOff,
		AmountOff:        req.AmountOff,
		Currency:         req.Currency,
		Duration:         req.Duration,
		DurationInMonths: req.DurationInMonths,
		PromotionCode:    req.PromotionCode,
	})
	if err != nil {
		return toAppError(err)
	}
	h.logger.Info("Coupon created by admin", zap.String("coupon_id", coupon.ID))
	return c.JSON(http.StatusCreated, coupon)
}

type ListSubscriptionsQuery struct {
	Status string `query:"status"`
	PlanID string `query:"plan_id"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

func (h *AdminHandler) ListSubscriptions(c echo.Context) error {
	var q ListSubscriptionsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return errors.NewAppError(errors.ErrInvalidArgument, "Invalid query parameters", err)
	}

	filter := entity.SubscriptionFilter{Status: q.Status}
	if q.PlanID != "" {
		planID, err := uuid.Parse(q.PlanID)
		if err != nil {
			return errors.NewAppError(errors.ErrInvalidArgument, "plan_id must be a UUID", err)
		}
		filter.PlanID = &planID
	}

	page, err := h.subscriptions.List(c.Request().Context(), filter, entity.PaginationParams{Page: q.Page, Limit: q.Limit})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ReconcileUser runs the pull path for any user and reports failures,
// unlike the public status endpoint.
func (h *AdminHandler) ReconcileUser(c echo.Context) error {
	userID, err := pathUUID(c, "user_id")
	if err != nil {
		return err
	}

	status, err := h.reconciler.Reconcile(c.Request().Context(), userID)
	if err != nil {
		h.logger.Warn("Admin reconcile failed", zap.String("user_id", userID.String()), zap.Error(err))
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, status)
}
