package http

import (
	"context"
	"net/http"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PlanCatalog interface {
	ListPublic(ctx context.Context) ([]*entity.SubscriptionPlan, error)
	ListAll(ctx context.Context) ([]*entity.SubscriptionPlan, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error)
	Create(ctx context.Context, in usecase.PlanInput) (*entity.SubscriptionPlan, error)
	Update(ctx context.Context, id uuid.UUID, in usecase.PlanInput) (*entity.SubscriptionPlan, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type PriceLinker interface {
	LinkPrices(ctx context.Context, planID uuid.UUID) (*entity.SubscriptionPlan, error)
}

type PlansHandler struct {
	plans  PlanCatalog
	linker PriceLinker
	logger *zap.Logger
}

func NewPlansHandler(plans PlanCatalog, linker PriceLinker, logger *zap.Logger) *PlansHandler {
	return &PlansHandler{
		plans:  plans,
		linker: linker,
		logger: logger,
	}
}

type PlanRequest struct {
	Title                string          `json:"title" validate:"required,max=120"`
	Description          string          `json:"description" validate:"max=2000"`
	MonthlyPrice         decimal.Decimal `json:"monthly_price"`
	AnnualPrice          decimal.Decimal `json:"annual_price"`
	Currency             string          `json:"currency" validate:"omitempty,len=3"`
	Benefits             []string        `json:"benefits"`
	SortOrder            int             `json:"sort_order"`
	Status               string          `json:"status" validate:"omitempty,oneof=active inactive"`
	StripeProductID      string          `json:"stripe_product_id"`
	StripeMonthlyPriceID string          `json:"stripe_price_id_monthly"`
	StripeAnnualPriceID  string          `json:"stripe_price_id_annual"`
}

func (r PlanRequest) toInput() (usecase.PlanInput, error) {
	if r.MonthlyPrice.IsNegative() || r.AnnualPrice.IsNegative() {
		return usecase.PlanInput{}, errors.NewAppError(errors.ErrInvalidArgument, "prices must not be negative", nil)
	}
	return usecase.PlanInput{
		Title:                r.Title,
		Description:          r.Description,
		MonthlyPrice:         r.MonthlyPrice,
		AnnualPrice:          r.AnnualPrice,
		Currency:             r.Currency,
		Benefits:             r.Benefits,
		SortOrder:            r.SortOrder,
		Status:               entity.PlanStatus(r.Status),
		StripeProductID:      r.StripeProductID,
		StripeMonthlyPriceID: r.StripeMonthlyPriceID,
		StripeAnnualPriceID:  r.StripeAnnualPriceID,
	}, nil
}

// GetPlans lists the plans on sale
func (h *PlansHandler) GetPlans(c echo.Context) error {
	plans, err := h.plans.ListPublic(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"plans": nonNilPlans(plans)})
}

// ListAllPlans includes inactive plans
func (h *PlansHandler) ListAllPlans(c echo.Context) error {
	plans, err := h.plans.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"plans": nonNilPlans(plans)})
}

func (h *PlansHandler) GetPlan(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	plan, err := h.plans.Get(c.Request().Context(), id)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *PlansHandler) CreatePlan(c echo.Context) error {
	var req PlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	plan, err := h.plans.Create(c.Request().Context(), in)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusCreated, plan)
}

func (h *PlansHandler) UpdatePlan(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req PlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	plan, err := h.plans.Update(c.Request().Context(), id, in)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

// DeletePlan only deactivates; rows keep referencing the plan.
func (h *PlansHandler) DeletePlan(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.plans.Deactivate(c.Request().Context(), id); err != nil {
		return toAppError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PlansHandler) SyncPlanPrices(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	plan, err := h.linker.LinkPrices(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Failed to link plan prices", zap.String("plan_id", id.String()), zap.Error(err))
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func nonNilPlans(plans []*entity.SubscriptionPlan) []*entity.SubscriptionPlan {
	if plans == nil {
		return []*entity.SubscriptionPlan{}
	}
	return plans
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.NewAppError(errors.ErrInvalidArgument, name+" must be a UUID", err)
	}
	return id, nil
}
