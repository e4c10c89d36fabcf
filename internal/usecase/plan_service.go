package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	domainErrors "github.com/Douglas360/auction-intel-estate-sub000/internal/domain/errors"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlanInput is the editable part of a plan. Empty provider ids leave the
// stored ids alone on update.
type PlanInput struct {
	Title                string
	Description          string
	MonthlyPrice         decimal.Decimal
	AnnualPrice          decimal.Decimal
	Currency             string
	Benefits             []string
	SortOrder            int
	Status               entity.PlanStatus
	StripeProductID      string
	StripeMonthlyPriceID string
	StripeAnnualPriceID  string
}

func (in PlanInput) applyTo(plan *entity.SubscriptionPlan) {
	plan.Title = strings.TrimSpace(in.Title)
	plan.Description = in.Description
	plan.MonthlyPrice = in.MonthlyPrice
	plan.AnnualPrice = in.AnnualPrice
	plan.Currency = strings.ToLower(in.Currency)
	if plan.Currency == "" {
		plan.Currency = "usd"
	}
	plan.Benefits = entity.NormalizeBenefits(in.Benefits)
	plan.SortOrder = in.SortOrder
	plan.Status = in.Status
	if plan.Status == "" {
		plan.Status = entity.PlanStatusActive
	}
	setIfPresent(&plan.StripeProductID, in.StripeProductID)
	setIfPresent(&plan.StripeMonthlyPriceID, in.StripeMonthlyPriceID)
	setIfPresent(&plan.StripeAnnualPriceID, in.StripeAnnualPriceID)
}

func setIfPresent(dst **string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = &v
	}
}

// PlanService manages the plan catalog.
type PlanService struct {
	plans  repository.PlanRepository
	logger *zap.Logger
}

func NewPlanService(plans repository.PlanRepository, logger *zap.Logger) *PlanService {
	return &PlanService{
		plans:  plans,
		logger: logger,
	}
}

// ListPublic returns the plans currently offered, in display order.
func (s *PlanService) ListPublic(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	return s.plans.ListActive(ctx)
}

func (s *PlanService) ListAll(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	return s.plans.ListAll(ctx)
}

func (s *PlanService) Get(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domainErrors.ErrPlanNotFound
	}
	return plan, nil
}

func (s *PlanService) Create(ctx context.Context, in PlanInput) (*entity.SubscriptionPlan, error) {
	plan := &entity.SubscriptionPlan{}
	in.applyTo(plan)

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	s.logger.Info("Plan created", zap.String("plan_id", plan.ID.String()), zap.String("title", plan.Title))
	return plan, nil
}

func (s *PlanService) Update(ctx context.Context, id uuid.UUID, in PlanInput) (*entity.SubscriptionPlan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(plan)

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan %s: %w", id, err)
	}
	s.logger.Info("Plan updated", zap.String("plan_id", id.String()))
	return plan, nil
}

// Deactivate withdraws a plan from sale. Existing subscriptions keep
// pointing at it.
func (s *PlanService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.plans.SetStatus(ctx, id, entity.PlanStatusInactive); err != nil {
		return err
	}
	s.logger.Info("Plan deactivated", zap.String("plan_id", id.String()))
	return nil
}
