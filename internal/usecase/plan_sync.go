package usecase

import (
	"context"
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	domainErrors "github.com/Douglas360/auction-intel-estate-sub000/internal/domain/errors"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncResult reports what a catalog sync did, per plan title.
type SyncResult struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Linked  []string `json:"linked"`
	Failed  []string `json:"failed"`
}

// PlanSyncService links local plans to provider prices
type PlanSyncService struct {
	plans    repository.PlanRepository
	provider provider.CatalogProvider
	logger   *zap.Logger
}

// NewPlanSyncService creates a new plan synchronization service
func NewPlanSyncService(plans repository.PlanRepository, catalog provider.CatalogProvider, logger *zap.Logger) *PlanSyncService {
	return &PlanSyncService{
		plans:    plans,
		provider: catalog,
		logger:   logger,
	}
}

// LinkPrices sets the monthly and annual price ids of a plan from the
// active recurring prices of its product.
func (s *PlanSyncService) LinkPrices(ctx context.Context, planID uuid.UUID) (*entity.SubscriptionPlan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domainErrors.ErrPlanNotFound
	}
	if err := s.link(ctx, plan); err != nil {
		return nil, err
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanSyncService) link(ctx context.Context, plan *entity.SubscriptionPlan) error {
	if plan.StripeProductID == nil || *plan.StripeProductID == "" {
		return fmt.Errorf("plan %q has no provider product: %w", plan.Title, domainErrors.ErrPlanNotIntegrated)
	}

	prices, err := s.provider.ListPrices(ctx, *plan.StripeProductID)
	if err != nil {
		return fmt.Errorf("failed to list prices for %q: %w", plan.Title, err)
	}

	for _, p := range prices {
		if !p.Active {
			continue
		}
		id := p.ID
		switch p.Interval {
		case entity.IntervalMonth:
			plan.StripeMonthlyPriceID = &id
		case entity.IntervalYear:
			plan.StripeAnnualPriceID = &id
		default:
			s.logger.Debug("Skipping price with unsupported interval",
				zap.String("price_id", p.ID),
				zap.String("interval", string(p.Interval)))
		}
	}

	s.logger.Info("Linked plan prices",
		zap.String("plan_id", plan.ID.String()),
		zap.String("product_id", *plan.StripeProductID),
		zap.Int("prices", len(prices)))
	return nil
}

// SyncCatalog upserts plans by title and links provider prices for those
// with a product. In dry-run mode nothing is written or fetched; the result
// says what would happen. Failures on one plan do not stop the others.
func (s *PlanSyncService) SyncCatalog(ctx context.Context, catalog []PlanInput, dryRun bool) (*SyncResult, error) {
	result := &SyncResult{}

	for _, in := range catalog {
		existing, err := s.plans.GetByTitle(ctx, in.Title)
		if err != nil {
			return result, fmt.Errorf("failed to look up plan %q: %w", in.Title, err)
		}

		plan := existing
		if plan == nil {
			plan = &entity.SubscriptionPlan{}
		}
		in.applyTo(plan)

		if dryRun {
			if existing == nil {
				result.Created = append(result.Created, plan.Title)
			} else {
				result.Updated = append(result.Updated, plan.Title)
			}
			continue
		}

		if plan.StripeProductID != nil && in.StripeMonthlyPriceID == "" && in.StripeAnnualPriceID == "" {
			if err := s.link(ctx, plan); err != nil {
				s.logger.Error("Failed to link plan prices", zap.String("title", plan.Title), zap.Error(err))
				result.Failed = append(result.Failed, plan.Title)
			} else {
				result.Linked = append(result.Linked, plan.Title)
			}
		}

		if existing == nil {
			err = s.plans.Create(ctx, plan)
			if err == nil {
				result.Created = append(result.Created, plan.Title)
			}
		} else {
			err = s.plans.Update(ctx, plan)
			if err == nil {
				result.Updated = append(result.Updated, plan.Title)
			}
		}
		if err != nil {
			s.logger.Error("Failed to store plan", zap.String("title", plan.Title), zap.Error(err))
			result.Failed = append(result.Failed, plan.Title)
		}
	}

	return result, nil
}
