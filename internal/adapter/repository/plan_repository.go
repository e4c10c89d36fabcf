package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/model"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type planRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB, logger *zap.Logger) repository.PlanRepository {
	return &planRepository{
		db:     db,
		logger: logger,
	}
}

func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *planRepository) GetByTitle(ctx context.Context, title string) (*entity.SubscriptionPlan, error) {
	return r.first(ctx, "title = ?", title)
}

func (r *planRepository) first(ctx context.Context, query string, arg interface{}) (*entity.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan

	err := r.db.WithContext(ctx).Where(query, arg).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get plan", zap.Any("arg", arg), zap.Error(err))
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return planToEntity(&plan), nil
}

// ListActive returns plans offered to customers in display order
func (r *planRepository) ListActive(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("status = ?", entity.PlanStatusActive))
}

// ListAll includes inactive plans, for the back office
func (r *planRepository) ListAll(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *planRepository) list(_ context.Context, query *gorm.DB) ([]*entity.SubscriptionPlan, error) {
	var plans []*model.SubscriptionPlan

	err := query.Order("sort_order ASC, title ASC").Find(&plans).Error
	if err != nil {
		r.logger.Error("Failed to list plans", zap.Error(err))
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	out := make([]*entity.SubscriptionPlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, planToEntity(p))
	}
	return out, nil
}

func (r *planRepository) Create(ctx context.Context, plan *entity.SubscriptionPlan) error {
	m := planToModel(plan)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		r.logger.Error("Failed to create plan", zap.String("title", plan.Title), zap.Error(err))
		return fmt.Errorf("failed to create plan: %w", err)
	}
	plan.ID = m.ID
	plan.CreatedAt = m.CreatedAt
	plan.UpdatedAt = m.UpdatedAt
	return nil
}

// Update overwrites every editable column of the plan
func (r *planRepository) Update(ctx context.Context, plan *entity.SubscriptionPlan) error {
	m := planToModel(plan)

	result := r.db.WithContext(ctx).
		Model(&model.SubscriptionPlan{ID: plan.ID}).
		Select("title", "description", "monthly_price", "annual_price", "currency", "benefits",
			"status", "sort_order", "stripe_product_id", "stripe_price_id_monthly", "stripe_price_id_annual", "updated_at").
		Updates(m)
	if result.Error != nil {
		r.logger.Error("Failed to update plan", zap.String("plan_id", plan.ID.String()), zap.Error(result.Error))
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("plan %s: %w", plan.ID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *planRepository) SetStatus(ctx context.Context, id uuid.UUID, status entity.PlanStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.SubscriptionPlan{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to set plan status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("plan %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
