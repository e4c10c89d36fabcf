package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/model"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertColumns are overwritten when a row for the same user exists.
var upsertColumns = []string{
	"subscription_plan_id",
	"stripe_customer_id",
	"stripe_subscription_id",
	"status",
	"current_period_start",
	"current_period_end",
	"cancel_at_period_end",
	"billing_interval",
	"discount_coupon_id",
	"discount_promotion_code_id",
	"discount_kind",
	"discount_magnitude",
	"discount_currency",
	"updated_at",
}

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) repository.SubscriptionRepository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// GetByUserID retrieves the subscription row of a user
func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.UserSubscription, error) {
	return r.first(ctx, "user_id = ?", userID)
}

// GetByStripeSubscriptionID retrieves the row holding a provider subscription
func (r *subscriptionRepository) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*entity.UserSubscription, error) {
	return r.first(ctx, "stripe_subscription_id = ?", subscriptionID)
}

func (r *subscriptionRepository) first(ctx context.Context, query string, arg interface{}) (*entity.UserSubscription, error) {
	var sub model.UserSubscription

	err := r.db.WithContext(ctx).Where(query, arg).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get subscription",
			zap.String("query", query),
			zap.Any("arg", arg),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return subscriptionToEntity(&sub), nil
}

// UpsertByUserID inserts or overwrites the user's row in one statement
func (r *subscriptionRepository) UpsertByUserID(ctx context.Context, sub *entity.UserSubscription) error {
	m := subscriptionToModel(sub)
	m.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(m).Error
	if err != nil {
		r.logger.Error("Failed to upsert subscription",
			zap.String("user_id", sub.UserID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

// UpdateByUserID applies provider state to the user's row
func (r *subscriptionRepository) UpdateByUserID(ctx context.Context, userID uuid.UUID, update entity.SubscriptionUpdate) (bool, error) {
	return r.updates(ctx, "user_id = ?", userID, updateColumns(update))
}

// UpdateByStripeSubscriptionID applies provider state to the matching row
func (r *subscriptionRepository) UpdateByStripeSubscriptionID(ctx context.Context, subscriptionID string, update entity.SubscriptionUpdate) (bool, error) {
	return r.updates(ctx, "stripe_subscription_id = ?", subscriptionID, updateColumns(update))
}

func (r *subscriptionRepository) SetStatusByStripeSubscriptionID(ctx context.Context, subscriptionID, status string) (bool, error) {
	return r.updates(ctx, "stripe_subscription_id = ?", subscriptionID, map[string]interface{}{"status": status})
}

func (r *subscriptionRepository) SetStatusByUserID(ctx context.Context, userID uuid.UUID, status string) (bool, error) {
	return r.updates(ctx, "user_id = ?", userID, map[string]interface{}{"status": status})
}

func (r *subscriptionRepository) updates(ctx context.Context, query string, arg interface{}, columns map[string]interface{}) (bool, error) {
	columns["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&model.UserSubscription{}).
		Where(query, arg).
		Updates(columns)
	if result.Error != nil {
		r.logger.Error("Failed to update subscription",
			zap.String("query", query),
			zap.Any("arg", arg),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to update subscription: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// List returns one page of subscriptions, most recently updated first
func (r *subscriptionRepository) List(ctx context.Context, filter entity.SubscriptionFilter, page entity.PaginationParams) ([]*entity.UserSubscription, int64, error) {
	page.Normalize()

	query := r.db.WithContext(ctx).Model(&model.UserSubscription{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PlanID != nil {
		query = query.Where("subscription_plan_id = ?", *filter.PlanID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var rows []*model.UserSubscription
	err := query.
		Order("updated_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		r.logger.Error("Failed to list subscriptions", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	out := make([]*entity.UserSubscription, 0, len(rows))
	for _, row := range rows {
		out = append(out, subscriptionToEntity(row))
	}
	return out, total, nil
}

func updateColumns(u entity.SubscriptionUpdate) map[string]interface{} {
	columns := map[string]interface{}{
		"status":               u.Status,
		"current_period_start": u.CurrentPeriodStart,
		"current_period_end":   u.CurrentPeriodEnd,
		"cancel_at_period_end": u.CancelAtPeriodEnd,
	}
	if u.BillingInterval != "" {
		columns["billing_interval"] = string(u.BillingInterval)
	}
	if u.SetDiscount {
		d := discountColumns(u.Discount)
		columns["discount_coupon_id"] = d.DiscountCouponID
		columns["discount_promotion_code_id"] = d.DiscountPromotionCode
		columns["discount_kind"] = d.DiscountKind
		columns["discount_magnitude"] = d.DiscountMagnitude
		columns["discount_currency"] = d.DiscountCurrency
	}
	return columns
}
