package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/model"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookRepository creates a new webhook event repository
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) repository.WebhookEventRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
	}
}

// Record saves the event unless already present and reports whether an
// earlier delivery completed it
func (r *webhookRepository) Record(ctx context.Context, event repository.WebhookEvent) (bool, error) {
	row := &model.StripeWebhookEvent{
		StripeEventID: event.EventID,
		EventType:     event.EventType,
		Status:        model.WebhookStatusPending,
		Data:          model.JSONB(event.Data),
	}
	if event.APIVersion != "" {
		row.APIVersion = &event.APIVersion
	}
	if !event.CreatedAt.IsZero() {
		created := event.CreatedAt
		row.StripeCreatedAt = &created
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_event_id"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.Error(err))
		return false, fmt.Errorf("failed to save webhook event: %w", err)
	}

	var existing model.StripeWebhookEvent
	err = r.db.WithContext(ctx).
		Select("status").
		Where("stripe_event_id = ?", event.EventID).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return existing.Status == model.WebhookStatusCompleted, nil
}

func (r *webhookRepository) MarkCompleted(ctx context.Context, eventID string) error {
	return r.finish(ctx, eventID, model.WebhookStatusCompleted, nil)
}

func (r *webhookRepository) MarkIgnored(ctx context.Context, eventID string) error {
	return r.finish(ctx, eventID, model.WebhookStatusIgnored, nil)
}

func (r *webhookRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	return r.finish(ctx, eventID, model.WebhookStatusFailed, cause)
}

func (r *webhookRepository) finish(ctx context.Context, eventID string, status model.WebhookStatus, cause error) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":              status,
		"processed_at":        &now,
		"processing_attempts": gorm.Expr("processing_attempts + 1"),
	}
	if cause != nil {
		msg := cause.Error()
		updates["last_error"] = &msg
	}

	result := r.db.WithContext(ctx).
		Model(&model.StripeWebhookEvent{}).
		Where("stripe_event_id = ?", eventID).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error("Failed to update webhook event",
			zap.String("event_id", eventID),
			zap.String("status", string(status)),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update webhook event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}
	return nil
}
