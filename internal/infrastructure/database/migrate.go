package database

import (
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate brings the billing tables up to date. It is safe to run on every
// start.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.SubscriptionPlan{},
		&model.UserSubscription{},
		&model.StripeWebhookEvent{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates the partial indexes GORM tags cannot express.
func createCustomIndexes(db *gorm.DB) error {
	statements := []string{
		// Superseded by the partial unique index below.
		`DROP INDEX IF EXISTS idx_user_subscriptions_stripe_subscription_id`,
		// Push-path lookups only ever target rows that carry a subscription id.
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_user_subscriptions_stripe_subscription_id
			ON user_subscriptions (stripe_subscription_id) WHERE stripe_subscription_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_user_subscriptions_customer
			ON user_subscriptions (stripe_customer_id) WHERE stripe_customer_id <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_events_unprocessed
			ON stripe_webhook_events (created_at) WHERE status IN ('pending', 'failed')`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
