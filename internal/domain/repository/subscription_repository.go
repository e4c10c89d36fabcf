package repository

import (
	"context"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/google/uuid"
)

// SubscriptionRepository stores UserSubscription rows. Lookups return
// (nil, nil) when no row exists. Every write is atomic on a single row.
type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.UserSubscription, error)
	GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*entity.UserSubscription, error)

	// UpsertByUserID inserts the row or overwrites every mutable column of
	// the existing row for the same user.
	UpsertByUserID(ctx context.Context, sub *entity.UserSubscription) error

	// UpdateByUserID and UpdateByStripeSubscriptionID apply update in place
	// and report whether a row matched.
	UpdateByUserID(ctx context.Context, userID uuid.UUID, update entity.SubscriptionUpdate) (bool, error)
	UpdateByStripeSubscriptionID(ctx context.Context, subscriptionID string, update entity.SubscriptionUpdate) (bool, error)

	// SetStatusByStripeSubscriptionID changes only the status column.
	SetStatusByStripeSubscriptionID(ctx context.Context, subscriptionID, status string) (bool, error)
	SetStatusByUserID(ctx context.Context, userID uuid.UUID, status string) (bool, error)

	List(ctx context.Context, filter entity.SubscriptionFilter, page entity.PaginationParams) ([]*entity.UserSubscription, int64, error)
}
