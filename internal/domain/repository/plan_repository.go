package repository

import (
	"context"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/google/uuid"
)

// PlanRepository stores subscription plans. Plans are deactivated, never
// deleted, since subscriptions keep referencing them.
type PlanRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error)
	GetByTitle(ctx context.Context, title string) (*entity.SubscriptionPlan, error)
	ListActive(ctx context.Context) ([]*entity.SubscriptionPlan, error)
	ListAll(ctx context.Context) ([]*entity.SubscriptionPlan, error)
	Create(ctx context.Context, plan *entity.SubscriptionPlan) error
	Update(ctx context.Context, plan *entity.SubscriptionPlan) error
	SetStatus(ctx context.Context, id uuid.UUID, status entity.PlanStatus) error
}
