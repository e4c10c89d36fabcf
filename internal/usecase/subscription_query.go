package usecase

import (
	"context"
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"go.uber.org/zap"
)

// SubscriptionQueryService serves back-office listings of stored rows.
type SubscriptionQueryService struct {
	subscriptions repository.SubscriptionRepository
	logger        *zap.Logger
}

func NewSubscriptionQueryService(subscriptions repository.SubscriptionRepository, logger *zap.Logger) *SubscriptionQueryService {
	return &SubscriptionQueryService{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

func (s *SubscriptionQueryService) List(ctx context.Context, filter entity.SubscriptionFilter, page entity.PaginationParams) (*entity.PaginatedSubscriptions, error) {
	page.Normalize()

	rows, total, err := s.subscriptions.List(ctx, filter, page)
	if err != nil {
		s.logger.Error("Failed to list subscriptions", zap.Error(err))
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	if rows == nil {
		rows = []*entity.UserSubscription{}
	}

	return &entity.PaginatedSubscriptions{
		Data:       rows,
		Pagination: page.Meta(total),
	}, nil
}
