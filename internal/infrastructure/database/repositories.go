package database

import (
	"github.com/Douglas360/auction-intel-estate-sub000/internal/adapter/repository"
	domainRepo "github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Subscription domainRepo.SubscriptionRepository
	Plan         domainRepo.PlanRepository
	Webhook      domainRepo.WebhookEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Subscription: repository.NewSubscriptionRepository(db, logger),
		Plan:         repository.NewPlanRepository(db, logger),
		Webhook:      repository.NewWebhookRepository(db, logger),
	}
}
