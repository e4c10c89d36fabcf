package provider

import (
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/config"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	stripeProvider "github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/provider/stripe"
	"go.uber.org/zap"
)

// NewBillingProvider builds the configured billing provider.
func NewBillingProvider(cfg config.StripeConfig, logger *zap.Logger) (provider.BillingProvider, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key not configured")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("stripe timeout must be positive, got %s", cfg.Timeout)
	}

	return stripeProvider.NewStripeProvider(stripeProvider.Config{
		SecretKey:         cfg.SecretKey,
		WebhookSecret:     cfg.WebhookSecret,
		Timeout:           cfg.Timeout,
		MaxNetworkRetries: cfg.MaxNetworkRetries,
	}, logger), nil
}
