package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	handlers "github.com/Douglas360/auction-intel-estate-sub000/internal/adapter/handler/http"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/config"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/database"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/events"
	httpServer "github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/http"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/middleware/auth"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("service", cfg.Service.Name))

	if err := cfg.Validate(); err != nil {
		zapLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	repos := database.NewRepositories(db, zapLogger)

	billing, err := provider.NewBillingProvider(cfg.Stripe, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize billing provider", zap.Error(err))
	}

	publisher, err := events.NewPublisher(ctx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize event publisher", zap.Error(err))
	}
	defer publisher.Close()

	authn, err := auth.NewAuthenticator(auth.JWTConfig{
		Secret:    cfg.Auth.JWTSecret,
		JWKSURL:   cfg.Auth.JWKSURL,
		Issuer:    cfg.Auth.Issuer,
		AdminRole: cfg.Auth.AdminRole,
		Logger:    zapLogger,
	})
	if err != nil {
		zapLogger.Fatal("Failed to initialize authenticator", zap.Error(err))
	}

	reconciler := usecase.NewReconciler(repos.Subscription, repos.Plan, billing, publisher, zapLogger)
	checkout := usecase.NewCheckoutService(repos.Subscription, repos.Plan, billing, usecase.CheckoutURLs{
		SuccessURL:      cfg.Stripe.SuccessURL,
		CancelURL:       cfg.Stripe.CancelURL,
		PortalReturnURL: cfg.Stripe.PortalReturnURL,
	}, zapLogger)
	plans := usecase.NewPlanService(repos.Plan, zapLogger)
	planSync := usecase.NewPlanSyncService(repos.Plan, billing, zapLogger)
	coupons := usecase.NewCouponService(billing, zapLogger)
	subscriptions := usecase.NewSubscriptionQueryService(repos.Subscription, zapLogger)

	srv := httpServer.NewServer(cfg, zapLogger, httpServer.Handlers{
		Status:   handlers.NewStatusHandler(reconciler, zapLogger),
		Webhook:  handlers.NewWebhookHandler(billing, reconciler, repos.Webhook, cfg.Stripe.WebhookMaxBytes, zapLogger),
		Checkout: handlers.NewCheckoutHandler(checkout, zapLogger),
		Plans:    handlers.NewPlansHandler(plans, planSync, zapLogger),
		Admin:    handlers.NewAdminHandler(coupons, subscriptions, reconciler, zapLogger),
	}, authn)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("Shutting down server...")
	case err := <-errCh:
		if err != nil {
			zapLogger.Error("HTTP server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}
	zapLogger.Info("Server shut down successfully")
}
