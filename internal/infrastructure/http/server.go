package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	handlers "github.com/Douglas360/auction-intel-estate-sub000/internal/adapter/handler/http"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/config"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/middleware/auth"
	apperrors "github.com/Douglas360/auction-intel-estate-sub000/pkg/errors"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers the server routes to.
type Handlers struct {
	Status   *handlers.StatusHandler
	Webhook  *handlers.WebhookHandler
	Checkout *handlers.CheckoutHandler
	Plans    *handlers.PlansHandler
	Admin    *handlers.AdminHandler
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
}

func NewServer(cfg *config.Config, log *zap.Logger, h Handlers, authn *auth.Authenticator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.HTTP.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.HTTP.WriteTimeout
	logger.WithEchoLogger(e, log)
	e.Validator = handlers.NewRequestValidator()
	e.HTTPErrorHandler = apperrors.NewHTTPErrorHandler(log)

	s := &Server{
		config: cfg,
		logger: log,
		echo:   e,
	}
	s.setupMiddleware()
	s.setupRoutes(h, authn)
	return s
}

func (s *Server) setupMiddleware() {
	e := s.echo
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(logger.NewEchoRequestLogger(s.logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.config.Server.HTTP.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	if limit := s.config.Server.HTTP.BodyLimit; limit != "" {
		e.Use(middleware.BodyLimit(limit))
	}
}

func (s *Server) setupRoutes(h Handlers, authn *auth.Authenticator) {
	e := s.echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})
	if s.config.Metrics.Enabled {
		e.GET(s.config.Metrics.Path, echo.WrapHandler(promhttp.Handler()))
	}

	// Webhook routes sit outside API versioning; the signature is the auth.
	e.POST("/webhook/stripe", h.Webhook.HandleWebhook)
	e.POST("/webhook", h.Webhook.HandleWebhook)

	v1 := e.Group("/api/v1")

	// The status check never rejects a caller: a bad or missing token is
	// answered as inactive.
	v1.GET("/subscriptions/status", h.Status.GetStatus, authn.OptionalAuth())
	v1.POST("/check-subscription", h.Status.GetStatus, authn.OptionalAuth())

	v1.GET("/plans", h.Plans.GetPlans)
	v1.GET("/plans/:id", h.Plans.GetPlan)

	subscriptions := v1.Group("/subscriptions", authn.RequireAuth())
	subscriptions.POST("/checkout", h.Checkout.CreateCheckout)
	subscriptions.POST("/portal", h.Checkout.CreatePortalSession)

	admin := v1.Group("/admin", authn.RequireAuth(), authn.RequireAdmin())
	admin.GET("/plans", h.Plans.ListAllPlans)
	admin.POST("/plans", h.Plans.CreatePlan)
	admin.PUT("/plans/:id", h.Plans.UpdatePlan)
	admin.DELETE("/plans/:id", h.Plans.DeletePlan)
	admin.POST("/plans/:id/sync", h.Plans.SyncPlanPrices)
	admin.GET("/coupons", h.Admin.ListCoupons)
	admin.POST("/coupons", h.Admin.CreateCoupon)
	admin.GET("/subscriptions", h.Admin.ListSubscriptions)
	admin.POST("/subscriptions/:user_id/reconcile", h.Admin.ReconcileUser)
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
