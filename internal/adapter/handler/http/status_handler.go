package http

import (
	"context"
	"net/http"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/middleware/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StatusChecker answers the entitlement question for a possibly anonymous
// user.
type StatusChecker interface {
	CheckStatus(ctx context.Context, userID *uuid.UUID) *entity.SubscriptionStatus
}

type StatusHandler struct {
	checker StatusChecker
	logger  *zap.Logger
}

func NewStatusHandler(checker StatusChecker, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{checker: checker, logger: logger}
}

// GetStatus always answers 200. Anonymous callers and every failure come
// back as {"active": false}.
func (h *StatusHandler) GetStatus(c echo.Context) error {
	userID := auth.UserIDFromContext(c)
	status := h.checker.CheckStatus(c.Request().Context(), userID)
	if status == nil {
		status = entity.InactiveStatus()
	}

	if userID != nil {
		h.logger.Debug("Subscription status checked",
			zap.String("user_id", userID.String()),
			zap.Bool("active", status.Active))
	}
	return c.JSON(http.StatusOK, status)
}
