package http

import (
	"context"
	"io"
	"net/http"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/metrics"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WebhookProcessor applies verified provider events.
type WebhookProcessor interface {
	HandleCheckoutCompleted(ctx context.Context, session *provider.CheckoutSession) (usecase.Outcome, error)
	HandleSubscriptionUpdated(ctx context.Context, sub *provider.Subscription) (usecase.Outcome, error)
	HandleSubscriptionDeleted(ctx context.Context, sub *provider.Subscription) (usecase.Outcome, error)
}

const stripeSignatureHeader = "Stripe-Signature"

type WebhookHandler struct {
	verifier  provider.WebhookVerifier
	processor WebhookProcessor
	events    repository.WebhookEventRepository
	maxBytes  int64
	logger    *zap.Logger
}

// NewWebhookHandler creates the Stripe webhook endpoint. events may be nil
// to run without the delivery log.
func NewWebhookHandler(
	verifier provider.WebhookVerifier,
	processor WebhookProcessor,
	events repository.WebhookEventRepository,
	maxBytes int64,
	logger *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier:  verifier,
		processor: processor,
		events:    events,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// HandleWebhook answers 200 for applied, ignored and duplicate events, 400
// for payloads that fail verification and 500 when the store could not be
// updated, so the provider retries.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, h.maxBytes+1))
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return errors.NewAppError(errors.ErrInvalidArgument, "Error reading request body", err)
	}
	if int64(len(body)) > h.maxBytes {
		h.logger.Warn("Webhook payload too large", zap.Int64("limit", h.maxBytes))
		return errors.NewAppError(errors.ErrPayloadTooLarge, "Payload too large", nil)
	}

	event, err := h.verifier.ParseWebhook(body, c.Request().Header.Get(stripeSignatureHeader))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		if errors.Is(err, provider.ErrInvalidSignature) {
			h.logger.Warn("Webhook signature verification failed", zap.Error(err))
			return errors.NewAppError(errors.ErrInvalidArgument, "Webhook signature verification failed", err)
		}
		h.logger.Warn("Malformed webhook event", zap.Error(err))
		return errors.NewAppError(errors.ErrInvalidArgument, "Malformed webhook event", err)
	}

	log := h.logger.With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))
	log.Info("Webhook event received", zap.Time("created", event.Created))
	ctx := c.Request().Context()

	if h.alreadyCompleted(ctx, event, log) {
		metrics.WebhookEvents.WithLabelValues(event.Type, "duplicate").Inc()
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	outcome, err := h.dispatch(ctx, event)
	if err != nil {
		log.Error("Failed to process webhook event", zap.Error(err))
		metrics.WebhookEvents.WithLabelValues(event.Type, "failed").Inc()
		h.mark(log, func() error { return h.events.MarkFailed(ctx, event.ID, err) })
		return errors.NewAppError(errors.ErrInternal, "Failed to process event", err)
	}

	metrics.WebhookEvents.WithLabelValues(event.Type, string(outcome)).Inc()
	if outcome == usecase.OutcomeApplied {
		h.mark(log, func() error { return h.events.MarkCompleted(ctx, event.ID) })
	} else {
		h.mark(log, func() error { return h.events.MarkIgnored(ctx, event.ID) })
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *WebhookHandler) dispatch(ctx context.Context, event *provider.Event) (usecase.Outcome, error) {
	switch event.Type {
	case provider.EventCheckoutSessionCompleted:
		if event.CheckoutSession == nil {
			return usecase.OutcomeIgnored, nil
		}
		return h.processor.HandleCheckoutCompleted(ctx, event.CheckoutSession)
	case provider.EventSubscriptionUpdated:
		if event.Subscription == nil {
			return usecase.OutcomeIgnored, nil
		}
		return h.processor.HandleSubscriptionUpdated(ctx, event.Subscription)
	case provider.EventSubscriptionDeleted:
		if event.Subscription == nil {
			return usecase.OutcomeIgnored, nil
		}
		return h.processor.HandleSubscriptionDeleted(ctx, event.Subscription)
	default:
		h.logger.Debug("Unhandled webhook event type", zap.String("event_type", event.Type))
		return usecase.OutcomeIgnored, nil
	}
}

// alreadyCompleted records the delivery. Log failures never block
// processing; handlers are idempotent anyway.
func (h *WebhookHandler) alreadyCompleted(ctx context.Context, event *provider.Event, log *zap.Logger) bool {
	if h.events == nil {
		return false
	}
	done, err := h.events.Record(ctx, repository.WebhookEvent{
		EventID:    event.ID,
		EventType:  event.Type,
		APIVersion: event.APIVersion,
		CreatedAt:  event.Created,
		Data:       event.Object,
	})
	if err != nil {
		log.Warn("Failed to record webhook event", zap.Error(err))
		return false
	}
	if done {
		log.Info("Webhook event already processed; skipping")
	}
	return done
}

func (h *WebhookHandler) mark(log *zap.Logger, fn func() error) {
	if h.events == nil {
		return
	}
	if err := fn(); err != nil {
		log.Warn("Failed to update webhook event status", zap.Error(err))
	}
}
