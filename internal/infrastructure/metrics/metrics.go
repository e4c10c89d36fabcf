// Package metrics holds the prometheus collectors of the billing service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_reconciliations_total",
			Help: "Subscription reconciliations by trigger path and outcome",
		},
		[]string{"path", "outcome"},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_webhook_events_total",
			Help: "Provider webhook deliveries by event type and result",
		},
		[]string{"type", "result"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_provider_call_duration_seconds",
			Help:    "Latency of billing provider API calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "result"},
	)

	CheckoutSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_checkout_sessions_total",
			Help: "Checkout initiations by result (session, portal, error)",
		},
		[]string{"result"},
	)
)

// Pull and push trigger labels.
const (
	PathPull = "pull"
	PathPush = "push"
)

// ObserveProviderCall records the latency of one provider call.
func ObserveProviderCall(operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ProviderCallDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
}
