package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// ParseWebhook verifies the Stripe-Signature header and decodes the event
// objects the reconciler acts on. Other event types come back with only
// the envelope populated.
func (s *StripeProvider) ParseWebhook(payload []byte, signature string) (*provider.Event, error) {
	if signature == "" {
		return nil, fmt.Errorf("missing signature: %w", provider.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, provider.ErrInvalidSignature)
	}

	out := &provider.Event{
		ID:         event.ID,
		Type:       string(event.Type),
		APIVersion: event.APIVersion,
		Created:    unixUTC(event.Created),
	}
	if event.Data == nil {
		return out, nil
	}
	out.Object = event.Data.Object

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		out.CheckoutSession = toCheckoutSession(&session)
	case stripe.EventTypeCustomerSubscriptionUpdated, stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subscription: %w", err)
		}
		out.Subscription = toSubscription(&sub)
		out.Subscription.ObservedAt = out.Created
	}
	return out, nil
}
