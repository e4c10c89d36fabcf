package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	domainErrors "github.com/Douglas360/auction-intel-estate-sub000/internal/domain/errors"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/repository"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome tells the webhook handler what a recognized event led to.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeIgnored Outcome = "ignored"
)

// StatusUnavailableMessage accompanies the fail-open answer when the
// provider could not be reached.
const StatusUnavailableMessage = "subscription status is temporarily unavailable"

// ErrNotPersisted marks a refresh whose provider answer could not be
// written back to the store.
var ErrNotPersisted = errors.New("refreshed subscription was not persisted")

// EventPublisher announces persisted subscription changes.
type EventPublisher interface {
	PublishSubscriptionChanged(ctx context.Context, event entity.SubscriptionChanged) error
}

// Reconciler keeps user_subscriptions in line with the billing provider.
// It holds no per-user state; every call reads and writes through the
// repository, and concurrent calls converge through last-write-wins rows.
type Reconciler struct {
	subscriptions repository.SubscriptionRepository
	plans         repository.PlanRepository
	provider      provider.SubscriptionReader
	publisher     EventPublisher
	logger        *zap.Logger
}

// NewReconciler creates a reconciler. publisher may be nil.
func NewReconciler(
	subscriptions repository.SubscriptionRepository,
	plans repository.PlanRepository,
	billing provider.SubscriptionReader,
	publisher EventPublisher,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		subscriptions: subscriptions,
		plans:         plans,
		provider:      billing,
		publisher:     publisher,
		logger:        logger,
	}
}

// CheckStatus answers whether the user is entitled right now, refreshing
// the stored row from the provider on the way. A nil userID is an
// anonymous caller. It never fails: anything it cannot resolve degrades to
// an inactive answer, and a provider failure leaves the row untouched.
func (r *Reconciler) CheckStatus(ctx context.Context, userID *uuid.UUID) *entity.SubscriptionStatus {
	if userID == nil {
		r.count(metrics.PathPull, "unauthenticated")
		return entity.InactiveStatus()
	}
	log := r.logger.With(zap.String("user_id", userID.String()))

	sub, err := r.subscriptions.GetByUserID(ctx, *userID)
	if err != nil {
		log.Error("Failed to load subscription for status check", zap.Error(err))
		r.count(metrics.PathPull, "store_error")
		status := entity.InactiveStatus()
		status.Message = StatusUnavailableMessage
		return status
	}
	if sub == nil || sub.StripeCustomerID == "" {
		r.count(metrics.PathPull, "no_customer")
		return entity.InactiveStatus()
	}
	if !sub.HasSubscriptionID() {
		r.count(metrics.PathPull, "no_subscription")
		return entity.InactiveStatus()
	}

	status, err := r.refresh(ctx, sub, log)
	switch {
	case errors.Is(err, ErrNotPersisted):
		// The provider answered; the stale row is retried on the next pull.
		return status
	case err != nil:
		log.Warn("Failed to fetch subscription from provider; answering inactive", zap.Error(err))
		r.count(metrics.PathPull, "provider_error")
		status = entity.InactiveStatus()
		status.Message = StatusUnavailableMessage
	}
	return status
}

// Reconcile refreshes one user's row from the provider and reports the
// result. Unlike CheckStatus it surfaces every failure to the caller.
func (r *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID) (*entity.SubscriptionStatus, error) {
	sub, err := r.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription for user %s: %w", userID, err)
	}
	if sub == nil || !sub.HasSubscriptionID() {
		return nil, domainErrors.ErrSubscriptionNotFound
	}

	log := r.logger.With(zap.String("user_id", userID.String()))
	status, err := r.refresh(ctx, sub, log)
	if err != nil {
		if !errors.Is(err, ErrNotPersisted) {
			r.count(metrics.PathPull, "provider_error")
		}
		return nil, fmt.Errorf("failed to reconcile subscription for user %s: %w", userID, err)
	}
	log.Info("Subscription reconciled", zap.String("status", status.Status))
	return status, nil
}

// refresh pulls the live subscription for sub and writes it back. Provider
// failures other than not-found return a nil status and leave the row
// alone. A failed write returns the provider's answer together with an
// error wrapping ErrNotPersisted.
func (r *Reconciler) refresh(ctx context.Context, sub *entity.UserSubscription, log *zap.Logger) (*entity.SubscriptionStatus, error) {
	subscriptionID := *sub.StripeSubscriptionID
	log = log.With(zap.String("subscription_id", subscriptionID))

	live, err := r.provider.GetSubscription(ctx, subscriptionID)
	switch {
	case errors.Is(err, provider.ErrNotFound):
		log.Warn("Subscription no longer exists at provider; marking inactive")
		_, storeErr := r.subscriptions.SetStatusByUserID(ctx, sub.UserID, entity.StatusInactive)
		sub.Status = entity.StatusInactive
		if storeErr != nil {
			return r.notPersisted(ctx, sub, log, storeErr)
		}
		r.publish(ctx, sub, "pull")
		r.count(metrics.PathPull, "orphaned")
		return r.statusFromRow(ctx, sub), nil

	case err != nil:
		return nil, err
	}

	update := entity.SubscriptionUpdate{
		Status:             live.Status,
		CurrentPeriodStart: timePtr(live.CurrentPeriodStart),
		CurrentPeriodEnd:   timePtr(live.CurrentPeriodEnd),
		CancelAtPeriodEnd:  live.CancelAtPeriodEnd,
		BillingInterval:    live.Interval,
	}
	changed := sub.Status != live.Status ||
		sub.CancelAtPeriodEnd != live.CancelAtPeriodEnd ||
		!sameTime(sub.CurrentPeriodEnd, update.CurrentPeriodEnd)
	_, storeErr := r.subscriptions.UpdateByUserID(ctx, sub.UserID, update)
	applyUpdate(sub, update)
	if storeErr != nil {
		return r.notPersisted(ctx, sub, log, storeErr)
	}
	if changed {
		r.publish(ctx, sub, "pull")
	}

	r.count(metrics.PathPull, "synced")
	return r.statusFromRow(ctx, sub), nil
}

// notPersisted answers from the provider's view of sub without announcing
// it, since the row was not written.
func (r *Reconciler) notPersisted(ctx context.Context, sub *entity.UserSubscription, log *zap.Logger, err error) (*entity.SubscriptionStatus, error) {
	log.Error("Failed to persist refreshed subscription", zap.Error(err))
	r.count(metrics.PathPull, "store_error")
	return r.statusFromRow(ctx, sub), fmt.Errorf("%w: %w", ErrNotPersisted, err)
}

// HandleCheckoutCompleted creates or overwrites the user's row from a
// completed checkout. Sessions without our metadata are ignored.
func (r *Reconciler) HandleCheckoutCompleted(ctx context.Context, session *provider.CheckoutSession) (Outcome, error) {
	log := r.logger.With(zap.String("session_id", session.ID))

	userID, err := uuid.Parse(session.Metadata[provider.MetadataUserID])
	if err != nil {
		log.Warn("Checkout session has no valid user_id metadata; ignoring")
		r.count(metrics.PathPush, "ignored")
		return OutcomeIgnored, nil
	}
	planID, err := uuid.Parse(session.Metadata[provider.MetadataPlanID])
	if err != nil {
		log.Warn("Checkout session has no valid plan_id metadata; ignoring", zap.String("user_id", userID.String()))
		r.count(metrics.PathPush, "ignored")
		return OutcomeIgnored, nil
	}
	log = log.With(zap.String("user_id", userID.String()), zap.String("plan_id", planID.String()))

	subscriptionID := session.SubscriptionID
	if subscriptionID == "" {
		if session.CustomerID == "" {
			r.count(metrics.PathPush, "error")
			return "", fmt.Errorf("checkout session %s has neither subscription nor customer", session.ID)
		}
		latest, err := r.provider.LatestSubscription(ctx, session.CustomerID)
		if err != nil {
			r.count(metrics.PathPush, "error")
			return "", fmt.Errorf("failed to resolve subscription for customer %s: %w", session.CustomerID, err)
		}
		subscriptionID = latest.ID
	}

	live, err := r.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		r.count(metrics.PathPush, "error")
		return "", fmt.Errorf("failed to fetch subscription %s: %w", subscriptionID, err)
	}

	interval := entity.BillingInterval(session.Metadata[provider.MetadataBillingInterval])
	if !interval.Valid() {
		interval = live.Interval
	}
	customerID := session.CustomerID
	if customerID == "" {
		customerID = live.CustomerID
	}

	row := &entity.UserSubscription{
		UserID:               userID,
		PlanID:               &planID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: &live.ID,
		Status:               live.Status,
		CurrentPeriodStart:   timePtr(live.CurrentPeriodStart),
		CurrentPeriodEnd:     timePtr(live.CurrentPeriodEnd),
		CancelAtPeriodEnd:    live.CancelAtPeriodEnd,
		BillingInterval:      interval,
		Discount:             live.Discount,
	}
	if err := r.subscriptions.UpsertByUserID(ctx, row); err != nil {
		r.count(metrics.PathPush, "error")
		return "", fmt.Errorf("failed to store subscription for user %s: %w", userID, err)
	}

	log.Info("Subscription stored from checkout",
		zap.String("subscription_id", live.ID),
		zap.String("status", live.Status))
	r.publish(ctx, row, provider.EventCheckoutSessionCompleted)
	r.count(metrics.PathPush, "applied")
	return OutcomeApplied, nil
}

// HandleSubscriptionUpdated copies the provider's status, period, cancel
// flag and discount onto the row holding this subscription.
func (r *Reconciler) HandleSubscriptionUpdated(ctx context.Context, live *provider.Subscription) (Outcome, error) {
	row, err := r.matchRow(ctx, live.ID)
	if err != nil {
		return "", err
	}
	if row == nil {
		return OutcomeIgnored, nil
	}
	if isStale(row, live) {
		r.logger.Info("Subscription update is older than the stored row; ignoring",
			zap.String("subscription_id", live.ID),
			zap.Time("observed_at", live.ObservedAt),
			zap.Time("row_updated_at", row.UpdatedAt))
		r.count(metrics.PathPush, "stale")
		return OutcomeIgnored, nil
	}

	update := entity.SubscriptionUpdate{
		Status:             live.Status,
		CurrentPeriodStart: timePtr(live.CurrentPeriodStart),
		CurrentPeriodEnd:   timePtr(live.CurrentPeriodEnd),
		CancelAtPeriodEnd:  live.CancelAtPeriodEnd,
		BillingInterval:    live.Interval,
		SetDiscount:        true,
		Discount:           live.Discount,
	}
	found, err := r.subscriptions.UpdateByStripeSubscriptionID(ctx, live.ID, update)
	if err != nil {
		r.count(metrics.PathPush, "error")
		return "", fmt.Errorf("failed to update subscription %s: %w", live.ID, err)
	}
	if !found {
		return r.ignoreUnknown(live.ID), nil
	}

	applyUpdate(row, update)
	r.publish(ctx, row, provider.EventSubscriptionUpdated)
	r.count(metrics.PathPush, "applied")
	return OutcomeApplied, nil
}

// HandleSubscriptionDeleted marks the row inactive and keeps everything
// else for billing history.
func (r *Reconciler) HandleSubscriptionDeleted(ctx context.Context, live *provider.Subscription) (Outcome, error) {
	row, err := r.matchRow(ctx, live.ID)
	if err != nil {
		return "", err
	}
	if row == nil {
		return OutcomeIgnored, nil
	}

	found, err := r.subscriptions.SetStatusByStripeSubscriptionID(ctx, live.ID, entity.StatusInactive)
	if err != nil {
		r.count(metrics.PathPush, "error")
		return "", fmt.Errorf("failed to deactivate subscription %s: %w", live.ID, err)
	}
	if !found {
		return r.ignoreUnknown(live.ID), nil
	}

	row.Status = entity.StatusInactive
	r.publish(ctx, row, provider.EventSubscriptionDeleted)
	r.count(metrics.PathPush, "applied")
	return OutcomeApplied, nil
}

func (r *Reconciler) matchRow(ctx context.Context, subscriptionID string) (*entity.UserSubscription, error) {
	row, err := r.subscriptions.GetByStripeSubscriptionID(ctx, subscriptionID)
	if err != nil {
		r.count(metrics.PathPush, "error")
		return nil, fmt.Errorf("failed to look up subscription %s: %w", subscriptionID, err)
	}
	if row == nil {
		r.ignoreUnknown(subscriptionID)
	}
	return row, nil
}

// isStale reports whether live was emitted before the row was last written.
// The provider stamps events in whole seconds, so the row time is truncated
// to match; a row written in the same second as the event is not stale.
func isStale(row *entity.UserSubscription, live *provider.Subscription) bool {
	if live.ObservedAt.IsZero() || row.UpdatedAt.IsZero() {
		return false
	}
	return row.UpdatedAt.Truncate(time.Second).After(live.ObservedAt)
}

func (r *Reconciler) ignoreUnknown(subscriptionID string) Outcome {
	r.logger.Info("No local subscription for provider subscription; ignoring event",
		zap.String("subscription_id", subscriptionID))
	r.count(metrics.PathPush, "ignored")
	return OutcomeIgnored
}

// statusFromRow builds the answer from a row that is current as of this
// call. Plan lookup failures only drop the plan from the answer.
func (r *Reconciler) statusFromRow(ctx context.Context, sub *entity.UserSubscription) *entity.SubscriptionStatus {
	status := &entity.SubscriptionStatus{
		Active:            sub.IsActive(),
		Status:            sub.Status,
		CurrentPeriodEnd:  utc(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Discount:          sub.Discount,
	}
	if sub.BillingInterval != "" {
		interval := sub.BillingInterval
		status.BillingInterval = &interval
	}
	if sub.PlanID != nil {
		plan, err := r.plans.GetByID(ctx, *sub.PlanID)
		if err != nil {
			r.logger.Warn("Failed to load plan for status", zap.String("plan_id", sub.PlanID.String()), zap.Error(err))
		}
		status.Plan = plan
	}
	return status
}

func (r *Reconciler) publish(ctx context.Context, sub *entity.UserSubscription, source string) {
	if r.publisher == nil {
		return
	}
	event := entity.SubscriptionChanged{
		UserID:           sub.UserID,
		PlanID:           sub.PlanID,
		Status:           sub.Status,
		Active:           sub.IsActive(),
		CurrentPeriodEnd: utc(sub.CurrentPeriodEnd),
		BillingInterval:  sub.BillingInterval,
		Source:           source,
		OccurredAt:       time.Now().UTC(),
	}
	if sub.StripeSubscriptionID != nil {
		event.StripeSubscriptionID = *sub.StripeSubscriptionID
	}
	if err := r.publisher.PublishSubscriptionChanged(ctx, event); err != nil {
		r.logger.Warn("Failed to publish subscription change",
			zap.String("user_id", sub.UserID.String()),
			zap.Error(err))
	}
}

func (r *Reconciler) count(path, outcome string) {
	metrics.Reconciliations.WithLabelValues(path, outcome).Inc()
}

func applyUpdate(sub *entity.UserSubscription, u entity.SubscriptionUpdate) {
	sub.Status = u.Status
	sub.CurrentPeriodStart = u.CurrentPeriodStart
	sub.CurrentPeriodEnd = u.CurrentPeriodEnd
	sub.CancelAtPeriodEnd = u.CancelAtPeriodEnd
	if u.BillingInterval != "" {
		sub.BillingInterval = u.BillingInterval
	}
	if u.SetDiscount {
		sub.Discount = u.Discount
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return timePtr(*t)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
