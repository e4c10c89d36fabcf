package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	domainErrors "github.com/Douglas360/auction-intel-estate-sub000/internal/domain/errors"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	periodStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
)

type reconcilerFixture struct {
	subs      *memorySubscriptions
	plans     *memoryPlans
	billing   *MockBillingProvider
	publisher *recordingPublisher
	r         *usecase.Reconciler
}

func newReconcilerFixture(rows ...*entity.UserSubscription) *reconcilerFixture {
	f := &reconcilerFixture{
		subs:      newMemorySubscriptions(rows...),
		plans:     newMemoryPlans(),
		billing:   new(MockBillingProvider),
		publisher: &recordingPublisher{},
	}
	f.r = usecase.NewReconciler(f.subs, f.plans, f.billing, f.publisher, zap.NewNop())
	return f
}

func storedRow(userID uuid.UUID, status string) *entity.UserSubscription {
	return &entity.UserSubscription{
		ID:                   uuid.New(),
		UserID:               userID,
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: strPtr("sub_1"),
		Status:               status,
		BillingInterval:      entity.IntervalMonth,
	}
}

func liveSubscription(status string) *provider.Subscription {
	return &provider.Subscription{
		ID:                 "sub_1",
		CustomerID:         "cus_1",
		Status:             status,
		CurrentPeriodStart: periodStart,
		CurrentPeriodEnd:   periodEnd,
		Interval:           entity.IntervalMonth,
	}
}

func TestReconciler_CheckStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous caller is inactive without lookups", func(t *testing.T) {
		f := newReconcilerFixture()

		status := f.r.CheckStatus(ctx, nil)

		assert.False(t, status.Active)
		assert.Nil(t, status.Plan)
		assert.Nil(t, status.CurrentPeriodEnd)
		f.billing.AssertNotCalled(t, "GetSubscription", mock.Anything, mock.Anything)
	})

	t.Run("no row is inactive", func(t *testing.T) {
		f := newReconcilerFixture()
		userID := uuid.New()

		status := f.r.CheckStatus(ctx, &userID)

		assert.False(t, status.Active)
		assert.Empty(t, status.Message)
		f.billing.AssertNotCalled(t, "GetSubscription", mock.Anything, mock.Anything)
	})

	t.Run("customer without subscription id is inactive", func(t *testing.T) {
		userID := uuid.New()
		row := storedRow(userID, entity.StatusInactive)
		row.StripeSubscriptionID = nil
		f := newReconcilerFixture(row)

		status := f.r.CheckStatus(ctx, &userID)

		assert.False(t, status.Active)
		assert.Equal(t, 0, f.subs.writes)
	})

	t.Run("refreshes the row from the provider", func(t *testing.T) {
		userID := uuid.New()
		planID := uuid.New()
		row := storedRow(userID, "past_due")
		row.PlanID = &planID
		row.Discount = &entity.Discount{CouponID: "c1", Kind: entity.DiscountPercent, Magnitude: decimal.NewFromInt(20)}
		f := newReconcilerFixture(row)
		f.plans = newMemoryPlans(&entity.SubscriptionPlan{ID: planID, Title: "Pro", Status: entity.PlanStatusActive})
		f.r = usecase.NewReconciler(f.subs, f.plans, f.billing, f.publisher, zap.NewNop())
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		status := f.r.CheckStatus(ctx, &userID)

		assert.True(t, status.Active)
		assert.Equal(t, entity.StatusActive, status.Status)
		require.NotNil(t, status.Plan)
		assert.Equal(t, "Pro", status.Plan.Title)
		require.NotNil(t, status.CurrentPeriodEnd)
		assert.True(t, periodEnd.Equal(*status.CurrentPeriodEnd))
		require.NotNil(t, status.BillingInterval)
		assert.Equal(t, entity.IntervalMonth, *status.BillingInterval)
		require.NotNil(t, status.Discount)
		assert.Equal(t, "c1", status.Discount.CouponID)

		stored := f.subs.get(userID)
		assert.Equal(t, entity.StatusActive, stored.Status)
		assert.True(t, periodStart.Equal(*stored.CurrentPeriodStart))
		assert.Equal(t, "c1", stored.Discount.CouponID)
		assert.Equal(t, 1, f.publisher.count())
		f.billing.AssertExpectations(t)
	})

	t.Run("provider failure fails open and leaves the row alone", func(t *testing.T) {
		userID := uuid.New()
		row := storedRow(userID, entity.StatusActive)
		row.CurrentPeriodEnd = &periodEnd
		f := newReconcilerFixture(row)
		f.billing.On("GetSubscription", mock.Anything, "sub_1").
			Return(nil, &provider.ProviderError{Op: "get_subscription", HTTPStatus: 503})

		status := f.r.CheckStatus(ctx, &userID)

		assert.False(t, status.Active)
		assert.Equal(t, usecase.StatusUnavailableMessage, status.Message)
		assert.Equal(t, 0, f.subs.writes)
		assert.Equal(t, entity.StatusActive, f.subs.get(userID).Status)
		assert.Equal(t, 0, f.publisher.count())
	})

	t.Run("subscription gone at provider is downgraded", func(t *testing.T) {
		userID := uuid.New()
		row := storedRow(userID, entity.StatusActive)
		row.CurrentPeriodEnd = &periodEnd
		row.CancelAtPeriodEnd = true
		f := newReconcilerFixture(row)
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(nil, provider.ErrNotFound)

		status := f.r.CheckStatus(ctx, &userID)

		assert.False(t, status.Active)
		assert.Equal(t, entity.StatusInactive, status.Status)
		require.NotNil(t, status.CurrentPeriodEnd)
		assert.True(t, status.CancelAtPeriodEnd)

		stored := f.subs.get(userID)
		assert.Equal(t, entity.StatusInactive, stored.Status)
		assert.Equal(t, "sub_1", *stored.StripeSubscriptionID)
		assert.True(t, periodEnd.Equal(*stored.CurrentPeriodEnd))
	})

	t.Run("store read failure is inactive", func(t *testing.T) {
		f := newReconcilerFixture()
		f.subs.failWith = errors.New("connection reset")
		userID := uuid.New()

		status := f.r.CheckStatus(ctx, &userID)

		assert.False(t, status.Active)
		assert.NotEmpty(t, status.Message)
	})

	t.Run("repeated checks converge on the same row", func(t *testing.T) {
		userID := uuid.New()
		f := newReconcilerFixture(storedRow(userID, "incomplete"))
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		first := f.r.CheckStatus(ctx, &userID)
		afterFirst := f.subs.get(userID)
		second := f.r.CheckStatus(ctx, &userID)
		afterSecond := f.subs.get(userID)

		assert.Equal(t, first.Active, second.Active)
		assert.Equal(t, afterFirst.Status, afterSecond.Status)
		assert.True(t, afterFirst.CurrentPeriodEnd.Equal(*afterSecond.CurrentPeriodEnd))
		assert.Equal(t, 1, f.publisher.count())
	})

	t.Run("concurrent checks converge", func(t *testing.T) {
		userID := uuid.New()
		f := newReconcilerFixture(storedRow(userID, "incomplete"))
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.True(t, f.r.CheckStatus(ctx, &userID).Active)
			}()
		}
		wg.Wait()

		stored := f.subs.get(userID)
		assert.Equal(t, entity.StatusActive, stored.Status)
		assert.True(t, periodEnd.Equal(*stored.CurrentPeriodEnd))
	})

	t.Run("publisher failure does not affect the answer", func(t *testing.T) {
		userID := uuid.New()
		f := newReconcilerFixture(storedRow(userID, "incomplete"))
		f.publisher.err = errors.New("redis down")
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		assert.True(t, f.r.CheckStatus(ctx, &userID).Active)
	})
}

func TestReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("no subscription", func(t *testing.T) {
		f := newReconcilerFixture()

		_, err := f.r.Reconcile(ctx, uuid.New())

		assert.ErrorIs(t, err, domainErrors.ErrSubscriptionNotFound)
	})

	t.Run("provider failure is returned", func(t *testing.T) {
		userID := uuid.New()
		f := newReconcilerFixture(storedRow(userID, entity.StatusActive))
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(nil, errors.New("timeout"))

		_, err := f.r.Reconcile(ctx, userID)

		require.Error(t, err)
		assert.Equal(t, entity.StatusActive, f.subs.get(userID).Status)
	})

	t.Run("success", func(t *testing.T) {
		userID := uuid.New()
		f := newReconcilerFixture(storedRow(userID, entity.StatusActive))
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription("past_due"), nil)

		status, err := f.r.Reconcile(ctx, userID)

		require.NoError(t, err)
		assert.False(t, status.Active)
		assert.Equal(t, "past_due", f.subs.get(userID).Status)
	})
}

func TestReconciler_HandleCheckoutCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the row from session metadata", func(t *testing.T) {
		f := newReconcilerFixture()
		userID, planID := uuid.New(), uuid.New()
		session := &provider.CheckoutSession{
			ID:             "cs_1",
			CustomerID:     "cus_1",
			SubscriptionID: "sub_1",
			Metadata: map[string]string{
				provider.MetadataUserID:          userID.String(),
				provider.MetadataPlanID:          planID.String(),
				provider.MetadataBillingInterval: "year",
			},
		}
		live := liveSubscription(entity.StatusActive)
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(live, nil)

		outcome, err := f.r.HandleCheckoutCompleted(ctx, session)

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeApplied, outcome)
		stored := f.subs.get(userID)
		require.NotNil(t, stored)
		assert.Equal(t, planID, *stored.PlanID)
		assert.Equal(t, "cus_1", stored.StripeCustomerID)
		assert.Equal(t, "sub_1", *stored.StripeSubscriptionID)
		assert.Equal(t, entity.StatusActive, stored.Status)
		assert.Equal(t, entity.IntervalYear, stored.BillingInterval)
		assert.True(t, periodEnd.Equal(*stored.CurrentPeriodEnd))
	})

	t.Run("replay is idempotent", func(t *testing.T) {
		userID, planID := uuid.New(), uuid.New()
		f := newReconcilerFixture()
		session := &provider.CheckoutSession{
			ID:             "cs_1",
			CustomerID:     "cus_1",
			SubscriptionID: "sub_1",
			Metadata: map[string]string{
				provider.MetadataUserID: userID.String(),
				provider.MetadataPlanID: planID.String(),
			},
		}
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		_, err := f.r.HandleCheckoutCompleted(ctx, session)
		require.NoError(t, err)
		first := f.subs.get(userID)
		_, err = f.r.HandleCheckoutCompleted(ctx, session)
		require.NoError(t, err)
		second := f.subs.get(userID)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.BillingInterval, second.BillingInterval)
		assert.True(t, first.CurrentPeriodEnd.Equal(*second.CurrentPeriodEnd))
		assert.Len(t, f.subs.rows, 1)
	})

	t.Run("overwrites an inactive row for the same user", func(t *testing.T) {
		userID, planID := uuid.New(), uuid.New()
		old := storedRow(userID, entity.StatusInactive)
		old.StripeSubscriptionID = strPtr("sub_old")
		f := newReconcilerFixture(old)
		session := &provider.CheckoutSession{
			ID:             "cs_2",
			CustomerID:     "cus_1",
			SubscriptionID: "sub_1",
			Metadata: map[string]string{
				provider.MetadataUserID: userID.String(),
				provider.MetadataPlanID: planID.String(),
			},
		}
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		_, err := f.r.HandleCheckoutCompleted(ctx, session)

		require.NoError(t, err)
		stored := f.subs.get(userID)
		assert.Equal(t, old.ID, stored.ID)
		assert.Equal(t, "sub_1", *stored.StripeSubscriptionID)
		assert.Equal(t, entity.StatusActive, stored.Status)
	})

	t.Run("falls back to the customer's latest subscription", func(t *testing.T) {
		f := newReconcilerFixture()
		userID, planID := uuid.New(), uuid.New()
		session := &provider.CheckoutSession{
			ID:         "cs_3",
			CustomerID: "cus_1",
			Metadata: map[string]string{
				provider.MetadataUserID: userID.String(),
				provider.MetadataPlanID: planID.String(),
			},
		}
		f.billing.On("LatestSubscription", mock.Anything, "cus_1").Return(liveSubscription(entity.StatusActive), nil)
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		outcome, err := f.r.HandleCheckoutCompleted(ctx, session)

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeApplied, outcome)
		f.billing.AssertExpectations(t)
	})

	t.Run("missing metadata is ignored", func(t *testing.T) {
		f := newReconcilerFixture()

		outcome, err := f.r.HandleCheckoutCompleted(ctx, &provider.CheckoutSession{ID: "cs_4", Metadata: map[string]string{}})

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeIgnored, outcome)
		assert.Equal(t, 0, f.subs.writes)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		f := newReconcilerFixture()
		f.subs.failWith = errors.New("deadlock")
		session := &provider.CheckoutSession{
			ID:             "cs_5",
			SubscriptionID: "sub_1",
			Metadata: map[string]string{
				provider.MetadataUserID: uuid.NewString(),
				provider.MetadataPlanID: uuid.NewString(),
			},
		}
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		_, err := f.r.HandleCheckoutCompleted(ctx, session)

		assert.Error(t, err)
	})
}

func TestReconciler_HandleSubscriptionUpdated(t *testing.T) {
	ctx := context.Background()

	t.Run("updates period and cancel flag", func(t *testing.T) {
		userID := uuid.New()
		row := storedRow(userID, entity.StatusActive)
		f := newReconcilerFixture(row)
		live := liveSubscription(entity.StatusActive)
		live.CancelAtPeriodEnd = true
		live.Discount = &entity.Discount{CouponID: "spring", Kind: entity.DiscountAmount, Magnitude: decimal.NewFromInt(5), Currency: "usd"}

		outcome, err := f.r.HandleSubscriptionUpdated(ctx, live)

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeApplied, outcome)
		stored := f.subs.get(userID)
		assert.Equal(t, entity.StatusActive, stored.Status)
		assert.True(t, stored.CancelAtPeriodEnd)
		assert.True(t, periodEnd.Equal(*stored.CurrentPeriodEnd))
		require.NotNil(t, stored.Discount)
		assert.Equal(t, "spring", stored.Discount.CouponID)
	})

	t.Run("unknown subscription is ignored", func(t *testing.T) {
		f := newReconcilerFixture()

		outcome, err := f.r.HandleSubscriptionUpdated(ctx, liveSubscription(entity.StatusActive))

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeIgnored, outcome)
		assert.Equal(t, 0, f.subs.writes)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		f := newReconcilerFixture(storedRow(uuid.New(), entity.StatusActive))
		f.subs.failWith = errors.New("connection refused")

		_, err := f.r.HandleSubscriptionUpdated(ctx, liveSubscription(entity.StatusActive))

		assert.Error(t, err)
	})
}

func TestReconciler_HandleSubscriptionDeleted(t *testing.T) {
	ctx := context.Background()

	t.Run("marks inactive and keeps history", func(t *testing.T) {
		userID := uuid.New()
		row := storedRow(userID, entity.StatusActive)
		row.CurrentPeriodEnd = &periodEnd
		f := newReconcilerFixture(row)

		outcome, err := f.r.HandleSubscriptionDeleted(ctx, liveSubscription("canceled"))

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeApplied, outcome)
		stored := f.subs.get(userID)
		assert.Equal(t, entity.StatusInactive, stored.Status)
		assert.Equal(t, "sub_1", *stored.StripeSubscriptionID)
		assert.Equal(t, "cus_1", stored.StripeCustomerID)
		assert.True(t, periodEnd.Equal(*stored.CurrentPeriodEnd))
	})

	t.Run("unknown subscription is ignored", func(t *testing.T) {
		f := newReconcilerFixture()

		outcome, err := f.r.HandleSubscriptionDeleted(ctx, liveSubscription("canceled"))

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeIgnored, outcome)
	})
}

func TestReconciler_RefreshStoreFailure(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("db down")

	t.Run("reconcile reports the unpersisted refresh", func(t *testing.T) {
		userID := uuid.New()
		f := newReconcilerFixture(storedRow(userID, "past_due"))
		f.subs.failWrites = storeErr
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		status, err := f.r.Reconcile(ctx, userID)

		require.Error(t, err)
		assert.Nil(t, status)
		assert.ErrorIs(t, err, usecase.ErrNotPersisted)
		assert.ErrorIs(t, err, storeErr)
		assert.Equal(t, "past_due", f.subs.get(userID).Status)
		assert.Equal(t, 0, f.publisher.count())
	})

	t.Run("reconcile reports a failed downgrade of a vanished subscription", func(t *testing.T) {
		userID := uuid.New()
		f := newReconcilerFixture(storedRow(userID, entity.StatusActive))
		f.subs.failWrites = storeErr
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(nil, provider.ErrNotFound)

		_, err := f.r.Reconcile(ctx, userID)

		assert.ErrorIs(t, err, usecase.ErrNotPersisted)
		assert.Equal(t, entity.StatusActive, f.subs.get(userID).Status)
		assert.Equal(t, 0, f.publisher.count())
	})

	t.Run("status check still answers from the provider", func(t *testing.T) {
		userID := uuid.New()
		f := newReconcilerFixture(storedRow(userID, "past_due"))
		f.subs.failWrites = storeErr
		f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(liveSubscription(entity.StatusActive), nil)

		status := f.r.CheckStatus(ctx, &userID)

		assert.True(t, status.Active)
		assert.Equal(t, entity.StatusActive, status.Status)
		assert.Empty(t, status.Message)
		assert.Equal(t, "past_due", f.subs.get(userID).Status)
		assert.Equal(t, 0, f.publisher.count())
	})
}

func TestReconciler_CheckStatus_AnnouncesCancelFlag(t *testing.T) {
	userID := uuid.New()
	row := storedRow(userID, entity.StatusActive)
	row.CurrentPeriodEnd = &periodEnd
	f := newReconcilerFixture(row)
	live := liveSubscription(entity.StatusActive)
	live.CancelAtPeriodEnd = true
	f.billing.On("GetSubscription", mock.Anything, "sub_1").Return(live, nil)

	status := f.r.CheckStatus(context.Background(), &userID)

	assert.True(t, status.CancelAtPeriodEnd)
	assert.True(t, f.subs.get(userID).CancelAtPeriodEnd)
	require.Equal(t, 1, f.publisher.count())
}

func TestReconciler_HandleSubscriptionUpdated_Ordering(t *testing.T) {
	ctx := context.Background()

	t.Run("update older than the deletion is ignored", func(t *testing.T) {
		userID := uuid.New()
		row := storedRow(userID, entity.StatusActive)
		row.CurrentPeriodEnd = &periodEnd
		f := newReconcilerFixture(row)

		_, err := f.r.HandleSubscriptionDeleted(ctx, liveSubscription("canceled"))
		require.NoError(t, err)

		late := liveSubscription(entity.StatusActive)
		late.ObservedAt = time.Now().Add(-time.Hour)
		outcome, err := f.r.HandleSubscriptionUpdated(ctx, late)

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeIgnored, outcome)
		assert.Equal(t, entity.StatusInactive, f.subs.get(userID).Status)
	})

	t.Run("update newer than the row is applied", func(t *testing.T) {
		userID := uuid.New()
		row := storedRow(userID, entity.StatusActive)
		row.UpdatedAt = time.Now().Add(-time.Hour)
		f := newReconcilerFixture(row)

		live := liveSubscription("past_due")
		live.ObservedAt = time.Now().Truncate(time.Second)
		outcome, err := f.r.HandleSubscriptionUpdated(ctx, live)

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeApplied, outcome)
		assert.Equal(t, "past_due", f.subs.get(userID).Status)
	})
}

func TestReconciler_CheckoutThenStatus(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	plan := &entity.SubscriptionPlan{ID: uuid.New(), Title: "Investor", Status: entity.PlanStatusActive, Benefits: []string{}}
	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	live := &provider.Subscription{
		ID:                 "sub_123",
		CustomerID:         "cus_1",
		Status:             entity.StatusActive,
		CurrentPeriodStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CurrentPeriodEnd:   end,
		Interval:           entity.IntervalMonth,
	}

	f := newReconcilerFixture()
	f.plans = newMemoryPlans(plan)
	f.r = usecase.NewReconciler(f.subs, f.plans, f.billing, f.publisher, zap.NewNop())
	f.billing.On("GetSubscription", mock.Anything, "sub_123").Return(live, nil)

	outcome, err := f.r.HandleCheckoutCompleted(ctx, &provider.CheckoutSession{
		ID:             "cs_1",
		CustomerID:     "cus_1",
		SubscriptionID: "sub_123",
		Metadata: map[string]string{
			provider.MetadataUserID:          userID.String(),
			provider.MetadataPlanID:          plan.ID.String(),
			provider.MetadataBillingInterval: "month",
		},
	})
	require.NoError(t, err)
	require.Equal(t, usecase.OutcomeApplied, outcome)

	status := f.r.CheckStatus(ctx, &userID)

	assert.True(t, status.Active)
	require.NotNil(t, status.Plan)
	assert.Equal(t, plan.ID, status.Plan.ID)
	assert.Equal(t, "Investor", status.Plan.Title)
	require.NotNil(t, status.CurrentPeriodEnd)
	assert.Equal(t, "2025-07-01T00:00:00Z", status.CurrentPeriodEnd.Format(time.RFC3339))
	assert.False(t, status.CancelAtPeriodEnd)
	require.NotNil(t, status.BillingInterval)
	assert.Equal(t, entity.IntervalMonth, *status.BillingInterval)
}

func TestReconciler_DeletedThenStatus(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	plan := &entity.SubscriptionPlan{ID: uuid.New(), Title: "Investor", Status: entity.PlanStatusActive, Benefits: []string{}}
	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	row := &entity.UserSubscription{
		ID:                   uuid.New(),
		UserID:               userID,
		PlanID:               &plan.ID,
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: strPtr("sub_123"),
		Status:               entity.StatusActive,
		CurrentPeriodEnd:     &end,
		BillingInterval:      entity.IntervalMonth,
	}
	canceled := &provider.Subscription{
		ID:               "sub_123",
		CustomerID:       "cus_1",
		Status:           "canceled",
		CurrentPeriodEnd: end,
		Interval:         entity.IntervalMonth,
	}

	f := newReconcilerFixture(row)
	f.plans = newMemoryPlans(plan)
	f.r = usecase.NewReconciler(f.subs, f.plans, f.billing, f.publisher, zap.NewNop())
	f.billing.On("GetSubscription", mock.Anything, "sub_123").Return(canceled, nil)

	outcome, err := f.r.HandleSubscriptionDeleted(ctx, canceled)
	require.NoError(t, err)
	require.Equal(t, usecase.OutcomeApplied, outcome)

	status := f.r.CheckStatus(ctx, &userID)

	assert.False(t, status.Active)
	require.NotNil(t, status.Plan)
	assert.Equal(t, plan.ID, status.Plan.ID)
	require.NotNil(t, status.CurrentPeriodEnd)
	assert.Equal(t, "2025-07-01T00:00:00Z", status.CurrentPeriodEnd.Format(time.RFC3339))
	assert.Empty(t, status.Message)

	stored := f.subs.get(userID)
	assert.Equal(t, "sub_123", *stored.StripeSubscriptionID)
	assert.Equal(t, plan.ID, *stored.PlanID)
}
