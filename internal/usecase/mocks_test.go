package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBillingProvider is a mock implementation of provider.BillingProvider
type MockBillingProvider struct {
	mock.Mock
}

func (m *MockBillingProvider) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Subscription), args.Error(1)
}

func (m *MockBillingProvider) LatestSubscription(ctx context.Context, customerID string) (*provider.Subscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Subscription), args.Error(1)
}

func (m *MockBillingProvider) FindCustomerByEmail(ctx context.Context, email string) (*provider.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Customer), args.Error(1)
}

func (m *MockBillingProvider) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (*provider.Customer, error) {
	args := m.Called(ctx, email, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Customer), args.Error(1)
}

func (m *MockBillingProvider) FindPromotionCode(ctx context.Context, code string) (*provider.PromotionCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.PromotionCode), args.Error(1)
}

func (m *MockBillingProvider) CreateCheckoutSession(ctx context.Context, req provider.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockBillingProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

func (m *MockBillingProvider) ParseWebhook(payload []byte, signature string) (*provider.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Event), args.Error(1)
}

func (m *MockBillingProvider) ListPrices(ctx context.Context, productID string) ([]provider.Price, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.Price), args.Error(1)
}

func (m *MockBillingProvider) ListCoupons(ctx context.Context) ([]provider.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.Coupon), args.Error(1)
}

func (m *MockBillingProvider) CreateCoupon(ctx context.Context, req provider.CouponRequest) (*provider.Coupon, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Coupon), args.Error(1)
}

func (m *MockBillingProvider) CreatePromotionCode(ctx context.Context, couponID, code string) (*provider.PromotionCode, error) {
	args := m.Called(ctx, couponID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.PromotionCode), args.Error(1)
}

// memorySubscriptions is an in-memory SubscriptionRepository keyed by user.
// failWith makes every call return that error; failWrites only the writes.
type memorySubscriptions struct {
	mu         sync.Mutex
	rows       map[uuid.UUID]*entity.UserSubscription
	writes     int
	failWith   error
	failWrites error
}

func (m *memorySubscriptions) writeErr() error {
	if m.failWith != nil {
		return m.failWith
	}
	return m.failWrites
}

func newMemorySubscriptions(rows ...*entity.UserSubscription) *memorySubscriptions {
	m := &memorySubscriptions{rows: map[uuid.UUID]*entity.UserSubscription{}}
	for _, r := range rows {
		m.rows[r.UserID] = clone(r)
	}
	return m
}

func clone(s *entity.UserSubscription) *entity.UserSubscription {
	c := *s
	if s.Discount != nil {
		d := *s.Discount
		c.Discount = &d
	}
	return &c
}

func (m *memorySubscriptions) get(userID uuid.UUID) *entity.UserSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[userID]; ok {
		return clone(r)
	}
	return nil
}

func (m *memorySubscriptions) bySubscriptionID(id string) *entity.UserSubscription {
	for _, r := range m.rows {
		if r.StripeSubscriptionID != nil && *r.StripeSubscriptionID == id {
			return r
		}
	}
	return nil
}

func (m *memorySubscriptions) GetByUserID(_ context.Context, userID uuid.UUID) (*entity.UserSubscription, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.get(userID), nil
}

func (m *memorySubscriptions) GetByStripeSubscriptionID(_ context.Context, id string) (*entity.UserSubscription, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.bySubscriptionID(id); r != nil {
		return clone(r), nil
	}
	return nil, nil
}

func (m *memorySubscriptions) UpsertByUserID(_ context.Context, sub *entity.UserSubscription) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	row := clone(sub)
	now := time.Now().UTC()
	if existing, ok := m.rows[sub.UserID]; ok {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	} else {
		row.ID = uuid.New()
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	m.rows[sub.UserID] = row
	return nil
}

func (m *memorySubscriptions) apply(row *entity.UserSubscription, u entity.SubscriptionUpdate) {
	m.writes++
	row.Status = u.Status
	row.CurrentPeriodStart = u.CurrentPeriodStart
	row.CurrentPeriodEnd = u.CurrentPeriodEnd
	row.CancelAtPeriodEnd = u.CancelAtPeriodEnd
	if u.BillingInterval != "" {
		row.BillingInterval = u.BillingInterval
	}
	if u.SetDiscount {
		row.Discount = u.Discount
	}
	row.UpdatedAt = time.Now().UTC()
}

func (m *memorySubscriptions) UpdateByUserID(_ context.Context, userID uuid.UUID, u entity.SubscriptionUpdate) (bool, error) {
	if err := m.writeErr(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID]
	if !ok {
		return false, nil
	}
	m.apply(row, u)
	return true, nil
}

func (m *memorySubscriptions) UpdateByStripeSubscriptionID(_ context.Context, id string, u entity.SubscriptionUpdate) (bool, error) {
	if err := m.writeErr(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.bySubscriptionID(id)
	if row == nil {
		return false, nil
	}
	m.apply(row, u)
	return true, nil
}

func (m *memorySubscriptions) SetStatusByStripeSubscriptionID(_ context.Context, id, status string) (bool, error) {
	if err := m.writeErr(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.bySubscriptionID(id)
	if row == nil {
		return false, nil
	}
	m.writes++
	row.Status = status
	row.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *memorySubscriptions) SetStatusByUserID(_ context.Context, userID uuid.UUID, status string) (bool, error) {
	if err := m.writeErr(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID]
	if !ok {
		return false, nil
	}
	m.writes++
	row.Status = status
	row.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *memorySubscriptions) List(_ context.Context, filter entity.SubscriptionFilter, page entity.PaginationParams) ([]*entity.UserSubscription, int64, error) {
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.UserSubscription
	for _, r := range m.rows {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, clone(r))
	}
	return out, int64(len(out)), nil
}

// memoryPlans is an in-memory PlanRepository.
type memoryPlans struct {
	mu    sync.Mutex
	plans map[uuid.UUID]*entity.SubscriptionPlan
}

func newMemoryPlans(plans ...*entity.SubscriptionPlan) *memoryPlans {
	m := &memoryPlans{plans: map[uuid.UUID]*entity.SubscriptionPlan{}}
	for _, p := range plans {
		c := *p
		m.plans[p.ID] = &c
	}
	return m
}

func (m *memoryPlans) GetByID(_ context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (m *memoryPlans) GetByTitle(_ context.Context, title string) (*entity.SubscriptionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.Title == title {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memoryPlans) ListActive(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	all, _ := m.ListAll(ctx)
	var out []*entity.SubscriptionPlan
	for _, p := range all {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryPlans) ListAll(_ context.Context) ([]*entity.SubscriptionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.SubscriptionPlan
	for _, p := range m.plans {
		c := *p
		out = append(out, &c)
	}
	return out, nil
}

func (m *memoryPlans) Create(_ context.Context, plan *entity.SubscriptionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	c := *plan
	m.plans[plan.ID] = &c
	return nil
}

func (m *memoryPlans) Update(_ context.Context, plan *entity.SubscriptionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *plan
	m.plans[plan.ID] = &c
	return nil
}

func (m *memoryPlans) SetStatus(_ context.Context, id uuid.UUID, status entity.PlanStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[id]; ok {
		p.Status = status
	}
	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.SubscriptionChanged
	err    error
}

func (p *recordingPublisher) PublishSubscriptionChanged(_ context.Context, e entity.SubscriptionChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func strPtr(s string) *string { return &s }
