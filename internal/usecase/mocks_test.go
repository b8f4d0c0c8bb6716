// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/domain/model"
	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	"github.com/QuagHug/pet-service/internal/domain/ports/repository"
)

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.User
	saveErr error // used by tests to simulate save failures

	// beforeExpireIfDue, when set, runs just before the conditional expiry
	// claim so tests can interleave a concurrent write.
	beforeExpireIfDue func()
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) UpdateMembership(ctx context.Context, tx repository.Tx, userID string, mem model.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Membership = mem
	return nil
}

func (m *memUserRepo) ExpireMembershipIfDue(ctx context.Context, tx repository.Tx, userID string, now time.Time) (bool, error) {
	if m.beforeExpireIfDue != nil {
		m.beforeExpireIfDue()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[userID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if u.Membership.Status != model.MembershipStatusActive ||
		u.Membership.EndDate == nil || !u.Membership.EndDate.Before(now) {
		return false, nil
	}
	u.Membership.Status = model.MembershipStatusExpired
	return true, nil
}

func (m *memUserRepo) ExpireMemberships(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.store {
		if u.ReconcileExpiry(now) {
			n++
		}
	}
	return n, nil
}

// memOrderRepo stores pending orders keyed by order id.
type memOrderRepo struct {
	mu    sync.Mutex
	store map[string]*model.PendingOrder
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{store: make(map[string]*model.PendingOrder)}
}

func (m *memOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.PendingOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.OrderID] = &cp
	return nil
}

func (m *memOrderRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.PendingOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) MarkFinal(ctx context.Context, tx repository.Tx, orderID string, status model.OrderStatus, transID *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = status
	if transID != nil {
		o.TransID = transID
	}
	o.UpdatedAt = time.Now()
	return true, nil
}

func (m *memOrderRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PendingOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PendingOrder
	for _, o := range m.store {
		if o.Status == model.OrderStatusPending && o.CreatedAt.Before(olderThan) {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memRecordRepo collects audit records.
type memRecordRepo struct {
	mu      sync.Mutex
	records []*model.PaymentRecord
	saveErr error
}

func newMemRecordRepo() *memRecordRepo { return &memRecordRepo{} }

func (m *memRecordRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.records = append(m.records, &cp)
	return nil
}

func (m *memRecordRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transID string) (*model.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.records {
		if p.TransactionID == transID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRecordRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentRecord
	for _, p := range m.records {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRecordRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.records {
		if p.Status == model.PaymentStatusCompleted {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (m *memRecordRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// fakeGateway lets tests script the provider's responses.
type fakeGateway struct {
	createFn func(ctx context.Context, orderID, requestID string, amount int64, orderInfo, extraData string) (*adapter.CreatePaymentResult, error)
	queryFn  func(ctx context.Context, orderID string) (*adapter.PaymentStatusResult, error)
}

func (f *fakeGateway) Name() string { return "momo" }

func (f *fakeGateway) CreatePayment(ctx context.Context, orderID, requestID string, amount int64, orderInfo, extraData string) (*adapter.CreatePaymentResult, error) {
	if f.createFn != nil {
		return f.createFn(ctx, orderID, requestID, amount, orderInfo, extraData)
	}
	return &adapter.CreatePaymentResult{PayURL: "https://pay.example/" + orderID}, nil
}

func (f *fakeGateway) QueryStatus(ctx context.Context, orderID string) (*adapter.PaymentStatusResult, error) {
	if f.queryFn != nil {
		return f.queryFn(ctx, orderID)
	}
	return &adapter.PaymentStatusResult{OrderID: orderID, ResultCode: 0}, nil
}

// memTxManager runs the callback without a real transaction; the in-memory
// repos are already atomic enough for unit tests.
type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// memProviderRepo backs the directory tests.
type memProviderRepo struct {
	mu      sync.Mutex
	store   map[string]*model.ServiceProvider
	reviews map[string][]*model.Review
}

func newMemProviderRepo() *memProviderRepo {
	return &memProviderRepo{
		store:   make(map[string]*model.ServiceProvider),
		reviews: make(map[string][]*model.Review),
	}
}

func (m *memProviderRepo) Save(ctx context.Context, tx repository.Tx, p *model.ServiceProvider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProviderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServiceProvider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProviderRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ServiceProvider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ServiceProvider
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memProviderRepo) ListByCategory(ctx context.Context, tx repository.Tx, category string) ([]*model.ServiceProvider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ServiceProvider
	for _, p := range m.store {
		if p.Category == category {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memProviderRepo) Search(ctx context.Context, tx repository.Tx, query, category string) ([]*model.ServiceProvider, error) {
	return m.ListAll(ctx, tx)
}

func (m *memProviderRepo) Nearby(ctx context.Context, tx repository.Tx, lat, lng float64, maxDistanceMeters int) ([]*model.ServiceProvider, error) {
	return m.ListAll(ctx, tx)
}

func (m *memProviderRepo) AddReview(ctx context.Context, tx repository.Tx, providerID string, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.reviews[providerID] = append(m.reviews[providerID], &cp)
	return nil
}

func (m *memProviderRepo) ListReviews(ctx context.Context, tx repository.Tx, providerID string) ([]*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Review(nil), m.reviews[providerID]...), nil
}

func (m *memProviderRepo) UpdateRating(ctx context.Context, tx repository.Tx, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[providerID]
	if !ok {
		return domain.ErrNotFound
	}
	revs := m.reviews[providerID]
	if len(revs) == 0 {
		p.Rating = 0
		return nil
	}
	var sum int
	for _, r := range revs {
		sum += r.Rating
	}
	p.Rating = float64(sum) / float64(len(revs))
	return nil
}

// memFavoriteRepo backs the favorites tests.
type memFavoriteRepo struct {
	mu     sync.Mutex
	favs   map[string]map[string]bool
	clicks []string
}

func newMemFavoriteRepo() *memFavoriteRepo {
	return &memFavoriteRepo{favs: make(map[string]map[string]bool)}
}

func (m *memFavoriteRepo) Add(ctx context.Context, tx repository.Tx, userID, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.favs[userID] == nil {
		m.favs[userID] = make(map[string]bool)
	}
	m.favs[userID][providerID] = true
	return nil
}

func (m *memFavoriteRepo) Remove(ctx context.Context, tx repository.Tx, userID, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favs[userID], providerID)
	return nil
}

func (m *memFavoriteRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id := range m.favs[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (m *memFavoriteRepo) Exists(ctx context.Context, tx repository.Tx, userID, providerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.favs[userID][providerID], nil
}

func (m *memFavoriteRepo) RecordClick(ctx context.Context, tx repository.Tx, userID, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, userID+":"+providerID)
	return nil
}
