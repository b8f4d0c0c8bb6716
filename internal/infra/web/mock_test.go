package web

import (
	"context"

	"github.com/QuagHug/pet-service/internal/domain/model"
	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	"github.com/QuagHug/pet-service/internal/infra/momo"
	"github.com/QuagHug/pet-service/internal/usecase"
)

// Function-field mocks so each test scripts only what it needs.

type mockMembershipUC struct {
	initiateFn     func(ctx context.Context, userID string) (string, *model.PendingOrder, error)
	initiateCardFn func(ctx context.Context, userID string) (string, error)
	applyFn        func(ctx context.Context, n usecase.PaymentNotification) error
	membershipFn   func(ctx context.Context, userID string) (*model.Membership, error)
	checkStatusFn  func(ctx context.Context, userID, orderID string) (*adapter.PaymentStatusResult, error)
	historyFn      func(ctx context.Context, userID string) ([]*model.PaymentRecord, error)
}

func (m *mockMembershipUC) Initiate(ctx context.Context, userID string) (string, *model.PendingOrder, error) {
	return m.initiateFn(ctx, userID)
}

func (m *mockMembershipUC) InitiateCard(ctx context.Context, userID string) (string, error) {
	return m.initiateCardFn(ctx, userID)
}

func (m *mockMembershipUC) ApplyNotification(ctx context.Context, n usecase.PaymentNotification) error {
	return m.applyFn(ctx, n)
}

func (m *mockMembershipUC) Membership(ctx context.Context, userID string) (*model.Membership, error) {
	return m.membershipFn(ctx, userID)
}

func (m *mockMembershipUC) CheckStatus(ctx context.Context, userID, orderID string) (*adapter.PaymentStatusResult, error) {
	return m.checkStatusFn(ctx, userID, orderID)
}

func (m *mockMembershipUC) FinishExpired(ctx context.Context) (int, error) { return 0, nil }

func (m *mockMembershipUC) History(ctx context.Context, userID string) ([]*model.PaymentRecord, error) {
	return m.historyFn(ctx, userID)
}

type mockUserUC struct {
	registerFn func(ctx context.Context, name, email, password string) (*model.User, error)
	loginFn    func(ctx context.Context, email, password string) (*model.User, error)
}

func (m *mockUserUC) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	return m.registerFn(ctx, name, email, password)
}

func (m *mockUserUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockUserUC) Profile(ctx context.Context, userID string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserUC) AddFavorite(ctx context.Context, userID, providerID string) error    { return nil }
func (m *mockUserUC) RemoveFavorite(ctx context.Context, userID, providerID string) error { return nil }
func (m *mockUserUC) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
func (m *mockUserUC) RecordClick(ctx context.Context, userID, providerID string) error { return nil }

type mockDirectoryUC struct {
	listFn func(ctx context.Context) ([]*model.ServiceProvider, error)
}

func (m *mockDirectoryUC) ListProviders(ctx context.Context) ([]*model.ServiceProvider, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockDirectoryUC) GetProvider(ctx context.Context, id string) (*model.ServiceProvider, error) {
	return nil, nil
}

func (m *mockDirectoryUC) ListByCategory(ctx context.Context, category string) ([]*model.ServiceProvider, error) {
	return nil, nil
}

func (m *mockDirectoryUC) Search(ctx context.Context, query, category string) ([]*model.ServiceProvider, error) {
	return nil, nil
}

func (m *mockDirectoryUC) Nearby(ctx context.Context, lat, lng float64, maxDistanceMeters int) ([]*model.ServiceProvider, error) {
	return nil, nil
}

func (m *mockDirectoryUC) AddReview(ctx context.Context, providerID, userID string, rating int, comment string) (*model.Review, error) {
	return nil, nil
}

func (m *mockDirectoryUC) ListReviews(ctx context.Context, providerID string) ([]*model.Review, error) {
	return nil, nil
}

// fakeVerifier accepts or rejects every callback.
type fakeVerifier struct{ ok bool }

func (f fakeVerifier) VerifyCallback(n *momo.Notification) bool { return f.ok }
