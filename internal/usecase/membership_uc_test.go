// File: internal/usecase/membership_uc_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/domain/model"
	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	"github.com/QuagHug/pet-service/internal/infra/momo"
)

func newTestMembershipUC(users *memUserRepo, orders *memOrderRepo, records *memRecordRepo, gw *fakeGateway) *membershipUC {
	logger := zerolog.Nop()
	return NewMembershipUseCase(users, orders, records, gw, nil, memTxManager{}, 50000, 30, "Premium Membership for Pet Services", &logger)
}

func seedUser(t *testing.T, users *memUserRepo, id string) *model.User {
	t.Helper()
	u, err := model.NewUser(id, "Alice", id+"@example.com", "hash")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := users.Save(context.Background(), nil, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// successNotification builds the callback the provider would deliver for a
// saved order.
func successNotification(o *model.PendingOrder, transID string) PaymentNotification {
	return PaymentNotification{
		Provider:  "momo",
		OrderID:   o.OrderID,
		RequestID: o.RequestID,
		TransID:   transID,
		Amount:    o.Amount,
		Succeeded: true,
		Message:   "Successful.",
		ExtraData: o.ExtraData,
	}
}

func savedOrder(t *testing.T, orders *memOrderRepo, orderID string) *model.PendingOrder {
	t.Helper()
	o, err := orders.FindByOrderID(context.Background(), nil, orderID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	return o
}

func TestInitiateCreatesPendingOrder(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")

	payURL, order, err := uc.Initiate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if payURL == "" {
		t.Fatal("expected a pay URL")
	}
	if !strings.HasPrefix(order.OrderID, "MOMO_") {
		t.Errorf("order id %q missing MOMO_ prefix", order.OrderID)
	}
	if order.Amount != 50000 {
		t.Errorf("amount = %d, want 50000", order.Amount)
	}

	stored := savedOrder(t, orders, order.OrderID)
	if stored.Status != model.OrderStatusPending {
		t.Errorf("status = %s, want pending", stored.Status)
	}
	decoded, err := momo.DecodeExtraData(stored.ExtraData)
	if err != nil {
		t.Fatalf("DecodeExtraData: %v", err)
	}
	if decoded != user.ID {
		t.Errorf("extraData user = %q, want %q", decoded, user.ID)
	}
}

func TestInitiateGatewayFailureMarksOrderFailed(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	gw := &fakeGateway{
		createFn: func(ctx context.Context, orderID, requestID string, amount int64, orderInfo, extraData string) (*adapter.CreatePaymentResult, error) {
			return nil, errors.New("gateway down")
		},
	}
	uc := newTestMembershipUC(users, orders, records, gw)
	user := seedUser(t, users, "u1")

	_, _, err := uc.Initiate(context.Background(), user.ID)
	if err == nil {
		t.Fatal("expected error")
	}

	// The order persisted before the gateway call must not stay pending.
	var failed int
	for id := range orders.store {
		if orders.store[id].Status == model.OrderStatusFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("failed orders = %d, want 1", failed)
	}
}

func TestApplyNotificationGrantsMembership(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")

	_, order, err := uc.Initiate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	before := time.Now()
	if err := uc.ApplyNotification(context.Background(), successNotification(order, "9900112233")); err != nil {
		t.Fatalf("ApplyNotification: %v", err)
	}

	got, _ := users.FindByID(context.Background(), nil, user.ID)
	if got.Membership.Status != model.MembershipStatusActive {
		t.Errorf("status = %s, want active", got.Membership.Status)
	}
	if got.Membership.Type != model.MembershipTypePremium {
		t.Errorf("type = %s, want premium", got.Membership.Type)
	}
	if got.Membership.TransactionID == nil || *got.Membership.TransactionID != "9900112233" {
		t.Errorf("transaction id = %v, want 9900112233", got.Membership.TransactionID)
	}
	wantEnd := before.Add(30 * 24 * time.Hour)
	if got.Membership.EndDate == nil || got.Membership.EndDate.Sub(wantEnd) > time.Minute || wantEnd.Sub(*got.Membership.EndDate) > time.Minute {
		t.Errorf("end date = %v, want about %v", got.Membership.EndDate, wantEnd)
	}

	if records.count() != 1 {
		t.Errorf("records = %d, want 1", records.count())
	}
	if savedOrder(t, orders, order.OrderID).Status != model.OrderStatusCompleted {
		t.Error("order not completed")
	}
}

func TestApplyNotificationDuplicateDeliveryIsNoOp(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")

	_, order, _ := uc.Initiate(context.Background(), user.ID)
	n := successNotification(order, "777")

	if err := uc.ApplyNotification(context.Background(), n); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	first, _ := users.FindByID(context.Background(), nil, user.ID)

	// Redelivery must acknowledge without touching anything.
	if err := uc.ApplyNotification(context.Background(), n); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	second, _ := users.FindByID(context.Background(), nil, user.ID)

	if !first.Membership.EndDate.Equal(*second.Membership.EndDate) {
		t.Error("duplicate delivery extended the membership")
	}
	if records.count() != 1 {
		t.Errorf("records = %d, want 1", records.count())
	}
}

func TestApplyNotificationFailureLeavesMembershipUnchanged(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")

	_, order, _ := uc.Initiate(context.Background(), user.ID)
	n := successNotification(order, "777")
	n.Succeeded = false
	n.Message = "Transaction cancelled by user."

	if err := uc.ApplyNotification(context.Background(), n); err != nil {
		t.Fatalf("ApplyNotification: %v", err)
	}

	got, _ := users.FindByID(context.Background(), nil, user.ID)
	if got.Membership.Status != model.MembershipStatusInactive || got.Membership.Type != model.MembershipTypeFree {
		t.Errorf("membership changed on failed payment: %+v", got.Membership)
	}
	if records.count() != 0 {
		t.Errorf("records = %d, want 0", records.count())
	}
	if savedOrder(t, orders, order.OrderID).Status != model.OrderStatusFailed {
		t.Error("order not marked failed")
	}
}

func TestApplyNotificationUserMismatchRejected(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")
	seedUser(t, users, "u2")

	_, order, _ := uc.Initiate(context.Background(), user.ID)
	n := successNotification(order, "777")
	n.ExtraData = momo.EncodeExtraData("u2") // token does not match the order

	err := uc.ApplyNotification(context.Background(), n)
	if !errors.Is(err, domain.ErrBadExtraData) {
		t.Fatalf("err = %v, want ErrBadExtraData", err)
	}
	if savedOrder(t, orders, order.OrderID).Status != model.OrderStatusPending {
		t.Error("rejected notification mutated the order")
	}
}

func TestApplyNotificationMissingExtraDataNoMutation(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")

	_, order, _ := uc.Initiate(context.Background(), user.ID)
	n := successNotification(order, "777")
	n.ExtraData = "" // correlation token never arrived

	err := uc.ApplyNotification(context.Background(), n)
	if !errors.Is(err, domain.ErrBadExtraData) {
		t.Fatalf("err = %v, want ErrBadExtraData", err)
	}
	got, _ := users.FindByID(context.Background(), nil, user.ID)
	if got.Membership.Status != model.MembershipStatusInactive {
		t.Errorf("membership mutated without a correlation token: %+v", got.Membership)
	}
	if savedOrder(t, orders, order.OrderID).Status != model.OrderStatusPending {
		t.Error("order mutated without a correlation token")
	}
	if records.count() != 0 {
		t.Errorf("records = %d, want 0", records.count())
	}
}

func TestApplyNotificationAmountMismatchRejected(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")

	_, order, _ := uc.Initiate(context.Background(), user.ID)
	n := successNotification(order, "777")
	n.Amount = 1

	err := uc.ApplyNotification(context.Background(), n)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	got, _ := users.FindByID(context.Background(), nil, user.ID)
	if got.Membership.Status == model.MembershipStatusActive {
		t.Error("amount mismatch still granted membership")
	}
}

func TestMembershipReconcilesExpiryOnRead(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")
	user.GrantPremium("t1", time.Now().Add(-40*24*time.Hour), 30*24*time.Hour)
	if err := users.Save(context.Background(), nil, user); err != nil {
		t.Fatal(err)
	}

	m, err := uc.Membership(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Membership: %v", err)
	}
	if m.Status != model.MembershipStatusExpired {
		t.Errorf("status = %s, want expired", m.Status)
	}

	// The transition is persisted, not just reported.
	got, _ := users.FindByID(context.Background(), nil, user.ID)
	if got.Membership.Status != model.MembershipStatusExpired {
		t.Error("expiry not persisted")
	}
}

func TestMembershipExpiryDoesNotClobberConcurrentGrant(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")
	user.GrantPremium("old-tx", time.Now().Add(-40*24*time.Hour), 30*24*time.Hour)
	if err := users.Save(context.Background(), nil, user); err != nil {
		t.Fatal(err)
	}

	// A webhook grant lands between the read and the expiry claim.
	users.beforeExpireIfDue = func() {
		fresh, err := users.FindByID(context.Background(), nil, user.ID)
		if err != nil {
			t.Fatal(err)
		}
		fresh.GrantPremium("new-tx", time.Now(), 30*24*time.Hour)
		if err := users.UpdateMembership(context.Background(), nil, fresh.ID, fresh.Membership); err != nil {
			t.Fatal(err)
		}
	}

	m, err := uc.Membership(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Membership: %v", err)
	}
	if m.Status != model.MembershipStatusActive {
		t.Errorf("status = %s, want active", m.Status)
	}

	got, _ := users.FindByID(context.Background(), nil, user.ID)
	if got.Membership.Status != model.MembershipStatusActive {
		t.Errorf("stored status = %s, want active", got.Membership.Status)
	}
	if got.Membership.TransactionID == nil || *got.Membership.TransactionID != "new-tx" {
		t.Errorf("transaction id = %v, want new-tx; the fresh grant was lost", got.Membership.TransactionID)
	}
}

func TestCheckStatusEnforcesOwnership(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})
	user := seedUser(t, users, "u1")
	seedUser(t, users, "u2")

	_, order, _ := uc.Initiate(context.Background(), user.ID)

	if _, err := uc.CheckStatus(context.Background(), "u2", order.OrderID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if _, err := uc.CheckStatus(context.Background(), "u1", order.OrderID); err != nil {
		t.Fatalf("owner query: %v", err)
	}
}

func TestFinishExpired(t *testing.T) {
	users, orders, records := newMemUserRepo(), newMemOrderRepo(), newMemRecordRepo()
	uc := newTestMembershipUC(users, orders, records, &fakeGateway{})

	overdue := seedUser(t, users, "u1")
	overdue.GrantPremium("t1", time.Now().Add(-60*24*time.Hour), 30*24*time.Hour)
	users.Save(context.Background(), nil, overdue)

	current := seedUser(t, users, "u2")
	current.GrantPremium("t2", time.Now(), 30*24*time.Hour)
	users.Save(context.Background(), nil, current)

	n, err := uc.FinishExpired(context.Background())
	if err != nil {
		t.Fatalf("FinishExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("expired = %d, want 1", n)
	}
	got, _ := users.FindByID(context.Background(), nil, "u2")
	if got.Membership.Status != model.MembershipStatusActive {
		t.Error("current membership was expired prematurely")
	}
}
