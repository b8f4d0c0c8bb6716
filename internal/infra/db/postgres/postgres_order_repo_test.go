//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/QuagHug/pet-service/internal/domain/model"

	"github.com/google/uuid"
)

func TestOrderRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewOrderRepo(testPool)
	userRepo := NewUserRepo(testPool)

	user, _ := model.NewUser("", "Alice", "alice@example.com", "hash")

	setupPrerequisites := func(t *testing.T) {
		cleanup(t)
		if err := userRepo.Save(ctx, nil, user); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}
	}

	newOrder := func() *model.PendingOrder {
		now := time.Now()
		return &model.PendingOrder{
			OrderID:   "MOMO_" + uuid.NewString(),
			RequestID: uuid.NewString(),
			Provider:  "momo",
			UserID:    user.ID,
			Amount:    50000,
			OrderInfo: "Premium Membership for Pet Services",
			ExtraData: "token",
			Status:    model.OrderStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("should save and find an order", func(t *testing.T) {
		setupPrerequisites(t)
		o := newOrder()

		if err := repo.Save(ctx, nil, o); err != nil {
			t.Fatalf("Failed to save order: %v", err)
		}

		got, err := repo.FindByOrderID(ctx, nil, o.OrderID)
		if err != nil {
			t.Fatalf("Failed to find order: %v", err)
		}
		if got.UserID != user.ID || got.Amount != 50000 || got.Status != model.OrderStatusPending {
			t.Errorf("loaded order = %+v", got)
		}
	})

	t.Run("MarkFinal claims a pending order exactly once", func(t *testing.T) {
		setupPrerequisites(t)
		o := newOrder()
		if err := repo.Save(ctx, nil, o); err != nil {
			t.Fatalf("Failed to save order: %v", err)
		}

		transID := "12345"
		claimed, err := repo.MarkFinal(ctx, nil, o.OrderID, model.OrderStatusCompleted, &transID)
		if err != nil {
			t.Fatalf("MarkFinal: %v", err)
		}
		if !claimed {
			t.Fatal("first MarkFinal did not claim the order")
		}

		// A second transition must be refused without error.
		claimed, err = repo.MarkFinal(ctx, nil, o.OrderID, model.OrderStatusFailed, nil)
		if err != nil {
			t.Fatalf("second MarkFinal: %v", err)
		}
		if claimed {
			t.Fatal("final order was claimed again")
		}

		got, _ := repo.FindByOrderID(ctx, nil, o.OrderID)
		if got.Status != model.OrderStatusCompleted {
			t.Errorf("status = %s, want completed", got.Status)
		}
		if got.TransID == nil || *got.TransID != transID {
			t.Errorf("trans id = %v, want %s", got.TransID, transID)
		}
	})

	t.Run("ListPendingOlderThan returns only stale pending orders", func(t *testing.T) {
		setupPrerequisites(t)

		stale := newOrder()
		stale.CreatedAt = time.Now().Add(-time.Hour)
		fresh := newOrder()
		if err := repo.Save(ctx, nil, stale); err != nil {
			t.Fatal(err)
		}
		if err := repo.Save(ctx, nil, fresh); err != nil {
			t.Fatal(err)
		}

		got, err := repo.ListPendingOlderThan(ctx, nil, time.Now().Add(-10*time.Minute), 10)
		if err != nil {
			t.Fatalf("ListPendingOlderThan: %v", err)
		}
		if len(got) != 1 || got[0].OrderID != stale.OrderID {
			t.Errorf("stale list = %+v", got)
		}
	})
}
