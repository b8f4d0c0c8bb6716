package repository

import (
	"context"
	"time"

	"github.com/QuagHug/pet-service/internal/domain/model"
)

// -----------------------------
// Pending orders
// -----------------------------

type PendingOrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.PendingOrder) error
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.PendingOrder, error)
	// MarkFinal atomically transitions pending → completed/failed. Returns
	// false without error when the order was already final, which is how a
	// duplicate webhook delivery is detected.
	MarkFinal(ctx context.Context, tx Tx, orderID string, status model.OrderStatus, transID *string) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.PendingOrder, error)
}

// -----------------------------
// Payment audit records
// -----------------------------

type PaymentRecordRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PaymentRecord) error
	FindByTransactionID(ctx context.Context, tx Tx, transID string) (*model.PaymentRecord, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.PaymentRecord, error)
	SumByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
