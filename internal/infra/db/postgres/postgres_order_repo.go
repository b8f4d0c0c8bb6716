package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/domain/model"
	"github.com/QuagHug/pet-service/internal/domain/ports/repository"
)

var _ repository.PendingOrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `order_id, request_id, provider, user_id, amount, order_info, extra_data, status, trans_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.PendingOrder, error) {
	o := &model.PendingOrder{}
	if err := row.Scan(
		&o.OrderID, &o.RequestID, &o.Provider, &o.UserID, &o.Amount,
		&o.OrderInfo, &o.ExtraData, &o.Status, &o.TransID,
		&o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return o, nil
}

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.PendingOrder) error {
	const q = `
INSERT INTO pending_orders (
  order_id, request_id, provider, user_id, amount, order_info, extra_data, status, trans_id, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
);`

	_, err := execSQL(ctx, r.pool, tx, q,
		o.OrderID, o.RequestID, o.Provider, o.UserID, o.Amount,
		o.OrderInfo, o.ExtraData, o.Status, o.TransID,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.PendingOrder, error) {
	q := `SELECT ` + orderColumns + ` FROM pending_orders WHERE order_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

// MarkFinal atomically transitions pending -> completed/failed. The WHERE
// clause is the idempotency barrier: once a row is final, re-delivered
// notifications affect zero rows and the caller sees claimed=false.
func (r *orderRepo) MarkFinal(ctx context.Context, tx repository.Tx, orderID string, status model.OrderStatus, transID *string) (bool, error) {
	const q = `
UPDATE pending_orders
   SET status = $2,
       trans_id = COALESCE($3, trans_id),
       updated_at = NOW()
 WHERE order_id = $1
   AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, string(status), transID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *orderRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PendingOrder, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + orderColumns + ` FROM pending_orders WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.PendingOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
