package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/domain/model"
	"github.com/QuagHug/pet-service/internal/domain/ports/repository"
)

var _ repository.PaymentRecordRepository = (*paymentRecordRepo)(nil)

type paymentRecordRepo struct{ pool *pgxpool.Pool }

func NewPaymentRecordRepo(pool *pgxpool.Pool) *paymentRecordRepo {
	return &paymentRecordRepo{pool: pool}
}

const paymentRecordColumns = `id, user_id, order_id, transaction_id, amount, payment_method, status, details, created_at`

func scanPaymentRecord(row pgx.Row) (*model.PaymentRecord, error) {
	p := &model.PaymentRecord{}
	if err := row.Scan(
		&p.ID, &p.UserID, &p.OrderID, &p.TransactionID, &p.Amount,
		&p.PaymentMethod, &p.Status, &p.Details, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paymentRecordRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
	const q = `
INSERT INTO payment_records (
  id, user_id, order_id, transaction_id, amount, payment_method, status, details, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
);`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.OrderID, p.TransactionID, p.Amount,
		p.PaymentMethod, p.Status, p.Details, p.CreatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRecordRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transID string) (*model.PaymentRecord, error) {
	const q = `SELECT ` + paymentRecordColumns + ` FROM payment_records WHERE transaction_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, transID)
	if err != nil {
		return nil, err
	}
	return scanPaymentRecord(row)
}

func (r *paymentRecordRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentRecord, error) {
	const q = `SELECT ` + paymentRecordColumns + ` FROM payment_records WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.PaymentRecord
	for rows.Next() {
		p, err := scanPaymentRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *paymentRecordRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM payment_records WHERE status='completed' AND created_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}

	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
