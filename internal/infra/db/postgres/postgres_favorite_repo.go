package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/domain/ports/repository"
)

var _ repository.FavoriteRepository = (*favoriteRepo)(nil)

type favoriteRepo struct{ pool *pgxpool.Pool }

func NewFavoriteRepo(pool *pgxpool.Pool) *favoriteRepo {
	return &favoriteRepo{pool: pool}
}

func (r *favoriteRepo) Add(ctx context.Context, tx repository.Tx, userID, providerID string) error {
	const q = `INSERT INTO favorites (user_id, provider_id, created_at) VALUES ($1,$2,NOW()) ON CONFLICT DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, userID, providerID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *favoriteRepo) Remove(ctx context.Context, tx repository.Tx, userID, providerID string) error {
	const q = `DELETE FROM favorites WHERE user_id=$1 AND provider_id=$2;`
	_, err := execSQL(ctx, r.pool, tx, q, userID, providerID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *favoriteRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]string, error) {
	const q = `SELECT provider_id FROM favorites WHERE user_id=$1 ORDER BY created_at DESC;`
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

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, id)
	}
	return out, nil
}

func (r *favoriteRepo) Exists(ctx context.Context, tx repository.Tx, userID, providerID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id=$1 AND provider_id=$2);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, providerID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *favoriteRepo) RecordClick(ctx context.Context, tx repository.Tx, userID, providerID string) error {
	const q = `INSERT INTO click_history (user_id, provider_id, clicked_at) VALUES ($1,$2,NOW());`
	_, err := execSQL(ctx, r.pool, tx, q, userID, providerID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
