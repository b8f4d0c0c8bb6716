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

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

const userColumns = `id, name, email, password_hash, membership_status, membership_type, membership_start_date, membership_end_date, membership_transaction_id, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Membership.Status, &u.Membership.Type,
		&u.Membership.StartDate, &u.Membership.EndDate, &u.Membership.TransactionID,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return u, nil
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, name, email, password_hash, membership_status, membership_type, membership_start_date, membership_end_date, membership_transaction_id, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  name=$2, email=$3, password_hash=$4, membership_status=$5, membership_type=$6, membership_start_date=$7, membership_end_date=$8, membership_transaction_id=$9;`

	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.Name, u.Email, u.PasswordHash,
		u.Membership.Status, u.Membership.Type,
		u.Membership.StartDate, u.Membership.EndDate, u.Membership.TransactionID,
		u.CreatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) UpdateMembership(ctx context.Context, tx repository.Tx, userID string, m model.Membership) error {
	const q = `
UPDATE users
   SET membership_status=$2,
       membership_type=$3,
       membership_start_date=$4,
       membership_end_date=$5,
       membership_transaction_id=$6
 WHERE id=$1;`

	cmd, err := execSQL(ctx, r.pool, tx, q, userID, m.Status, m.Type, m.StartDate, m.EndDate, m.TransactionID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) ExpireMembershipIfDue(ctx context.Context, tx repository.Tx, userID string, now time.Time) (bool, error) {
	// The WHERE clause is the whole point: a grant that landed after the
	// caller's snapshot makes this match zero rows instead of clobbering it.
	const q = `
UPDATE users
   SET membership_status='expired'
 WHERE id=$1
   AND membership_status='active'
   AND membership_end_date IS NOT NULL
   AND membership_end_date < $2;`

	cmd, err := execSQL(ctx, r.pool, tx, q, userID, now)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *userRepo) ExpireMemberships(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `
UPDATE users
   SET membership_status='expired'
 WHERE membership_status='active'
   AND membership_end_date IS NOT NULL
   AND membership_end_date < $1;`

	cmd, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return int(cmd.RowsAffected()), nil
}
