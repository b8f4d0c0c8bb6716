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

var _ repository.ProviderRepository = (*providerRepo)(nil)

type providerRepo struct{ pool *pgxpool.Pool }

func NewProviderRepo(pool *pgxpool.Pool) *providerRepo {
	return &providerRepo{pool: pool}
}

const providerColumns = `id, name, description, category, address, city, state, zip_code, latitude, longitude, phone, email, website, images, rating, affiliate_link, created_at`

func scanProvider(row pgx.Row) (*model.ServiceProvider, error) {
	p := &model.ServiceProvider{}
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category,
		&p.Location.Address, &p.Location.City, &p.Location.State, &p.Location.ZipCode,
		&p.Location.Latitude, &p.Location.Longitude,
		&p.ContactInfo.Phone, &p.ContactInfo.Email, &p.ContactInfo.Website,
		&p.Images, &p.Rating, &p.AffiliateLink, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *providerRepo) collect(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.ServiceProvider, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.ServiceProvider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *providerRepo) Save(ctx context.Context, tx repository.Tx, p *model.ServiceProvider) error {
	const q = `
INSERT INTO providers (
  id, name, description, category, address, city, state, zip_code, latitude, longitude, phone, email, website, images, rating, affiliate_link, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
) ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, category=$4, address=$5, city=$6, state=$7, zip_code=$8, latitude=$9, longitude=$10, phone=$11, email=$12, website=$13, images=$14, rating=$15, affiliate_link=$16;`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Name, p.Description, p.Category,
		p.Location.Address, p.Location.City, p.Location.State, p.Location.ZipCode,
		p.Location.Latitude, p.Location.Longitude,
		p.ContactInfo.Phone, p.ContactInfo.Email, p.ContactInfo.Website,
		p.Images, p.Rating, p.AffiliateLink, p.CreatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *providerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServiceProvider, error) {
	const q = `SELECT ` + providerColumns + ` FROM providers WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanProvider(row)
}

func (r *providerRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ServiceProvider, error) {
	const q = `SELECT ` + providerColumns + ` FROM providers ORDER BY rating DESC, name ASC;`
	return r.collect(ctx, tx, q)
}

func (r *providerRepo) ListByCategory(ctx context.Context, tx repository.Tx, category string) ([]*model.ServiceProvider, error) {
	const q = `SELECT ` + providerColumns + ` FROM providers WHERE category=$1 ORDER BY rating DESC, name ASC;`
	return r.collect(ctx, tx, q, category)
}

func (r *providerRepo) Search(ctx context.Context, tx repository.Tx, query, category string) ([]*model.ServiceProvider, error) {
	const q = `
SELECT ` + providerColumns + `
  FROM providers
 WHERE (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
   AND ($2 = '' OR category = $2)
 ORDER BY rating DESC, name ASC;`
	return r.collect(ctx, tx, q, query, category)
}

// Nearby computes great-circle distance with the haversine formula in SQL,
// so filtering and ordering stay in one round trip.
func (r *providerRepo) Nearby(ctx context.Context, tx repository.Tx, lat, lng float64, maxDistanceMeters int) ([]*model.ServiceProvider, error) {
	const q = `
SELECT ` + providerColumns + `
  FROM (
    SELECT *,
           2 * 6371000 * ASIN(SQRT(
             POWER(SIN(RADIANS(latitude - $1) / 2), 2) +
             COS(RADIANS($1)) * COS(RADIANS(latitude)) *
             POWER(SIN(RADIANS(longitude - $2) / 2), 2)
           )) AS distance_m
      FROM providers
  ) sub
 WHERE distance_m <= $3
 ORDER BY distance_m ASC;`
	return r.collect(ctx, tx, q, lat, lng, maxDistanceMeters)
}

func (r *providerRepo) AddReview(ctx context.Context, tx repository.Tx, providerID string, rev *model.Review) error {
	const q = `INSERT INTO reviews (id, provider_id, user_id, rating, comment, created_at) VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q, rev.ID, providerID, rev.UserID, rev.Rating, rev.Comment, rev.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *providerRepo) ListReviews(ctx context.Context, tx repository.Tx, providerID string) ([]*model.Review, error) {
	const q = `SELECT id, user_id, rating, comment, created_at FROM reviews WHERE provider_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, providerID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Review
	for rows.Next() {
		rev := &model.Review{}
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rev)
	}
	return out, nil
}

func (r *providerRepo) UpdateRating(ctx context.Context, tx repository.Tx, providerID string) error {
	const q = `
UPDATE providers
   SET rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE provider_id = $1)
 WHERE id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, providerID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
