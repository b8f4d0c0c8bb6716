package repository

import (
	"context"

	"github.com/QuagHug/pet-service/internal/domain/model"
)

// -----------------------------
// Service directory
// -----------------------------

type ProviderRepository interface {
	Save(ctx context.Context, tx Tx, p *model.ServiceProvider) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ServiceProvider, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.ServiceProvider, error)
	ListByCategory(ctx context.Context, tx Tx, category string) ([]*model.ServiceProvider, error)
	// Search matches name/description case-insensitively; category narrows
	// the result when non-empty.
	Search(ctx context.Context, tx Tx, query, category string) ([]*model.ServiceProvider, error)
	// Nearby returns providers within maxDistanceMeters of the point,
	// closest first.
	Nearby(ctx context.Context, tx Tx, lat, lng float64, maxDistanceMeters int) ([]*model.ServiceProvider, error)
	AddReview(ctx context.Context, tx Tx, providerID string, r *model.Review) error
	ListReviews(ctx context.Context, tx Tx, providerID string) ([]*model.Review, error)
	// UpdateRating recomputes the aggregate from the reviews table in one
	// statement.
	UpdateRating(ctx context.Context, tx Tx, providerID string) error
}
