// File: internal/usecase/directory_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/domain/model"
	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	"github.com/QuagHug/pet-service/internal/domain/ports/repository"
)

var _ DirectoryUseCase = (*directoryUC)(nil)

const (
	providerListCacheKey = "directory:providers:all"
	providerListCacheTTL = 5 * time.Minute
)

type DirectoryUseCase interface {
	ListProviders(ctx context.Context) ([]*model.ServiceProvider, error)
	GetProvider(ctx context.Context, id string) (*model.ServiceProvider, error)
	ListByCategory(ctx context.Context, category string) ([]*model.ServiceProvider, error)
	Search(ctx context.Context, query, category string) ([]*model.ServiceProvider, error)
	Nearby(ctx context.Context, lat, lng float64, maxDistanceMeters int) ([]*model.ServiceProvider, error)
	// AddReview stores the review and refreshes the provider's aggregate
	// rating in the same transaction.
	AddReview(ctx context.Context, providerID, userID string, rating int, comment string) (*model.Review, error)
	ListReviews(ctx context.Context, providerID string) ([]*model.Review, error)
}

type directoryUC struct {
	providers repository.ProviderRepository
	cache     adapter.Cache
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewDirectoryUseCase(
	providers repository.ProviderRepository,
	cache adapter.Cache,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *directoryUC {
	ucLog := logger.With().Str("component", "DirectoryUC").Logger()
	return &directoryUC{providers: providers, cache: cache, tm: tm, log: &ucLog}
}

func (u *directoryUC) ListProviders(ctx context.Context) ([]*model.ServiceProvider, error) {
	if u.cache != nil {
		if raw, ok, err := u.cache.Get(ctx, providerListCacheKey); err == nil && ok {
			var out []*model.ServiceProvider
			if err := json.Unmarshal([]byte(raw), &out); err == nil {
				return out, nil
			}
			// Poisoned entry, drop it and fall through to the database.
			_ = u.cache.Delete(ctx, providerListCacheKey)
		}
	}

	out, err := u.providers.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			if err := u.cache.Set(ctx, providerListCacheKey, string(raw), providerListCacheTTL); err != nil {
				u.log.Warn().Err(err).Msg("provider list cache write failed")
			}
		}
	}
	return out, nil
}

func (u *directoryUC) GetProvider(ctx context.Context, id string) (*model.ServiceProvider, error) {
	return u.providers.FindByID(ctx, nil, id)
}

func (u *directoryUC) ListByCategory(ctx context.Context, category string) ([]*model.ServiceProvider, error) {
	if !model.ValidCategory(category) {
		return nil, domain.ErrInvalidArgument
	}
	return u.providers.ListByCategory(ctx, nil, category)
}

func (u *directoryUC) Search(ctx context.Context, query, category string) ([]*model.ServiceProvider, error) {
	if category != "" && !model.ValidCategory(category) {
		return nil, domain.ErrInvalidArgument
	}
	return u.providers.Search(ctx, nil, query, category)
}

func (u *directoryUC) Nearby(ctx context.Context, lat, lng float64, maxDistanceMeters int) ([]*model.ServiceProvider, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, domain.ErrInvalidArgument
	}
	if maxDistanceMeters <= 0 {
		maxDistanceMeters = 10000
	}
	return u.providers.Nearby(ctx, nil, lat, lng, maxDistanceMeters)
}

func (u *directoryUC) AddReview(ctx context.Context, providerID, userID string, rating int, comment string) (*model.Review, error) {
	if _, err := u.providers.FindByID(ctx, nil, providerID); err != nil {
		return nil, err
	}
	review, err := model.NewReview(uuid.NewString(), userID, rating, comment)
	if err != nil {
		return nil, err
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.providers.AddReview(ctx, tx, providerID, review); err != nil {
			return err
		}
		return u.providers.UpdateRating(ctx, tx, providerID)
	})
	if err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}

	if u.cache != nil {
		_ = u.cache.Delete(ctx, providerListCacheKey)
	}
	return review, nil
}

func (u *directoryUC) ListReviews(ctx context.Context, providerID string) ([]*model.Review, error) {
	if _, err := u.providers.FindByID(ctx, nil, providerID); err != nil {
		return nil, err
	}
	return u.providers.ListReviews(ctx, nil, providerID)
}
