// File: internal/usecase/user_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/domain/model"
	"github.com/QuagHug/pet-service/internal/domain/ports/repository"
)

var _ UserUseCase = (*userUC)(nil)

type UserUseCase interface {
	// Register creates an account with a free membership. Email is unique.
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	// Login verifies credentials and returns the account on success.
	Login(ctx context.Context, email, password string) (*model.User, error)
	Profile(ctx context.Context, userID string) (*model.User, error)

	AddFavorite(ctx context.Context, userID, providerID string) error
	RemoveFavorite(ctx context.Context, userID, providerID string) error
	ListFavorites(ctx context.Context, userID string) ([]string, error)
	// RecordClick tracks an affiliate link click-through.
	RecordClick(ctx context.Context, userID, providerID string) error
}

type userUC struct {
	users     repository.UserRepository
	favorites repository.FavoriteRepository
	providers repository.ProviderRepository
	log       *zerolog.Logger
}

func NewUserUseCase(
	users repository.UserRepository,
	favorites repository.FavoriteRepository,
	providers repository.ProviderRepository,
	logger *zerolog.Logger,
) *userUC {
	ucLog := logger.With().Str("component", "UserUC").Logger()
	return &userUC{users: users, favorites: favorites, providers: providers, log: &ucLog}
}

func (u *userUC) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < 6 {
		return nil, domain.ErrInvalidArgument
	}

	if _, err := u.users.FindByEmail(ctx, nil, email); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := model.NewUser("", name, email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := u.users.Save(ctx, nil, user); err != nil {
		return nil, err
	}

	u.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (u *userUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := u.users.FindByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same error for unknown email and bad password.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (u *userUC) Profile(ctx context.Context, userID string) (*model.User, error) {
	return u.users.FindByID(ctx, nil, userID)
}

func (u *userUC) AddFavorite(ctx context.Context, userID, providerID string) error {
	if _, err := u.providers.FindByID(ctx, nil, providerID); err != nil {
		return err
	}
	exists, err := u.favorites.Exists(ctx, nil, userID, providerID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyFavorite
	}
	return u.favorites.Add(ctx, nil, userID, providerID)
}

func (u *userUC) RemoveFavorite(ctx context.Context, userID, providerID string) error {
	exists, err := u.favorites.Exists(ctx, nil, userID, providerID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFavorite
	}
	return u.favorites.Remove(ctx, nil, userID, providerID)
}

func (u *userUC) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	return u.favorites.ListByUser(ctx, nil, userID)
}

func (u *userUC) RecordClick(ctx context.Context, userID, providerID string) error {
	if _, err := u.providers.FindByID(ctx, nil, providerID); err != nil {
		return err
	}
	return u.favorites.RecordClick(ctx, nil, userID, providerID)
}
