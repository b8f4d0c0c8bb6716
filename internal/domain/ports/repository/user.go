package repository

import (
	"context"
	"time"

	"github.com/QuagHug/pet-service/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	// UpdateMembership overwrites the membership columns for one user in a
	// single statement so concurrent webhook deliveries cannot interleave a
	// read-modify-write.
	UpdateMembership(ctx context.Context, tx Tx, userID string, m model.Membership) error
	// ExpireMembershipIfDue flips one user's membership to expired with a
	// single conditional update; the claim fails harmlessly when a
	// concurrent grant has already superseded the overdue window.
	ExpireMembershipIfDue(ctx context.Context, tx Tx, userID string, now time.Time) (bool, error)
	// ExpireMemberships flips every active membership whose end date has
	// passed to expired, returning how many rows changed.
	ExpireMemberships(ctx context.Context, tx Tx, now time.Time) (int, error)
}

// -----------------------------
// Favorites
// -----------------------------

type FavoriteRepository interface {
	Add(ctx context.Context, tx Tx, userID, providerID string) error
	Remove(ctx context.Context, tx Tx, userID, providerID string) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]string, error)
	Exists(ctx context.Context, tx Tx, userID, providerID string) (bool, error)
	// RecordClick appends an affiliate click to the user's history.
	RecordClick(ctx context.Context, tx Tx, userID, providerID string) error
}
