package model

import (
	"time"

	"github.com/QuagHug/pet-service/internal/domain"

	"github.com/google/uuid"
)

type MembershipStatus string

const (
	MembershipStatusInactive MembershipStatus = "inactive"
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusExpired  MembershipStatus = "expired"
)

type MembershipType string

const (
	MembershipTypeFree    MembershipType = "free"
	MembershipTypePremium MembershipType = "premium"
)

// Membership is the entitlement recorded on a user: a status, a tier and a
// validity window. It is mutated only by a confirmed payment notification,
// by ReconcileExpiry, or by an explicit admin update.
type Membership struct {
	Status        MembershipStatus `json:"status"`
	Type          MembershipType   `json:"type"`
	StartDate     *time.Time       `json:"startDate"`
	EndDate       *time.Time       `json:"endDate"`
	TransactionID *string          `json:"transactionId"`
}

// Active reports whether the membership is active at the given instant.
func (m Membership) Active(now time.Time) bool {
	return m.Status == MembershipStatusActive && m.EndDate != nil && m.EndDate.After(now)
}

// User is a domain entity representing a marketplace account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Membership   Membership
	CreatedAt    time.Time
}

func NewUser(id, name, email, passwordHash string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Membership: Membership{
			Status: MembershipStatusInactive,
			Type:   MembershipTypeFree,
		},
		CreatedAt: time.Now(),
	}, nil
}

// GrantPremium activates a premium window tied to the provider transaction
// id. The caller is responsible for claiming the order first so that a
// duplicate notification never reaches this method twice.
func (u *User) GrantPremium(transID string, now time.Time, duration time.Duration) {
	end := now.Add(duration)
	u.Membership = Membership{
		Status:        MembershipStatusActive,
		Type:          MembershipTypePremium,
		StartDate:     &now,
		EndDate:       &end,
		TransactionID: &transID,
	}
}

// ReconcileExpiry transitions active→expired once the end date has passed.
// It is idempotent and must be applied before any membership-gated decision.
// Returns true when the state changed and needs to be persisted.
func (u *User) ReconcileExpiry(now time.Time) bool {
	if u.Membership.Status != MembershipStatusActive {
		return false
	}
	if u.Membership.EndDate == nil || !u.Membership.EndDate.Before(now) {
		return false
	}
	u.Membership.Status = MembershipStatusExpired
	return true
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
