// File: internal/usecase/membership_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/domain/model"
	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	"github.com/QuagHug/pet-service/internal/domain/ports/repository"
	"github.com/QuagHug/pet-service/internal/infra/metrics"
	"github.com/QuagHug/pet-service/internal/infra/momo"
)

// Compile-time check
var _ MembershipUseCase = (*membershipUC)(nil)

// PaymentNotification is the provider-agnostic projection of a callback,
// normalized exactly once at the transport boundary: Succeeded already folds
// the provider's inconsistent result-code encodings.
type PaymentNotification struct {
	Provider     string
	OrderID      string
	RequestID    string
	TransID      string
	Amount       int64
	Succeeded    bool
	Message      string
	OrderInfo    string
	OrderType    string
	PayType      string
	ResponseTime string
	ExtraData    string // opaque correlation token, may be empty
	UserID       string // direct correlation (card path), may be empty
}

type MembershipUseCase interface {
	// Initiate starts the upgrade flow: persists a pending order, asks the
	// gateway for a payment page and returns the redirect URL.
	Initiate(ctx context.Context, userID string) (string, *model.PendingOrder, error)
	// InitiateCard starts the secondary card-payment flow.
	InitiateCard(ctx context.Context, userID string) (string, error)
	// ApplyNotification applies a provider callback to the entitlement
	// store. Safe to call any number of times for the same order.
	ApplyNotification(ctx context.Context, n PaymentNotification) error
	// Membership returns the user's entitlement after reconciling expiry.
	Membership(ctx context.Context, userID string) (*model.Membership, error)
	// CheckStatus proxies the provider's transaction-status query.
	CheckStatus(ctx context.Context, userID, orderID string) (*adapter.PaymentStatusResult, error)
	// FinishExpired transitions every overdue active membership to expired.
	FinishExpired(ctx context.Context) (int, error)
	// History lists the user's audit records, newest first.
	History(ctx context.Context, userID string) ([]*model.PaymentRecord, error)
}

type membershipUC struct {
	users   repository.UserRepository
	orders  repository.PendingOrderRepository
	records repository.PaymentRecordRepository
	gateway adapter.PaymentGateway
	card    adapter.CardGateway
	tm      repository.TransactionManager

	price     int64
	duration  time.Duration
	orderInfo string

	log *zerolog.Logger
}

func NewMembershipUseCase(
	users repository.UserRepository,
	orders repository.PendingOrderRepository,
	records repository.PaymentRecordRepository,
	gateway adapter.PaymentGateway,
	card adapter.CardGateway,
	tm repository.TransactionManager,
	priceVND int64,
	durationDays int,
	orderInfo string,
	logger *zerolog.Logger,
) *membershipUC {
	ucLog := logger.With().Str("component", "MembershipUC").Logger()
	return &membershipUC{
		users:     users,
		orders:    orders,
		records:   records,
		gateway:   gateway,
		card:      card,
		tm:        tm,
		price:     priceVND,
		duration:  time.Duration(durationDays) * 24 * time.Hour,
		orderInfo: orderInfo,
		log:       &ucLog,
	}
}

// newOrderID returns a time-ordered id that stays unique under concurrent
// initiations (millisecond timestamp plus random entropy).
func newOrderID() string {
	return "MOMO_" + ulid.Make().String()
}

func (u *membershipUC) Initiate(ctx context.Context, userID string) (string, *model.PendingOrder, error) {
	user, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	order := &model.PendingOrder{
		OrderID:   newOrderID(),
		RequestID: uuid.NewString(),
		Provider:  u.gateway.Name(),
		UserID:    user.ID,
		Amount:    u.price,
		OrderInfo: u.orderInfo,
		ExtraData: momo.EncodeExtraData(user.ID),
		Status:    model.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// The order is durable before the provider ever sees it, so a callback
	// can always be correlated even if this process dies mid-flight.
	if err := u.orders.Save(ctx, nil, order); err != nil {
		return "", nil, err
	}

	res, err := u.gateway.CreatePayment(ctx, order.OrderID, order.RequestID, order.Amount, order.OrderInfo, order.ExtraData)
	if err != nil {
		if _, markErr := u.orders.MarkFinal(ctx, nil, order.OrderID, model.OrderStatusFailed, nil); markErr != nil {
			u.log.Error().Err(markErr).Str("order_id", order.OrderID).Msg("mark failed after gateway error")
		}
		return "", nil, fmt.Errorf("create payment: %w", err)
	}

	metrics.IncPaymentOrder("initiated")
	u.log.Info().Str("order_id", order.OrderID).Str("user_id", user.ID).Msg("payment initiated")
	return res.PayURL, order, nil
}

func (u *membershipUC) InitiateCard(ctx context.Context, userID string) (string, error) {
	user, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		return "", err
	}

	session, err := u.card.CreateCheckout(ctx, user.ID, u.price, "vnd", u.orderInfo)
	if err != nil {
		return "", fmt.Errorf("create checkout: %w", err)
	}

	now := time.Now()
	order := &model.PendingOrder{
		OrderID:   session.SessionID,
		RequestID: uuid.NewString(),
		Provider:  u.card.Name(),
		UserID:    user.ID,
		Amount:    u.price,
		OrderInfo: u.orderInfo,
		Status:    model.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.orders.Save(ctx, nil, order); err != nil {
		return "", err
	}

	metrics.IncPaymentOrder("initiated")
	return session.PayURL, nil
}

func (u *membershipUC) ApplyNotification(ctx context.Context, n PaymentNotification) error {
	log := u.log.With().Str("order_id", n.OrderID).Str("provider", n.Provider).Logger()

	order, err := u.orders.FindByOrderID(ctx, nil, n.OrderID)
	if err != nil {
		log.Warn().Err(err).Msg("notification for unknown order")
		metrics.IncWebhookNotification(n.Provider, "rejected")
		return err
	}
	if order.Provider != n.Provider {
		metrics.IncWebhookNotification(n.Provider, "rejected")
		return domain.ErrInvalidArgument
	}

	// The correlation token is attacker-visible; it is verified against the
	// persisted order, never used as the source of truth on its own.
	claimedUser := n.UserID
	if n.ExtraData != "" {
		claimedUser, err = momo.DecodeExtraData(n.ExtraData)
		if err != nil {
			log.Warn().Err(err).Msg("notification extraData undecodable")
			metrics.IncWebhookNotification(n.Provider, "rejected")
			return err
		}
	}
	if claimedUser == "" || claimedUser != order.UserID {
		log.Warn().Str("claimed_user", claimedUser).Msg("notification user mismatch")
		metrics.IncWebhookNotification(n.Provider, "rejected")
		return domain.ErrBadExtraData
	}

	if !n.Succeeded {
		applied, err := u.orders.MarkFinal(ctx, nil, order.OrderID, model.OrderStatusFailed, nil)
		if err != nil {
			return err
		}
		if applied {
			metrics.IncPaymentOrder("failed")
		}
		log.Info().Str("message", n.Message).Msg("payment failed, no entitlement change")
		metrics.IncWebhookNotification(n.Provider, "failed")
		return nil
	}

	if n.Amount != order.Amount {
		log.Warn().Int64("got", n.Amount).Int64("want", order.Amount).Msg("notification amount mismatch")
		metrics.IncWebhookNotification(n.Provider, "rejected")
		return domain.ErrInvalidArgument
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		claimed, err := u.orders.MarkFinal(ctx, tx, order.OrderID, model.OrderStatusCompleted, &n.TransID)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrOrderAlreadyFinal
		}

		user, err := u.users.FindByID(ctx, tx, order.UserID)
		if err != nil {
			return err
		}
		user.GrantPremium(n.TransID, time.Now(), u.duration)
		if err := u.users.UpdateMembership(ctx, tx, user.ID, user.Membership); err != nil {
			return err
		}

		rec := &model.PaymentRecord{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			OrderID:       order.OrderID,
			TransactionID: n.TransID,
			Amount:        n.Amount,
			PaymentMethod: n.Provider,
			Status:        model.PaymentStatusCompleted,
			Details: map[string]interface{}{
				"orderInfo":    n.OrderInfo,
				"orderType":    n.OrderType,
				"payType":      n.PayType,
				"responseTime": n.ResponseTime,
			},
			CreatedAt: time.Now(),
		}
		return u.records.Save(ctx, tx, rec)
	})
	if errors.Is(err, domain.ErrOrderAlreadyFinal) {
		// Provider retry of an already-applied success: acknowledge, do not
		// double-grant.
		log.Info().Msg("duplicate notification ignored")
		metrics.IncWebhookNotification(n.Provider, "duplicate")
		return nil
	}
	if err != nil {
		metrics.IncWebhookNotification(n.Provider, "error")
		return err
	}

	metrics.IncPaymentOrder("completed")
	metrics.AddPaymentRevenue(n.Provider, n.Amount)
	metrics.IncMembershipGranted()
	metrics.IncWebhookNotification(n.Provider, "applied")
	log.Info().Str("trans_id", n.TransID).Msg("membership granted")
	return nil
}

func (u *membershipUC) Membership(ctx context.Context, userID string) (*model.Membership, error) {
	user, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user.ReconcileExpiry(time.Now()) {
		// The transition is claimed with a conditional update, never by
		// writing the snapshot back: a webhook grant landing after the read
		// above leaves the claim unmatched instead of being overwritten.
		claimed, err := u.users.ExpireMembershipIfDue(ctx, nil, user.ID, time.Now())
		if err != nil {
			return nil, err
		}
		if claimed {
			metrics.IncMembershipsExpired(1)
			u.log.Info().Str("user_id", user.ID).Msg("membership expired on read")
		}
		user, err = u.users.FindByID(ctx, nil, userID)
		if err != nil {
			return nil, err
		}
	}
	m := user.Membership
	return &m, nil
}

func (u *membershipUC) CheckStatus(ctx context.Context, userID, orderID string) (*adapter.PaymentStatusResult, error) {
	order, err := u.orders.FindByOrderID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return u.gateway.QueryStatus(ctx, orderID)
}

func (u *membershipUC) FinishExpired(ctx context.Context) (int, error) {
	return u.users.ExpireMemberships(ctx, nil, time.Now())
}

func (u *membershipUC) History(ctx context.Context, userID string) ([]*model.PaymentRecord, error) {
	return u.records.ListByUser(ctx, nil, userID)
}
