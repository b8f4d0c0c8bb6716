// File: internal/infra/stripecheckout/gateway.go
package stripecheckout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/QuagHug/pet-service/internal/config"
	"github.com/QuagHug/pet-service/internal/domain"
	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
)

var _ adapter.CardGateway = (*Gateway)(nil)

// Gateway is the secondary, card-based payment path. It creates hosted
// Checkout sessions and verifies the signed webhook events Stripe sends
// back.
type Gateway struct {
	cfg config.StripeConfig
	log *zerolog.Logger
}

func NewGateway(cfg config.StripeConfig, logger *zerolog.Logger) *Gateway {
	stripe.Key = cfg.SecretKey
	gwLog := logger.With().Str("component", "StripeGateway").Logger()
	return &Gateway{cfg: cfg, log: &gwLog}
}

func (g *Gateway) Name() string { return "stripe" }

func (g *Gateway) CreateCheckout(ctx context.Context, userID string, amount int64, currency, description string) (*adapter.CardCheckoutSession, error) {
	if g.cfg.Currency != "" {
		currency = g.cfg.Currency
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		ClientReferenceID: stripe.String(userID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	g.log.Info().Str("session_id", s.ID).Str("user_id", userID).Msg("checkout session created")
	return &adapter.CardCheckoutSession{SessionID: s.ID, PayURL: s.URL}, nil
}

// CompletedSession is the subset of a checkout.session.completed event the
// entitlement flow needs.
type CompletedSession struct {
	SessionID       string
	UserID          string // client_reference_id
	PaymentIntentID string
	AmountTotal     int64
	Paid            bool
}

// VerifyEvent checks the Stripe-Signature header against the webhook
// secret and extracts the session from a checkout.session.completed event.
// Events of any other type return (nil, nil).
func (g *Gateway) VerifyEvent(payload []byte, sigHeader string) (*CompletedSession, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.cfg.WebhookSecret)
	if err != nil {
		return nil, domain.ErrBadSignature
	}
	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	var intentID string
	if s.PaymentIntent != nil {
		intentID = s.PaymentIntent.ID
	}
	return &CompletedSession{
		SessionID:       s.ID,
		UserID:          s.ClientReferenceID,
		PaymentIntentID: intentID,
		AmountTotal:     s.AmountTotal,
		Paid:            s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}
