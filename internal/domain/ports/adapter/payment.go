package adapter

import "context"

// CreatePaymentResult carries what the initiation flow needs from the
// provider's create response.
type CreatePaymentResult struct {
	PayURL       string // redirect target for the browser
	ResultCode   int
	Message      string
	ResponseTime int64
}

// PaymentStatusResult is the provider's answer to a transaction query.
type PaymentStatusResult struct {
	OrderID    string
	TransID    int64
	ResultCode int
	Message    string
	Amount     int64
}

// PaymentGateway is the hex port for the mobile-payment provider.
type PaymentGateway interface {
	Name() string

	// CreatePayment signs and submits a payment request; orderID/requestID/
	// extraData are caller-generated so the correlation record can be
	// persisted before the provider ever sees it.
	CreatePayment(ctx context.Context, orderID, requestID string, amount int64, orderInfo, extraData string) (*CreatePaymentResult, error)

	// QueryStatus asks the provider for the current state of an order. Used
	// by the status endpoint and the order reconciler, never by the webhook.
	QueryStatus(ctx context.Context, orderID string) (*PaymentStatusResult, error)
}

// CardCheckoutSession is the provider-side session for the secondary card
// payment path.
type CardCheckoutSession struct {
	SessionID string
	PayURL    string
}

// CardGateway is the hex port for the card-payment provider (Stripe).
type CardGateway interface {
	Name() string
	CreateCheckout(ctx context.Context, userID string, amount int64, currency, description string) (*CardCheckoutSession, error)
}
