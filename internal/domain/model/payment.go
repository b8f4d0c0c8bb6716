package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // created locally, user redirected to gateway
	OrderStatusCompleted OrderStatus = "completed" // provider confirmed success
	OrderStatusFailed    OrderStatus = "failed"    // provider reported failure or abandonment
)

// PendingOrder is the durable record of a payment attempt, created at
// initiation time and claimed exactly once by the notification receiver.
// It is the source of truth for which user a callback credits; the
// extraData token echoed by the provider is verified against it, never
// trusted on its own.
type PendingOrder struct {
	OrderID   string // externally visible correlation id, unique
	RequestID string // fresh per create call
	Provider  string // "momo" | "stripe"
	UserID    string // initiating user
	Amount    int64  // VND
	OrderInfo string // description shown on the payment page
	ExtraData string // base64 JSON {userId}, round-tripped by the provider
	Status    OrderStatus
	TransID   *string // provider transaction id, set on completion
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *PendingOrder) Final() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusFailed
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded" // schema-reserved, no writer yet
)

// PaymentRecord is the append-only audit trail, one row per confirmed
// attempt. Never mutated after creation except a status transition to
// refunded.
type PaymentRecord struct {
	ID            string
	UserID        string
	OrderID       string
	TransactionID string // provider-assigned, unique
	Amount        int64
	PaymentMethod string // "momo" | "stripe"
	Status        PaymentStatus
	Details       map[string]interface{} // provider payload kept for audit (JSONB)
	CreatedAt     time.Time
}
