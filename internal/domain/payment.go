package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// DefaultPaymentMethod is recorded when the client does not name one.
const DefaultPaymentMethod = "stripe"

// Payment is the single payment attached to an order.
type Payment struct {
	ID            int64
	OrderID       int64
	TransactionID string
	Amount        Cents
	Method        string
	Status        PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
