package repository

import (
	"context"

	"courier/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByOrderID retrieves the payment of an order.
	GetByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error)

	// MarkCompleted records a captured charge. Returns false if the payment
	// was already completed or refunded.
	MarkCompleted(ctx context.Context, orderID int64, transactionID string) (bool, error)

	// UpdateStatus moves the payment from one status to another.
	UpdateStatus(ctx context.Context, orderID int64, from, to domain.PaymentStatus) (bool, error)
}
