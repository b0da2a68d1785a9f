package postgres

import (
	"context"
	"database/sql"
	"errors"

	"courier/internal/domain"
	"courier/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (order_id, transaction_id, amount_cents, method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if payment.Method == "" {
		payment.Method = domain.DefaultPaymentMethod
	}

	err := r.q.QueryRowContext(ctx, query,
		payment.OrderID,
		nullString(payment.TransactionID),
		int64(payment.Amount),
		payment.Method,
		payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByOrderID retrieves the payment of an order.
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	query := `
		SELECT id, order_id, transaction_id, amount_cents, method, status, created_at, updated_at
		FROM payments WHERE order_id = $1
	`

	var payment domain.Payment
	var txnID sql.NullString
	var amount int64

	err := r.q.QueryRowContext(ctx, query, orderID).Scan(
		&payment.ID,
		&payment.OrderID,
		&txnID,
		&amount,
		&payment.Method,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	payment.TransactionID = txnID.String
	payment.Amount = domain.Cents(amount)

	return &payment, nil
}

// MarkCompleted records a captured charge on a pending or failed payment.
func (r *PaymentRepository) MarkCompleted(ctx context.Context, orderID int64, transactionID string) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1, transaction_id = $2, updated_at = now()
		WHERE order_id = $3 AND status IN ($4, $5)
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.PaymentStatusCompleted,
		transactionID,
		orderID,
		domain.PaymentStatusPending,
		domain.PaymentStatusFailed,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, repository.ErrDuplicate
		}
		return false, err
	}
	return affected(result)
}

// UpdateStatus moves the payment from one status to another.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, orderID int64, from, to domain.PaymentStatus) (bool, error) {
	query := `UPDATE payments SET status = $1, updated_at = now() WHERE order_id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, to, orderID, from)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// Ensure PaymentRepository implements repository.PaymentRepository.
var _ repository.PaymentRepository = (*PaymentRepository)(nil)
