package postgres

import (
	"context"
	"database/sql"

	"courier/internal/domain"
	"courier/internal/repository"
)

// EarningRepository is a PostgreSQL implementation of repository.EarningRepository.
type EarningRepository struct {
	q Querier
}

// NewEarningRepository creates a new PostgreSQL earning repository.
func NewEarningRepository(db *sql.DB) *EarningRepository {
	return &EarningRepository{q: db}
}

// Create persists an earning. The unique order_id column keeps it one per order.
func (r *EarningRepository) Create(ctx context.Context, e *domain.DriverEarning) error {
	query := `
		INSERT INTO driver_earnings (driver_id, order_id, amount_cents, payment_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	var paymentDate sql.NullTime
	if e.PaymentDate != nil {
		paymentDate = sql.NullTime{Time: *e.PaymentDate, Valid: true}
	}

	err := r.q.QueryRowContext(ctx, query, e.DriverID, e.OrderID, int64(e.Amount), paymentDate, e.Status).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// ListByDriver returns a driver's earnings, newest first.
func (r *EarningRepository) ListByDriver(ctx context.Context, driverID int64) ([]*domain.DriverEarning, error) {
	query := `
		SELECT id, driver_id, order_id, amount_cents, payment_date, status, created_at
		FROM driver_earnings
		WHERE driver_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earnings []*domain.DriverEarning
	for rows.Next() {
		var e domain.DriverEarning
		var amount int64
		var paymentDate sql.NullTime

		if err := rows.Scan(&e.ID, &e.DriverID, &e.OrderID, &amount, &paymentDate, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}

		e.Amount = domain.Cents(amount)
		if paymentDate.Valid {
			t := paymentDate.Time
			e.PaymentDate = &t
		}
		earnings = append(earnings, &e)
	}
	return earnings, rows.Err()
}

// SumPaid totals the driver's paid-out earnings.
func (r *EarningRepository) SumPaid(ctx context.Context, driverID int64) (domain.Cents, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM driver_earnings WHERE driver_id = $1 AND status = $2`

	var total int64
	if err := r.q.QueryRowContext(ctx, query, driverID, domain.EarningStatusPaid).Scan(&total); err != nil {
		return 0, err
	}
	return domain.Cents(total), nil
}

// Ensure EarningRepository implements repository.EarningRepository.
var _ repository.EarningRepository = (*EarningRepository)(nil)
