package repository

import (
	"context"

	"courier/internal/domain"
)

// EarningRepository defines the persistence operations for driver earnings.
type EarningRepository interface {
	// Create persists an earning. Returns ErrDuplicate if the order already has one.
	Create(ctx context.Context, earning *domain.DriverEarning) error

	// ListByDriver returns a driver's earnings, newest first.
	ListByDriver(ctx context.Context, driverID int64) ([]*domain.DriverEarning, error)

	// SumPaid totals the driver's paid-out earnings.
	SumPaid(ctx context.Context, driverID int64) (domain.Cents, error)
}
