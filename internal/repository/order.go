package repository

import (
	"context"

	"courier/internal/domain"
)

// OrderRepository defines the persistence operations for orders and their locations.
//
// Every state-changing method is a conditional update: it applies only when the
// stored row still matches the guard and reports whether a row changed.
type OrderRepository interface {
	// Create persists a new order and fills in its ID and timestamps.
	Create(ctx context.Context, order *domain.Order) error

	// AddLocation persists one stop of an order.
	AddLocation(ctx context.Context, location *domain.OrderLocation) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// GetForCustomer retrieves an order owned by customerID.
	// Returns ErrNotFound if it does not exist or belongs to someone else.
	GetForCustomer(ctx context.Context, id, customerID int64) (*domain.Order, error)

	// ListByCustomer returns a customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)

	// ListAvailable returns paid, unassigned orders in creation order.
	ListAvailable(ctx context.Context, limit int) ([]*domain.Order, error)

	// ListLocations returns the stops of the given orders keyed by order ID.
	ListLocations(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLocation, error)

	// UpdateStatus moves an order from one status to another.
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error)

	// AssignDriver sets the driver and moves accepted → in_transit, only while
	// no driver is assigned.
	AssignDriver(ctx context.Context, id, driverID int64) (bool, error)

	// AdvanceForDriver moves an order assigned to driverID from one status to another.
	AdvanceForDriver(ctx context.Context, id, driverID int64, from, to domain.OrderStatus) (bool, error)

	// Cancel moves a customer's order to cancelled from any of the given
	// statuses and clears the driver.
	Cancel(ctx context.Context, id, customerID int64, from []domain.OrderStatus) (bool, error)
}
