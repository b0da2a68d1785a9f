package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"courier/internal/domain"
	"courier/internal/repository"
)

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

const orderColumns = `id, customer_id, driver_id, delivery_type, parcel_details, total_amount_cents, status, created_at, updated_at`

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (customer_id, delivery_type, parcel_details, total_amount_cents, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	return r.q.QueryRowContext(ctx, query,
		order.CustomerID,
		order.DeliveryType,
		order.ParcelDetails,
		int64(order.TotalAmount),
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

// AddLocation persists one stop of an order.
func (r *OrderRepository) AddLocation(ctx context.Context, loc *domain.OrderLocation) error {
	query := `
		INSERT INTO order_locations (order_id, type, latitude, longitude, address_line, contact_person, contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		loc.OrderID,
		loc.Type,
		loc.Latitude,
		loc.Longitude,
		loc.AddressLine,
		loc.ContactPerson,
		loc.ContactPhone,
	).Scan(&loc.ID, &loc.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.q.QueryRowContext(ctx, query, id))
}

// GetForCustomer retrieves an order owned by customerID.
func (r *OrderRepository) GetForCustomer(ctx context.Context, id, customerID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND customer_id = $2`
	return scanOrder(r.q.QueryRowContext(ctx, query, id, customerID))
}

// ListByCustomer returns a customer's orders, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 100
	`
	return r.list(ctx, query, customerID)
}

// ListAvailable returns paid, unassigned orders in creation order.
func (r *OrderRepository) ListAvailable(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1 AND driver_id IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`
	return r.list(ctx, query, domain.OrderStatusAccepted, limit)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var driverID sql.NullInt64
	var amount int64

	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&driverID,
		&order.DeliveryType,
		&order.ParcelDetails,
		&amount,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if driverID.Valid {
		id := driverID.Int64
		order.DriverID = &id
	}
	order.TotalAmount = domain.Cents(amount)

	return &order, nil
}

// ListLocations returns the stops of the given orders keyed by order ID.
func (r *OrderRepository) ListLocations(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLocation, error) {
	result := make(map[int64][]domain.OrderLocation, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, order_id, type, latitude, longitude, address_line, contact_person, contact_phone, created_at
		FROM order_locations
		WHERE order_id = ANY($1)
		ORDER BY order_id, type DESC
	`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var loc domain.OrderLocation
		if err := rows.Scan(
			&loc.ID,
			&loc.OrderID,
			&loc.Type,
			&loc.Latitude,
			&loc.Longitude,
			&loc.AddressLine,
			&loc.ContactPerson,
			&loc.ContactPhone,
			&loc.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[loc.OrderID] = append(result[loc.OrderID], loc)
	}
	return result, rows.Err()
}

// UpdateStatus moves an order from one status to another.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`
	return r.exec(ctx, query, to, id, from)
}

// AssignDriver sets the driver and moves accepted → in_transit. The NULL and
// status guards run inside the UPDATE, so of several concurrent callers
// exactly one sees a changed row.
func (r *OrderRepository) AssignDriver(ctx context.Context, id, driverID int64) (bool, error) {
	query := `
		UPDATE orders
		SET driver_id = $1, status = $2, updated_at = now()
		WHERE id = $3 AND driver_id IS NULL AND status = $4
	`
	return r.exec(ctx, query, driverID, domain.OrderStatusInTransit, id, domain.OrderStatusAccepted)
}

// AdvanceForDriver moves an order assigned to driverID from one status to another.
func (r *OrderRepository) AdvanceForDriver(ctx context.Context, id, driverID int64, from, to domain.OrderStatus) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2 AND driver_id = $3 AND status = $4
	`
	return r.exec(ctx, query, to, id, driverID, from)
}

// Cancel moves a customer's order to cancelled and clears the driver.
func (r *OrderRepository) Cancel(ctx context.Context, id, customerID int64, from []domain.OrderStatus) (bool, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	query := `
		UPDATE orders
		SET status = $1, driver_id = NULL, updated_at = now()
		WHERE id = $2 AND customer_id = $3 AND status = ANY($4)
	`
	return r.exec(ctx, query, domain.OrderStatusCancelled, id, customerID, pq.Array(statuses))
}

func (r *OrderRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// Ensure OrderRepository implements repository.OrderRepository.
var _ repository.OrderRepository = (*OrderRepository)(nil)
