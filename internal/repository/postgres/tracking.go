package postgres

import (
	"context"
	"database/sql"

	"courier/internal/domain"
	"courier/internal/repository"
)

// TrackingRepository is a PostgreSQL implementation of repository.TrackingRepository.
type TrackingRepository struct {
	q Querier
}

// NewTrackingRepository creates a new PostgreSQL tracking repository.
func NewTrackingRepository(db *sql.DB) *TrackingRepository {
	return &TrackingRepository{q: db}
}

// Append adds a tracking row. Rows are never updated or deleted.
func (r *TrackingRepository) Append(ctx context.Context, t *domain.OrderTracking) error {
	query := `
		INSERT INTO order_trackings (order_id, status_code, status_message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.q.QueryRowContext(ctx, query, t.OrderID, t.StatusCode, t.StatusMessage).
		Scan(&t.ID, &t.CreatedAt)
}

// ListByOrder returns the rows of an order in append order.
func (r *TrackingRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.OrderTracking, error) {
	query := `
		SELECT id, order_id, status_code, status_message, created_at
		FROM order_trackings
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trackings []*domain.OrderTracking
	for rows.Next() {
		var t domain.OrderTracking
		if err := rows.Scan(&t.ID, &t.OrderID, &t.StatusCode, &t.StatusMessage, &t.CreatedAt); err != nil {
			return nil, err
		}
		trackings = append(trackings, &t)
	}
	return trackings, rows.Err()
}

// ProofRepository is a PostgreSQL implementation of repository.ProofRepository.
type ProofRepository struct {
	q Querier
}

// NewProofRepository creates a new PostgreSQL proof repository.
func NewProofRepository(db *sql.DB) *ProofRepository {
	return &ProofRepository{q: db}
}

// Create persists a proof record.
func (r *ProofRepository) Create(ctx context.Context, p *domain.ProofOfDelivery) error {
	query := `
		INSERT INTO proof_of_deliveries (order_id, type, photo_url, signature_url, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.q.QueryRowContext(ctx, query, p.OrderID, p.Type, p.PhotoURL, p.SignatureURL, p.Notes).
		Scan(&p.ID, &p.CreatedAt)
}

// ListByOrder returns the proofs of an order, pickup first.
func (r *ProofRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.ProofOfDelivery, error) {
	query := `
		SELECT id, order_id, type, photo_url, signature_url, notes, created_at
		FROM proof_of_deliveries
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proofs []*domain.ProofOfDelivery
	for rows.Next() {
		var p domain.ProofOfDelivery
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Type, &p.PhotoURL, &p.SignatureURL, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		proofs = append(proofs, &p)
	}
	return proofs, rows.Err()
}

var (
	_ repository.TrackingRepository = (*TrackingRepository)(nil)
	_ repository.ProofRepository    = (*ProofRepository)(nil)
)
