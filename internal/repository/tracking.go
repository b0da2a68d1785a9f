package repository

import (
	"context"

	"courier/internal/domain"
)

// TrackingRepository is the append-only audit log of order events.
type TrackingRepository interface {
	// Append adds a tracking row and fills in its ID and timestamp.
	Append(ctx context.Context, tracking *domain.OrderTracking) error

	// ListByOrder returns the rows of an order in the order they were appended.
	ListByOrder(ctx context.Context, orderID int64) ([]*domain.OrderTracking, error)
}

// ProofRepository stores pickup and delivery evidence.
type ProofRepository interface {
	Create(ctx context.Context, proof *domain.ProofOfDelivery) error
	ListByOrder(ctx context.Context, orderID int64) ([]*domain.ProofOfDelivery, error)
}
