package repository

import "context"

// Repositories groups the repositories bound to one unit of work.
type Repositories struct {
	Users     UserRepository
	Customers CustomerProfileRepository
	Drivers   DriverProfileRepository
	Orders    OrderRepository
	Payments  PaymentRepository
	Tracking  TrackingRepository
	Proofs    ProofRepository
	Earnings  EarningRepository
}

// TxManager runs fn with repositories scoped to a single transaction.
// The transaction commits if fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
