package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"courier/internal/repository"
)

// TxManager runs units of work inside a database transaction.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx begins a transaction, hands fn repositories bound to it, and
// commits when fn succeeds.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, NewRepositoriesWithTx(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NewRepositories returns repositories that run directly on db.
func NewRepositories(db *sql.DB) repository.Repositories {
	return newRepositories(db)
}

// NewRepositoriesWithTx returns repositories bound to tx.
func NewRepositoriesWithTx(tx *sql.Tx) repository.Repositories {
	return newRepositories(tx)
}

func newRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Users:     &UserRepository{q: q},
		Customers: &CustomerProfileRepository{q: q},
		Drivers:   &DriverProfileRepository{q: q},
		Orders:    &OrderRepository{q: q},
		Payments:  &PaymentRepository{q: q},
		Tracking:  &TrackingRepository{q: q},
		Proofs:    &ProofRepository{q: q},
		Earnings:  &EarningRepository{q: q},
	}
}

var _ repository.TxManager = (*TxManager)(nil)
