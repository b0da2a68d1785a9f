package postgres

import (
	"context"
	"database/sql"
	"errors"

	"courier/internal/domain"
	"courier/internal/repository"
)

// CustomerProfileRepository is a PostgreSQL implementation of repository.CustomerProfileRepository.
type CustomerProfileRepository struct {
	q Querier
}

// NewCustomerProfileRepository creates a new PostgreSQL customer profile repository.
func NewCustomerProfileRepository(db *sql.DB) *CustomerProfileRepository {
	return &CustomerProfileRepository{q: db}
}

// Create persists a new customer profile.
func (r *CustomerProfileRepository) Create(ctx context.Context, profile *domain.CustomerProfile) error {
	query := `
		INSERT INTO customer_profiles (user_id, default_address)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.q.QueryRowContext(ctx, query, profile.UserID, profile.DefaultAddress).
		Scan(&profile.ID, &profile.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByUserID retrieves the profile of a customer.
func (r *CustomerProfileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.CustomerProfile, error) {
	query := `SELECT id, user_id, default_address, created_at FROM customer_profiles WHERE user_id = $1`

	var p domain.CustomerProfile
	err := r.q.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.UserID, &p.DefaultAddress, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// DriverProfileRepository is a PostgreSQL implementation of repository.DriverProfileRepository.
type DriverProfileRepository struct {
	q Querier
}

// NewDriverProfileRepository creates a new PostgreSQL driver profile repository.
func NewDriverProfileRepository(db *sql.DB) *DriverProfileRepository {
	return &DriverProfileRepository{q: db}
}

// Create persists a new driver profile.
func (r *DriverProfileRepository) Create(ctx context.Context, profile *domain.DriverProfile) error {
	query := `
		INSERT INTO driver_profiles (user_id, license_number, insurance_details, vehicle_type,
			license_doc_url, insurance_doc_url, document_status, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	if profile.DocumentStatus == "" {
		profile.DocumentStatus = domain.DocumentStatusPending
	}

	err := r.q.QueryRowContext(ctx, query,
		profile.UserID,
		profile.LicenseNumber,
		profile.InsuranceDetails,
		profile.VehicleType,
		profile.LicenseDocURL,
		profile.InsuranceDocURL,
		profile.DocumentStatus,
		profile.IsAvailable,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByUserID retrieves the profile of a driver.
func (r *DriverProfileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.DriverProfile, error) {
	query := `
		SELECT id, user_id, license_number, insurance_details, vehicle_type,
			license_doc_url, insurance_doc_url, document_status, is_available, created_at, updated_at
		FROM driver_profiles WHERE user_id = $1
	`

	var p domain.DriverProfile
	err := r.q.QueryRowContext(ctx, query, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.LicenseNumber,
		&p.InsuranceDetails,
		&p.VehicleType,
		&p.LicenseDocURL,
		&p.InsuranceDocURL,
		&p.DocumentStatus,
		&p.IsAvailable,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SetAvailability toggles whether the driver is online.
func (r *DriverProfileRepository) SetAvailability(ctx context.Context, userID int64, available bool) error {
	query := `UPDATE driver_profiles SET is_available = $1, updated_at = now() WHERE user_id = $2`
	return r.execOne(ctx, query, available, userID)
}

// SetDocumentStatus records the verification outcome.
func (r *DriverProfileRepository) SetDocumentStatus(ctx context.Context, userID int64, status domain.DocumentStatus) error {
	query := `
		UPDATE driver_profiles
		SET document_status = $1,
			is_available = CASE WHEN $1 = 'verified' THEN is_available ELSE false END,
			updated_at = now()
		WHERE user_id = $2
	`
	return r.execOne(ctx, query, status, userID)
}

func (r *DriverProfileRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

var (
	_ repository.CustomerProfileRepository = (*CustomerProfileRepository)(nil)
	_ repository.DriverProfileRepository   = (*DriverProfileRepository)(nil)
)
