package repository

import (
	"context"

	"courier/internal/domain"
)

// CustomerProfileRepository defines the persistence operations for customer profiles.
type CustomerProfileRepository interface {
	Create(ctx context.Context, profile *domain.CustomerProfile) error
	GetByUserID(ctx context.Context, userID int64) (*domain.CustomerProfile, error)
}

// DriverProfileRepository defines the persistence operations for driver profiles.
type DriverProfileRepository interface {
	// Create persists a new driver profile.
	Create(ctx context.Context, profile *domain.DriverProfile) error

	// GetByUserID retrieves the profile of a driver.
	GetByUserID(ctx context.Context, userID int64) (*domain.DriverProfile, error)

	// SetAvailability toggles whether the driver is online.
	SetAvailability(ctx context.Context, userID int64, available bool) error

	// SetDocumentStatus records the verification outcome. A non-verified
	// status also takes the driver offline.
	SetDocumentStatus(ctx context.Context, userID int64, status domain.DocumentStatus) error
}
