package repository

import (
	"context"
	"time"

	"courier/internal/domain"
)

// UserRepository defines the persistence operations for identities.
type UserRepository interface {
	// Create persists a new user and fills in its ID and timestamps.
	// Returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// UpdateStatus sets the user's presence status.
	UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error

	// IssueOTP stores a new OTP only if none is outstanding at now.
	// Returns false when an unexpired OTP is already stored.
	IssueOTP(ctx context.Context, id int64, otp string, expiresAt, now time.Time) (bool, error)

	// ClearOTP clears the OTP state only if the stored value equals otp.
	// Returns false when the stored value differs or is already cleared.
	ClearOTP(ctx context.Context, id int64, otp string) (bool, error)

	// ClearExpiredOTPs clears every OTP that expired at or before now.
	ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}
