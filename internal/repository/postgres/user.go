package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"courier/internal/domain"
	"courier/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, name, email, phone, password, role, status, otp, otp_expires_at, otp_last_sent_at, created_at, updated_at`

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, phone, password, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if user.Status == "" {
		user.Status = domain.UserStatusAvailable
	}

	err := r.q.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.q.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.q.QueryRowContext(ctx, query, email))
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var otp sql.NullString
	var otpExpiresAt, otpLastSentAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&otp,
		&otpExpiresAt,
		&otpLastSentAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	user.OTP = otp.String
	user.OTPExpiresAt = timeFromNull(otpExpiresAt)
	user.OTPLastSentAt = timeFromNull(otpLastSentAt)

	return &user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password = $1, updated_at = now() WHERE id = $2`
	return r.execOne(ctx, query, passwordHash, id)
}

// UpdateStatus sets the user's presence status.
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	query := `UPDATE users SET status = $1, updated_at = now() WHERE id = $2`
	return r.execOne(ctx, query, status, id)
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
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

// IssueOTP stores a new OTP unless an unexpired one is outstanding.
// The guard and the write happen in one statement, so two concurrent
// issuers cannot both succeed.
func (r *UserRepository) IssueOTP(ctx context.Context, id int64, otp string, expiresAt, now time.Time) (bool, error) {
	query := `
		UPDATE users
		SET otp = $1, otp_expires_at = $2, otp_last_sent_at = $3, updated_at = now()
		WHERE id = $4 AND (otp IS NULL OR otp_expires_at IS NULL OR otp_expires_at <= $3)
	`

	result, err := r.q.ExecContext(ctx, query, otp, expiresAt, now, id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// ClearOTP clears the OTP state if it still holds otp.
func (r *UserRepository) ClearOTP(ctx context.Context, id int64, otp string) (bool, error) {
	query := `
		UPDATE users
		SET otp = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND otp = $2
	`

	result, err := r.q.ExecContext(ctx, query, id, otp)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// ClearExpiredOTPs clears every OTP that expired at or before now.
func (r *UserRepository) ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users
		SET otp = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE otp IS NOT NULL AND otp_expires_at <= $1
	`

	result, err := r.q.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Ensure UserRepository implements repository.UserRepository.
var _ repository.UserRepository = (*UserRepository)(nil)
