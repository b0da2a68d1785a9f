package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"courier/internal/auth"
	"courier/internal/domain"
	"courier/internal/repository"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs session and reset tokens.
type TokenIssuer interface {
	IssueSessionToken(email string, userID int64, role domain.Role) (string, error)
	IssueResetToken(email string, userID int64, role domain.Role) (string, error)
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// AuthService owns identities: registration, login, password reset and the
// role check used by the access gate.
type AuthService struct {
	users  repository.UserRepository
	tx     repository.TxManager
	hasher PasswordHasher
	tokens TokenIssuer
	logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repository.UserRepository,
	tx repository.TxManager,
	hasher PasswordHasher,
	tokens TokenIssuer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tx:     tx,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With("component", "auth_service"),
	}
}

// RegisterRequest contains the parameters for creating an identity.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     domain.Role

	// Driver-only details.
	LicenseNumber    string
	VehicleType      string
	InsuranceDetails string
}

// Register creates a user with its role profile in one transaction.
// Only customer and driver accounts can be self-registered.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	verr := &ValidationError{}
	if req.Name == "" {
		verr.Add("name", "The name field is required.")
	}
	if req.Email == "" {
		verr.Add("email", "The email field is required.")
	}
	if len(req.Password) < MinPasswordLength {
		verr.Add("password", fmt.Sprintf("The password must be at least %d characters.", MinPasswordLength))
	}
	if req.Role != domain.RoleCustomer && req.Role != domain.RoleDriver {
		verr.Add("role", "The selected role is invalid.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Role:         req.Role,
		Status:       domain.UserStatusAvailable,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}

		if user.Role == domain.RoleDriver {
			return repos.Drivers.Create(ctx, &domain.DriverProfile{
				UserID:           user.ID,
				LicenseNumber:    req.LicenseNumber,
				VehicleType:      req.VehicleType,
				InsuranceDetails: req.InsuranceDetails,
				DocumentStatus:   domain.DocumentStatusPending,
			})
		}
		return repos.Customers.Create(ctx, &domain.CustomerProfile{UserID: user.ID})
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewValidationError("email", "The email has already been taken.")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// LoginResult is a successful login.
type LoginResult struct {
	User  *domain.User
	Token string
}

// Login checks credentials and issues a session token. When roles is not
// empty the account must hold one of them; a mismatch looks exactly like a
// bad password.
func (s *AuthService) Login(ctx context.Context, email, password string, roles ...domain.Role) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if len(roles) > 0 && !user.HasRole(roles...) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSessionToken(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{User: user, Token: token}, nil
}

// ResetPassword sets a new password. purpose must come from a token minted
// by a successful OTP verification.
func (s *AuthService) ResetPassword(ctx context.Context, userID int64, purpose auth.Purpose, password string) error {
	if purpose != auth.PurposeReset {
		return ErrResetTokenRequired
	}
	if len(password) < MinPasswordLength {
		return NewValidationError("password", fmt.Sprintf("The password must be at least %d characters.", MinPasswordLength))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		return err
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", userID)
	return nil
}

// Authorize re-reads the identity and checks its stored role. With no roles
// given, any existing identity passes.
func (s *AuthService) Authorize(ctx context.Context, userID int64, roles ...domain.Role) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if len(roles) > 0 && !user.HasRole(roles...) {
		return nil, ErrForbidden
	}
	return user, nil
}

// GetStatus returns the user's presence status.
func (s *AuthService) GetStatus(ctx context.Context, userID int64) (domain.UserStatus, error) {
	user, err := s.Authorize(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

// UpdateStatus sets the user's presence status.
func (s *AuthService) UpdateStatus(ctx context.Context, userID int64, status domain.UserStatus) error {
	if status != domain.UserStatusAvailable && status != domain.UserStatusBusy {
		return NewValidationError("status", "The selected status is invalid.")
	}

	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
