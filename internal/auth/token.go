package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"courier/internal/domain"
)

// ErrUnauthorized is returned for any token that cannot be trusted.
var ErrUnauthorized = errors.New("unauthorized")

// Purpose separates session tokens from password-reset tokens.
type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeReset   Purpose = "reset"
)

// Claims is the payload carried by every issued token.
type Claims struct {
	UserEmail string      `json:"userEmail"`
	UserID    int64       `json:"userID"`
	Role      domain.Role `json:"role"`
	Purpose   Purpose     `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenConfig holds the signing parameters.
type TokenConfig struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
	ResetTTL   time.Duration
}

// TokenService issues and verifies HS256-signed tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	sessionTTL time.Duration
	resetTTL   time.Duration
	clock      Clock
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg TokenConfig, clock Clock) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		sessionTTL: cfg.SessionTTL,
		resetTTL:   cfg.ResetTTL,
		clock:      clock,
	}
}

// SessionTTL is how long a session token stays valid.
func (s *TokenService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// IssueSessionToken signs a session token for the identity.
func (s *TokenService) IssueSessionToken(email string, userID int64, role domain.Role) (string, error) {
	return s.issue(email, userID, role, PurposeSession, s.sessionTTL)
}

// IssueResetToken signs a short-lived token that only authorizes a password reset.
func (s *TokenService) IssueResetToken(email string, userID int64, role domain.Role) (string, error) {
	return s.issue(email, userID, role, PurposeReset, s.resetTTL)
}

func (s *TokenService) issue(email string, userID int64, role domain.Role, purpose Purpose, ttl time.Duration) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		UserEmail: email,
		UserID:    userID,
		Role:      role,
		Purpose:   purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, algorithm, issuer and expiry. Every failure
// is reported as ErrUnauthorized.
func (s *TokenService) VerifyToken(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.UserID == 0 || claims.UserEmail == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
