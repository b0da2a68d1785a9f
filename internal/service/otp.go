package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"courier/internal/auth"
	"courier/internal/repository"
)

// CodeGenerator produces one-time passcodes.
type CodeGenerator interface {
	Generate() (string, error)
}

// OTPLocker serializes OTP issuance per identity across instances. A
// successful acquire returns the release for that acquisition only.
type OTPLocker interface {
	AcquireOTPLock(ctx context.Context, userID int64, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// OTPConfig holds OTP timing.
type OTPConfig struct {
	TTL         time.Duration
	MailTimeout time.Duration
}

// OTPService issues and verifies one-time passcodes.
type OTPService struct {
	users  repository.UserRepository
	codes  CodeGenerator
	mailer Mailer
	tokens TokenIssuer
	locks  OTPLocker
	clock  auth.Clock
	cfg    OTPConfig
	logger *slog.Logger
}

// NewOTPService creates a new OTPService. locks may be nil, in which case
// the conditional database write alone enforces one outstanding OTP.
func NewOTPService(
	users repository.UserRepository,
	codes CodeGenerator,
	mailer Mailer,
	tokens TokenIssuer,
	locks OTPLocker,
	clock auth.Clock,
	cfg OTPConfig,
	logger *slog.Logger,
) *OTPService {
	if cfg.TTL == 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.MailTimeout == 0 {
		cfg.MailTimeout = 10 * time.Second
	}
	return &OTPService{
		users:  users,
		codes:  codes,
		mailer: mailer,
		tokens: tokens,
		locks:  locks,
		clock:  clock,
		cfg:    cfg,
		logger: logger.With("component", "otp_service"),
	}
}

// SendOTP issues a passcode for email and mails it. It refuses with a
// CooldownError while a previous passcode is still valid.
func (s *OTPService) SendOTP(ctx context.Context, email string) (time.Time, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return time.Time{}, ErrUserNotFound
		}
		return time.Time{}, err
	}

	now := s.clock.Now()
	if user.OTPOutstanding(now) {
		return time.Time{}, &CooldownError{Remaining: user.OTPExpiresAt.Sub(now)}
	}

	if s.locks != nil {
		release, acquired, err := s.locks.AcquireOTPLock(ctx, user.ID, s.cfg.MailTimeout)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "otp lock unavailable, relying on database guard", "user_id", user.ID, "error", err)
		case !acquired:
			return time.Time{}, s.cooldownFor(ctx, user.ID, now)
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					s.logger.WarnContext(ctx, "release otp lock", "user_id", user.ID, "error", err)
				}
			}()
		}
	}

	code, err := s.codes.Generate()
	if err != nil {
		return time.Time{}, err
	}

	expiresAt := now.Add(s.cfg.TTL)
	issued, err := s.users.IssueOTP(ctx, user.ID, code, expiresAt, now)
	if err != nil {
		return time.Time{}, err
	}
	if !issued {
		return time.Time{}, s.cooldownFor(ctx, user.ID, now)
	}

	mailCtx, cancel := context.WithTimeout(ctx, s.cfg.MailTimeout)
	defer cancel()

	if err := s.mailer.SendOTP(mailCtx, user.Email, code, expiresAt); err != nil {
		// Free the slot so the user can ask again straight away.
		if _, clearErr := s.users.ClearOTP(context.WithoutCancel(ctx), user.ID, code); clearErr != nil {
			s.logger.ErrorContext(ctx, "clear undelivered otp", "user_id", user.ID, "error", clearErr)
		}
		return time.Time{}, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	s.logger.InfoContext(ctx, "otp issued", "user_id", user.ID, "expires_at", expiresAt)
	return expiresAt, nil
}

// cooldownFor reports how long the passcode that beat us stays valid.
func (s *OTPService) cooldownFor(ctx context.Context, userID int64, now time.Time) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || !user.OTPOutstanding(now) {
		return &CooldownError{Remaining: s.cfg.TTL}
	}
	return &CooldownError{Remaining: user.OTPExpiresAt.Sub(now)}
}

// VerifyOTP checks a passcode. A correct passcode is consumed and exchanged
// for a password-reset token; an expired one is cleared; a wrong one is left
// in place.
func (s *OTPService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.OTP == "" {
		return "", ErrOTPInvalid
	}

	now := s.clock.Now()
	if !now.Before(user.OTPExpiresAt) {
		if _, err := s.users.ClearOTP(ctx, user.ID, user.OTP); err != nil {
			return "", err
		}
		return "", ErrOTPExpired
	}

	supplied := auth.NormalizeOTP(otp)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(user.OTP)) != 1 {
		return "", ErrOTPInvalid
	}

	consumed, err := s.users.ClearOTP(ctx, user.ID, user.OTP)
	if err != nil {
		return "", err
	}
	if !consumed {
		return "", ErrOTPInvalid
	}

	token, err := s.tokens.IssueResetToken(user.Email, user.ID, user.Role)
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "otp verified", "user_id", user.ID)
	return token, nil
}

// SweepExpired clears every expired passcode.
func (s *OTPService) SweepExpired(ctx context.Context) (int64, error) {
	return s.users.ClearExpiredOTPs(ctx, s.clock.Now())
}
