package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrInvalidCredentials is returned when email or password do not match,
	// or when the account cannot use the requested login surface.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when the caller's identity no longer resolves.
	ErrUnauthenticated = errors.New("unauthorized")

	// ErrResetTokenRequired is returned when a password reset is attempted
	// without a reset-purpose token.
	ErrResetTokenRequired = errors.New("password reset requires a verified otp")

	// ErrForbidden is returned when the caller's stored role does not allow the action.
	ErrForbidden = errors.New("forbidden")

	// ErrDriverNotVerified is returned when an unverified driver tries to go online.
	ErrDriverNotVerified = errors.New("driver documents are not verified")

	// ErrDriverNotEligible is returned when a driver is unverified or offline.
	ErrDriverNotEligible = errors.New("driver is not verified or currently offline")

	// ErrUserNotFound is returned when no identity matches.
	ErrUserNotFound = errors.New("email not found")

	// ErrProfileNotFound is returned when a role profile is missing.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrOrderNotFound is returned when an order is absent or not the caller's.
	ErrOrderNotFound = errors.New("order not found")

	// ErrJobNotFound is returned when an order is not open for drivers.
	ErrJobNotFound = errors.New("job not found or already assigned")

	// ErrOrderAlreadyAssigned is returned when another driver won the order.
	ErrOrderAlreadyAssigned = errors.New("order already assigned to another driver")

	// ErrOrderNotPending is returned when payment is attempted on a non-pending order.
	ErrOrderNotPending = errors.New("order is not awaiting payment")

	// ErrPaymentAlreadyCompleted is returned when an order is paid twice.
	ErrPaymentAlreadyCompleted = errors.New("payment already completed")

	// ErrPaymentInProgress is returned while another capture or cancellation
	// of the order runs.
	ErrPaymentInProgress = errors.New("payment already in progress")

	// ErrPaymentDeclined is returned when the gateway refuses the charge.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrInvalidTransition is returned when the order is not in the state the
	// requested step needs.
	ErrInvalidTransition = errors.New("order is not in a valid state for this action")

	// ErrOrderNotCancellable is returned when the order already finished.
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")

	// ErrOTPInvalid is returned when the supplied OTP does not match.
	ErrOTPInvalid = errors.New("invalid otp")

	// ErrOTPExpired is returned when the stored OTP has expired.
	ErrOTPExpired = errors.New("otp expired")

	// ErrMailDelivery is returned when the mail collaborator fails.
	ErrMailDelivery = errors.New("failed to send email")

	// ErrPaymentGateway is returned when the payment collaborator fails.
	ErrPaymentGateway = errors.New("payment gateway failure")
)

// ValidationError reports malformed input field by field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(kv ...string) *ValidationError {
	v := &ValidationError{Fields: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Fields[kv[i]] = kv[i+1]
	}
	return v
}

// Add records a problem with field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CooldownError is returned when an OTP is still valid.
type CooldownError struct {
	Remaining time.Duration
}

// RemainingSeconds rounds the wait up to whole seconds.
func (e *CooldownError) RemainingSeconds() int {
	secs := int((e.Remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("An OTP has already been sent. Please use it or wait %d seconds until it expires.", e.RemainingSeconds())
}
