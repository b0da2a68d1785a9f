package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courier/internal/auth"
	"courier/internal/service"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// ErrorResponse is the failure envelope shared by every endpoint.
type ErrorResponse struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors,omitempty"`
	RetryAfter int               `json:"retry_after,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Internal and collaborator failures are logged and reported generically.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	resp := ErrorResponse{Status: statusFailed, Message: publicMessage(code, err)}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Message = "The given data was invalid."
		resp.Errors = verr.Fields
	}

	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		resp.RetryAfter = cooldown.RemainingSeconds()
		c.Header("Retry-After", strconv.Itoa(resp.RetryAfter))
	}

	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "status", code, "error", err)
	}

	c.AbortWithStatusJSON(code, resp)
}

// respondSuccess sends the success envelope. fields are merged into it.
func respondSuccess(c *gin.Context, code int, message string, fields gin.H) {
	body := gin.H{"status": statusSuccess}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(code, body)
}

// mapErrorToHTTPStatus maps service errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var (
		verr     *service.ValidationError
		cooldown *service.CooldownError
	)

	switch {
	// Input validation
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity

	// Cooldown
	case errors.As(err, &cooldown):
		return http.StatusTooManyRequests

	// Authentication
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrResetTokenRequired),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrDriverNotVerified):
		return http.StatusForbidden

	// Not found, not yours, or not eligible
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrDriverNotEligible):
		return http.StatusNotFound

	// Business-rule conflicts
	case errors.Is(err, service.ErrOrderAlreadyAssigned),
		errors.Is(err, service.ErrOrderNotPending),
		errors.Is(err, service.ErrPaymentAlreadyCompleted),
		errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, service.ErrPaymentDeclined),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrOrderNotCancellable),
		errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrOTPExpired):
		return http.StatusBadRequest

	// Collaborators
	case errors.Is(err, service.ErrMailDelivery),
		errors.Is(err, service.ErrPaymentGateway):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

var publicMessages = map[error]string{
	service.ErrInvalidCredentials:      "Invalid credentials",
	service.ErrUnauthenticated:         "Unauthorized",
	service.ErrResetTokenRequired:      "Please verify your OTP before resetting the password.",
	service.ErrForbidden:               "Forbidden",
	service.ErrDriverNotVerified:       "Your documents must be verified before you can go online.",
	service.ErrDriverNotEligible:       "Driver is not verified or currently offline.",
	service.ErrUserNotFound:            "Email not found!",
	service.ErrProfileNotFound:         "Profile not found.",
	service.ErrOrderNotFound:           "Order not found.",
	service.ErrJobNotFound:             "Job not found or already assigned.",
	service.ErrOrderAlreadyAssigned:    "Order already assigned to another driver.",
	service.ErrOrderNotPending:         "Order is not awaiting payment.",
	service.ErrPaymentAlreadyCompleted: "Payment already completed.",
	service.ErrPaymentInProgress:       "Payment is already being processed.",
	service.ErrPaymentDeclined:         "Payment was declined.",
	service.ErrInvalidTransition:       "Order is not in a valid state for this action.",
	service.ErrOrderNotCancellable:     "Order can no longer be cancelled.",
	service.ErrOTPInvalid:              "Invalid OTP!",
	service.ErrOTPExpired:              "OTP has expired! Please request a new one.",
	service.ErrMailDelivery:            "Failed to send OTP! Please try again later.",
	service.ErrPaymentGateway:          "Payment processing failed.",
	auth.ErrUnauthorized:               "Unauthorized",
}

// publicMessage returns a message safe to show the client.
func publicMessage(code int, err error) string {
	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		return cooldown.Error()
	}
	for sentinel, msg := range publicMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	if code >= http.StatusInternalServerError {
		return "Internal server error"
	}
	return http.StatusText(code)
}
