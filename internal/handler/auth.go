package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"courier/internal/auth"
	"courier/internal/domain"
	"courier/internal/middleware"
	"courier/internal/service"
)

// AuthUseCases is what AuthHandler needs from the identity service.
type AuthUseCases interface {
	Register(ctx context.Context, req service.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string, roles ...domain.Role) (*service.LoginResult, error)
	ResetPassword(ctx context.Context, userID int64, purpose auth.Purpose, password string) error
	GetStatus(ctx context.Context, userID int64) (domain.UserStatus, error)
	UpdateStatus(ctx context.Context, userID int64, status domain.UserStatus) error
}

// OTPUseCases is what AuthHandler needs from the OTP service.
type OTPUseCases interface {
	SendOTP(ctx context.Context, email string) (time.Time, error)
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
}

// CookieConfig describes the credential cookie.
type CookieConfig struct {
	Name       string
	Secure     bool
	SessionTTL time.Duration
	ResetTTL   time.Duration
}

// AuthHandler handles registration, login, OTP and password reset for every
// login surface.
type AuthHandler struct {
	auth   AuthUseCases
	otp    OTPUseCases
	cookie CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService AuthUseCases, otpService OTPUseCases, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: authService, otp: otpService, cookie: cookie}
}

// RegisterRequest is the HTTP request body for registration.
type RegisterRequest struct {
	Name             string `json:"name" binding:"required,max=255"`
	Email            string `json:"email" binding:"required,email,max=255"`
	Password         string `json:"password" binding:"required,min=6"`
	Phone            string `json:"phone" binding:"max=32"`
	LicenseNumber    string `json:"license_number" binding:"max=64"`
	VehicleType      string `json:"vehicle_type" binding:"max=64"`
	InsuranceDetails string `json:"insurance_details"`
}

// LoginRequest is the HTTP request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// EmailRequest is the HTTP request body for send-otp.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest is the HTTP request body for verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest is the HTTP request body for reset-password.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateStatusRequest is the HTTP request body for update-status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available busy"`
}

// Register returns the registration handler for a surface. role is the role
// the new identity receives.
func (h *AuthHandler) Register(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if !bindJSON(c, &req) {
			return
		}

		user, err := h.auth.Register(c.Request.Context(), service.RegisterRequest{
			Name:             req.Name,
			Email:            req.Email,
			Password:         req.Password,
			Phone:            req.Phone,
			Role:             role,
			LicenseNumber:    req.LicenseNumber,
			VehicleType:      req.VehicleType,
			InsuranceDetails: req.InsuranceDetails,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		respondSuccess(c, http.StatusCreated, "Registered successfully", gin.H{"user": toUserResponse(user)})
	}
}

// Login returns the login handler for a surface. With no roles any identity
// may log in.
func (h *AuthHandler) Login(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !bindJSON(c, &req) {
			return
		}

		res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, roles...)
		if err != nil {
			respondError(c, err)
			return
		}

		h.setCookie(c, res.Token, h.cookie.SessionTTL)
		respondSuccess(c, http.StatusOK, "Login successful", gin.H{
			"token": res.Token,
			"user":  toUserResponse(res.User),
		})
	}
}

// Logout handles GET .../logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	respondSuccess(c, http.StatusOK, "Logged out successfully", nil)
}

// SendOTP handles POST .../send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req EmailRequest
	if !bindJSON(c, &req) {
		return
	}

	expiresAt, err := h.otp.SendOTP(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "6-digit OTP has been sent to your email.", gin.H{
		"expires_at": expiresAt,
	})
}

// VerifyOTP handles POST .../verify-otp. The reset token is returned in the
// body and set as the credential cookie so reset-password can follow.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.otp.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, token, h.cookie.ResetTTL)
	respondSuccess(c, http.StatusOK, "OTP verified successfully", gin.H{"token": token})
}

// ResetPassword handles POST .../reset-password. It must run behind the
// access gate; only a reset-purpose token is accepted.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), id.UserID, id.Purpose, req.Password); err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, "", -1)
	respondSuccess(c, http.StatusOK, "Password reset successfully", nil)
}

// GetStatus handles GET /get-status
func (h *AuthHandler) GetStatus(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	status, err := h.auth.GetStatus(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", gin.H{"user_status": status})
}

// UpdateStatus handles POST /update-status
func (h *AuthHandler) UpdateStatus(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.UpdateStatus(c.Request.Context(), id.UserID, domain.UserStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Status updated successfully", gin.H{"user_status": req.Status})
}

// setCookie writes the credential cookie; a negative ttl deletes it.
func (h *AuthHandler) setCookie(c *gin.Context, value string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

// identityOrAbort returns the caller attached by the access gate.
func identityOrAbort(c *gin.Context) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return middleware.Identity{}, false
	}
	return id, true
}
