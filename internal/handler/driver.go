package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/domain"
	"courier/internal/service"
)

// DriverUseCases is what DriverHandler needs from the driver service.
type DriverUseCases interface {
	GetProfile(ctx context.Context, userID int64) (*service.DriverView, error)
	SetAvailability(ctx context.Context, userID int64, available bool) (*domain.DriverProfile, error)
	VerifyDocuments(ctx context.Context, driverUserID int64, status domain.DocumentStatus) error
	Earnings(ctx context.Context, userID int64) (*service.EarningsSummary, error)
}

// DriverHandler handles driver profile, availability and earnings, and the
// admin verification of driver documents.
type DriverHandler struct {
	drivers DriverUseCases
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(drivers DriverUseCases) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

// AvailabilityRequest is the HTTP request body for going online or offline.
type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// VerifyRequest is the HTTP request body for document review.
type VerifyRequest struct {
	DocumentStatus string `json:"document_status" binding:"required,oneof=verified rejected"`
}

// Profile handles GET /driver/profile
func (h *DriverHandler) Profile(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	view, err := h.drivers.GetProfile(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", gin.H{
		"user":    toUserResponse(view.User),
		"profile": toDriverProfileResponse(view.Profile),
	})
}

// SetAvailability handles POST /driver/status
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.drivers.SetAvailability(c.Request.Context(), id.UserID, *req.IsAvailable)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "You are now offline."
	if profile.IsAvailable {
		msg = "You are now online."
	}
	respondSuccess(c, http.StatusOK, msg, gin.H{"profile": toDriverProfileResponse(profile)})
}

// Earnings handles GET /driver/earnings
func (h *DriverHandler) Earnings(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	summary, err := h.drivers.Earnings(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]EarningResponse, 0, len(summary.Earnings))
	for _, e := range summary.Earnings {
		out = append(out, toEarningResponse(e))
	}
	respondSuccess(c, http.StatusOK, "", gin.H{
		"data":       out,
		"total_paid": summary.TotalPaid,
	})
}

// Verify handles POST /admin/drivers/:id/verify
func (h *DriverHandler) Verify(c *gin.Context) {
	driverID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req VerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.drivers.VerifyDocuments(c.Request.Context(), driverID, domain.DocumentStatus(req.DocumentStatus)); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Driver documents reviewed.", gin.H{
		"driver_id":       driverID,
		"document_status": req.DocumentStatus,
	})
}
