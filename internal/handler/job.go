package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/domain"
	"courier/internal/service"
)

// JobUseCases is what JobHandler needs from the job service.
type JobUseCases interface {
	ListAvailableJobs(ctx context.Context, driverID int64) ([]*domain.Order, error)
	HandleJobAction(ctx context.Context, driverID, orderID int64, action service.JobAction) (*domain.Order, error)
	ConfirmPickup(ctx context.Context, in service.ProofInput) (*domain.Order, error)
	ConfirmDelivery(ctx context.Context, in service.ProofInput) (*service.DeliveryResult, error)
}

// JobHandler handles the driver side of the order lifecycle.
type JobHandler struct {
	jobs JobUseCases
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs JobUseCases) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// JobActionRequest is the HTTP request body for accept/reject.
type JobActionRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

// PickupRequest is the HTTP request body for pickup confirmation.
type PickupRequest struct {
	Photo     string `json:"photo"`
	Signature string `json:"signature"`
	Notes     string `json:"notes"`
}

// DeliveryRequest is the HTTP request body for delivery confirmation.
type DeliveryRequest struct {
	Photo     string `json:"photo" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Notes     string `json:"notes"`
}

// Available handles GET /driver/jobs/available
func (h *JobHandler) Available(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	jobs, err := h.jobs.ListAvailableJobs(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", gin.H{"data": toOrderResponses(jobs)})
}

// Action handles POST /driver/jobs/:id/action
func (h *JobHandler) Action(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req JobActionRequest
	if !bindJSON(c, &req) {
		return
	}

	action := service.JobAction(req.Action)
	order, err := h.jobs.HandleJobAction(c.Request.Context(), id.UserID, orderID, action)
	if err != nil {
		respondError(c, err)
		return
	}

	if action == service.JobActionReject {
		respondSuccess(c, http.StatusOK, "Job rejected.", nil)
		return
	}
	respondSuccess(c, http.StatusOK, "Job accepted. Start navigation to pickup location.", gin.H{
		"order": toOrderResponse(order),
	})
}

// Pickup handles POST /driver/jobs/:id/pickup
func (h *JobHandler) Pickup(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Evidence is optional at pickup, so an empty body is fine.
	var req PickupRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	order, err := h.jobs.ConfirmPickup(c.Request.Context(), service.ProofInput{
		DriverID:  id.UserID,
		OrderID:   orderID,
		Photo:     req.Photo,
		Signature: req.Signature,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Pickup confirmed. Start navigation to drop-off location.", gin.H{
		"order": toOrderResponse(order),
	})
}

// Complete handles POST /driver/jobs/:id/complete
func (h *JobHandler) Complete(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req DeliveryRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.jobs.ConfirmDelivery(c.Request.Context(), service.ProofInput{
		DriverID:  id.UserID,
		OrderID:   orderID,
		Photo:     req.Photo,
		Signature: req.Signature,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Delivery successfully confirmed.", gin.H{
		"order":            toOrderResponse(res.Order),
		"earnings_summary": gin.H{"amount": res.Earning.Amount},
	})
}
