package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/domain"
	"courier/internal/service"
)

// OrderUseCases is what OrderHandler needs from the order service.
type OrderUseCases interface {
	BookOrder(ctx context.Context, req service.BookOrderRequest) (*domain.Order, error)
	CompletePayment(ctx context.Context, req service.CompletePaymentRequest) (*domain.Payment, error)
	GetTracking(ctx context.Context, customerID, orderID int64) (*service.TrackingView, error)
	GetProofs(ctx context.Context, customerID, orderID int64) ([]*domain.ProofOfDelivery, error)
	ListOrders(ctx context.Context, customerID int64) ([]*domain.Order, error)
	CancelOrder(ctx context.Context, customerID, orderID int64) (*domain.Order, error)
}

// CustomerUseCases is what OrderHandler needs from the customer service.
type CustomerUseCases interface {
	GetProfile(ctx context.Context, userID int64) (*service.CustomerView, error)
}

// OrderHandler handles the customer side of the order lifecycle.
type OrderHandler struct {
	orders    OrderUseCases
	customers CustomerUseCases
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders OrderUseCases, customers CustomerUseCases) *OrderHandler {
	return &OrderHandler{orders: orders, customers: customers}
}

// LocationRequest is one stop in a booking.
type LocationRequest struct {
	Latitude      *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	AddressLine   string   `json:"address_line" binding:"required,max=500"`
	ContactPerson string   `json:"contact_person" binding:"max=255"`
	ContactPhone  string   `json:"contact_phone" binding:"max=32"`
}

func (l *LocationRequest) toInput() *service.LocationInput {
	return &service.LocationInput{
		Latitude:      *l.Latitude,
		Longitude:     *l.Longitude,
		AddressLine:   l.AddressLine,
		ContactPerson: l.ContactPerson,
		ContactPhone:  l.ContactPhone,
	}
}

// BookOrderRequest is the HTTP request body for booking.
type BookOrderRequest struct {
	DeliveryType  string           `json:"delivery_type" binding:"required,oneof=parcel grocery food catering"`
	ParcelDetails string           `json:"parcel_details" binding:"required"`
	TotalAmount   domain.Cents     `json:"total_amount" binding:"required,gt=0"`
	Pickup        *LocationRequest `json:"pickup" binding:"required"`
	Dropoff       *LocationRequest `json:"dropoff" binding:"required"`
}

// PayRequest is the HTTP request body for payment.
type PayRequest struct {
	StripeToken string `json:"stripe_token" binding:"required"`
}

// BookOrder handles POST /customer/orders
func (h *OrderHandler) BookOrder(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req BookOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.BookOrder(c.Request.Context(), service.BookOrderRequest{
		CustomerID:    id.UserID,
		DeliveryType:  domain.DeliveryType(req.DeliveryType),
		ParcelDetails: req.ParcelDetails,
		TotalAmount:   req.TotalAmount,
		Pickup:        req.Pickup.toInput(),
		Dropoff:       req.Dropoff.toInput(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Order booked successfully. Please proceed to payment.", gin.H{
		"order_id": order.ID,
		"order":    toOrderResponse(order),
	})
}

// Pay handles POST /customer/orders/:id/pay
func (h *OrderHandler) Pay(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PayRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.orders.CompletePayment(c.Request.Context(), service.CompletePaymentRequest{
		CustomerID:   id.UserID,
		OrderID:      orderID,
		PaymentToken: req.StripeToken,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Payment successful. Your delivery is being prepared.", gin.H{
		"payment": toPaymentResponse(payment),
	})
}

// Tracking handles GET /customer/orders/:id/tracking
func (h *OrderHandler) Tracking(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.orders.GetTracking(c.Request.Context(), id.UserID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	history := make([]TrackingResponse, 0, len(view.History))
	for _, t := range view.History {
		history = append(history, TrackingResponse{
			StatusCode:    string(t.StatusCode),
			StatusMessage: t.StatusMessage,
			CreatedAt:     t.CreatedAt,
		})
	}

	respondSuccess(c, http.StatusOK, "", gin.H{
		"order_status":     view.Order.Status,
		"tracking_history": history,
	})
}

// Proof handles GET /customer/orders/:id/proof
func (h *OrderHandler) Proof(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	proofs, err := h.orders.GetProofs(c.Request.Context(), id.UserID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ProofResponse, 0, len(proofs))
	for _, p := range proofs {
		out = append(out, ProofResponse{
			Type:         string(p.Type),
			PhotoURL:     p.PhotoURL,
			SignatureURL: p.SignatureURL,
			Notes:        p.Notes,
			CreatedAt:    p.CreatedAt,
		})
	}

	respondSuccess(c, http.StatusOK, "", gin.H{"proof": out})
}

// History handles GET /customer/orders
func (h *OrderHandler) History(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", gin.H{"data": toOrderResponses(orders)})
}

// Cancel handles POST /customer/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), id.UserID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Order cancelled.", gin.H{"order": toOrderResponse(order)})
}

// Profile handles GET /customer/profile
func (h *OrderHandler) Profile(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	view, err := h.customers.GetProfile(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", gin.H{
		"user": toUserResponse(view.User),
		"profile": gin.H{
			"default_address": view.Profile.DefaultAddress,
			"created_at":      view.Profile.CreatedAt,
		},
	})
}
