package handler

import (
	"time"

	"courier/internal/domain"
)

// UserResponse is the public view of an identity.
type UserResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Phone:  u.Phone,
		Role:   string(u.Role),
		Status: string(u.Status),
	}
}

// LocationResponse is one stop of an order.
type LocationResponse struct {
	Type          string  `json:"type"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	AddressLine   string  `json:"address_line"`
	ContactPerson string  `json:"contact_person,omitempty"`
	ContactPhone  string  `json:"contact_phone,omitempty"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID            int64              `json:"id"`
	CustomerID    int64              `json:"customer_id"`
	DriverID      *int64             `json:"driver_id"`
	DeliveryType  string             `json:"delivery_type"`
	ParcelDetails string             `json:"parcel_details"`
	TotalAmount   domain.Cents       `json:"total_amount"`
	Status        string             `json:"status"`
	Locations     []LocationResponse `json:"locations,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		DriverID:      o.DriverID,
		DeliveryType:  string(o.DeliveryType),
		ParcelDetails: o.ParcelDetails,
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, l := range o.Locations {
		resp.Locations = append(resp.Locations, LocationResponse{
			Type:          string(l.Type),
			Latitude:      l.Latitude,
			Longitude:     l.Longitude,
			AddressLine:   l.AddressLine,
			ContactPerson: l.ContactPerson,
			ContactPhone:  l.ContactPhone,
		})
	}
	return resp
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

// PaymentResponse is the public view of a payment.
type PaymentResponse struct {
	OrderID       int64        `json:"order_id"`
	TransactionID string       `json:"transaction_id,omitempty"`
	Amount        domain.Cents `json:"amount"`
	Method        string       `json:"payment_method"`
	Status        string       `json:"status"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		OrderID:       p.OrderID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        string(p.Status),
	}
}

// TrackingResponse is one audit row.
type TrackingResponse struct {
	StatusCode    string    `json:"status_code"`
	StatusMessage string    `json:"status_message"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProofResponse is pickup or delivery evidence.
type ProofResponse struct {
	Type         string    `json:"type"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	SignatureURL string    `json:"signature_url,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// EarningResponse is one driver earning.
type EarningResponse struct {
	ID          int64        `json:"id"`
	OrderID     int64        `json:"order_id"`
	Amount      domain.Cents `json:"amount"`
	Status      string       `json:"status"`
	PaymentDate *time.Time   `json:"payment_date"`
	CreatedAt   time.Time    `json:"created_at"`
}

func toEarningResponse(e *domain.DriverEarning) EarningResponse {
	return EarningResponse{
		ID:          e.ID,
		OrderID:     e.OrderID,
		Amount:      e.Amount,
		Status:      string(e.Status),
		PaymentDate: e.PaymentDate,
		CreatedAt:   e.CreatedAt,
	}
}

// DriverProfileResponse is the public view of a driver profile.
type DriverProfileResponse struct {
	LicenseNumber    string `json:"license_number,omitempty"`
	VehicleType      string `json:"vehicle_type,omitempty"`
	InsuranceDetails string `json:"insurance_details,omitempty"`
	DocumentStatus   string `json:"document_status"`
	IsAvailable      bool   `json:"is_available"`
}

func toDriverProfileResponse(p *domain.DriverProfile) DriverProfileResponse {
	return DriverProfileResponse{
		LicenseNumber:    p.LicenseNumber,
		VehicleType:      p.VehicleType,
		InsuranceDetails: p.InsuranceDetails,
		DocumentStatus:   string(p.DocumentStatus),
		IsAvailable:      p.IsAvailable,
	}
}
