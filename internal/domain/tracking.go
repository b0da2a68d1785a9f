package domain

import "time"

// TrackingCode identifies a lifecycle event in an order's audit trail.
type TrackingCode string

const (
	TrackingBooked          TrackingCode = "BOOKED"
	TrackingPaymentComplete TrackingCode = "PAYMENT_COMPLETE"
	TrackingDriverAssigned  TrackingCode = "DRIVER_ASSIGNED"
	TrackingPickedUp        TrackingCode = "PICKED_UP"
	TrackingDelivered       TrackingCode = "DELIVERED"
	TrackingCancelled       TrackingCode = "CANCELLED"
)

var trackingMessages = map[TrackingCode]string{
	TrackingBooked:          "Order placed successfully. Awaiting payment.",
	TrackingPaymentComplete: "Payment successfully completed. Finding nearest driver.",
	TrackingDriverAssigned:  "A driver has been assigned and is on the way to the pickup location.",
	TrackingPickedUp:        "The parcel has been picked up by the driver and is en route to the drop-off location.",
	TrackingDelivered:       "The order has been successfully delivered and completed.",
	TrackingCancelled:       "The order has been cancelled.",
}

// Message returns the customer-facing text for the code.
func (c TrackingCode) Message() string {
	return trackingMessages[c]
}

// OrderTracking is one append-only audit row for an order.
type OrderTracking struct {
	ID            int64
	OrderID       int64
	StatusCode    TrackingCode
	StatusMessage string
	CreatedAt     time.Time
}

// NewTracking builds the tracking row for code.
func NewTracking(orderID int64, code TrackingCode) *OrderTracking {
	return &OrderTracking{
		OrderID:       orderID,
		StatusCode:    code,
		StatusMessage: code.Message(),
	}
}
