package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "pending"
	OrderStatusAccepted           OrderStatus = "accepted"
	OrderStatusInTransit          OrderStatus = "in_transit"
	OrderStatusInTransitToDropoff OrderStatus = "in_transit_to_dropoff"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

// orderTransitions lists the legal next states for each state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:            {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted:           {OrderStatusInTransit, OrderStatusCancelled},
	OrderStatusInTransit:          {OrderStatusInTransitToDropoff, OrderStatusCancelled},
	OrderStatusInTransitToDropoff: {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// RequiresDriver reports whether an order in s must carry a driver.
func (s OrderStatus) RequiresDriver() bool {
	switch s {
	case OrderStatusInTransit, OrderStatusInTransitToDropoff, OrderStatusDelivered:
		return true
	}
	return false
}

// CancellableStatuses are the states a customer may cancel from.
var CancellableStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusInTransit,
	OrderStatusInTransitToDropoff,
}

// DeliveryType is the kind of goods being delivered.
type DeliveryType string

const (
	DeliveryTypeParcel   DeliveryType = "parcel"
	DeliveryTypeGrocery  DeliveryType = "grocery"
	DeliveryTypeFood     DeliveryType = "food"
	DeliveryTypeCatering DeliveryType = "catering"
)

// Valid reports whether t is a known delivery type.
func (t DeliveryType) Valid() bool {
	switch t {
	case DeliveryTypeParcel, DeliveryTypeGrocery, DeliveryTypeFood, DeliveryTypeCatering:
		return true
	}
	return false
}

// Order represents a customer's delivery booking.
type Order struct {
	ID            int64
	CustomerID    int64
	DriverID      *int64
	DeliveryType  DeliveryType
	ParcelDetails string
	TotalAmount   Cents
	Status        OrderStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Locations []OrderLocation
}

// AssignedTo reports whether the order is assigned to driverID.
func (o *Order) AssignedTo(driverID int64) bool {
	return o.DriverID != nil && *o.DriverID == driverID
}

// LocationType distinguishes the two stops of an order.
type LocationType string

const (
	LocationTypePickup  LocationType = "pickup"
	LocationTypeDropoff LocationType = "dropoff"
)

// OrderLocation is one stop of an order. Immutable once created.
type OrderLocation struct {
	ID            int64
	OrderID       int64
	Type          LocationType
	Latitude      float64
	Longitude     float64
	AddressLine   string
	ContactPerson string
	ContactPhone  string
	CreatedAt     time.Time
}
