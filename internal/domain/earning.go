package domain

import "time"

// DriverCommissionPercent is the share of the order total paid to the driver.
const DriverCommissionPercent = 80

// EarningStatus is the payout state of a driver earning.
type EarningStatus string

const (
	EarningStatusPending EarningStatus = "pending"
	EarningStatusPaid    EarningStatus = "paid"
)

// DriverEarning is the commission owed for one delivered order.
type DriverEarning struct {
	ID          int64
	DriverID    int64
	OrderID     int64
	Amount      Cents
	Status      EarningStatus
	PaymentDate *time.Time
	CreatedAt   time.Time
}

// NewDriverEarning computes the driver's commission for a delivered order.
func NewDriverEarning(order *Order, driverID int64) *DriverEarning {
	return &DriverEarning{
		DriverID: driverID,
		OrderID:  order.ID,
		Amount:   order.TotalAmount.Percent(DriverCommissionPercent),
		Status:   EarningStatusPending,
	}
}
