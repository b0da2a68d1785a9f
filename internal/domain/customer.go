package domain

import "time"

// CustomerProfile holds customer-only details.
type CustomerProfile struct {
	ID             int64
	UserID         int64
	DefaultAddress string
	CreatedAt      time.Time
}
