package domain

import "time"

// DocumentStatus is the verification state of a driver's paperwork.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// DriverProfile holds per-driver verification and availability state.
type DriverProfile struct {
	ID               int64
	UserID           int64
	LicenseNumber    string
	InsuranceDetails string
	VehicleType      string
	LicenseDocURL    string
	InsuranceDocURL  string
	DocumentStatus   DocumentStatus
	IsAvailable      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EligibleForJobs reports whether the driver may see and take jobs.
func (p *DriverProfile) EligibleForJobs() bool {
	return p.DocumentStatus == DocumentStatusVerified && p.IsAvailable
}
