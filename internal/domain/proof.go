package domain

import "time"

// ProofType is the stage at which proof was captured.
type ProofType string

const (
	ProofTypePickup   ProofType = "pickup"
	ProofTypeDelivery ProofType = "delivery"
)

// ProofOfDelivery holds photo and signature references for a stage.
type ProofOfDelivery struct {
	ID           int64
	OrderID      int64
	Type         ProofType
	PhotoURL     string
	SignatureURL string
	Notes        string
	CreatedAt    time.Time
}
