package service

import (
	"context"

	"github.com/google/uuid"

	"courier/internal/domain"
)

// DeclineToken is the card token the mock gateway always refuses.
const DeclineToken = "tok_chargeDeclined"

// ChargeRequest is what the gateway needs to capture an order's amount.
type ChargeRequest struct {
	OrderID int64
	Amount  domain.Cents
	Token   string
}

// ChargeResult is the gateway's answer to a charge.
type ChargeResult struct {
	TransactionID string
	Approved      bool
}

// PaymentGateway is the interface for a payment service provider.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, transactionID string, amount domain.Cents) error
}

// MockGateway approves every charge except DeclineToken.
type MockGateway struct{}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Charge simulates a capture.
func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Token == DeclineToken {
		return &ChargeResult{Approved: false}, nil
	}
	return &ChargeResult{
		TransactionID: "txn_" + uuid.NewString(),
		Approved:      true,
	}, nil
}

// Refund simulates returning a captured charge.
func (g *MockGateway) Refund(ctx context.Context, transactionID string, amount domain.Cents) error {
	return ctx.Err()
}

var _ PaymentGateway = (*MockGateway)(nil)
