package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vmkteam/embedlog"
)

// Charge gateway statuses as reported by Mercado Pago.
const (
	ChargeStatusPending  = "pending"
	ChargeStatusApproved = "approved"
	ChargeStatusRejected = "rejected"
)

// Charge is a PIX charge as seen by the payment gateway.
type Charge struct {
	ID                string
	Status            string
	QRCode            string
	QRCodeBase64      string
	ExternalReference string
}

// CreateChargeRequest describes a new PIX charge.
type CreateChargeRequest struct {
	Amount            decimal.Decimal
	Description       string
	ExternalReference string
	IdempotencyKey    string
}

// PixGateway creates and fetches PIX charges.
type PixGateway interface {
	CreateCharge(ctx context.Context, req CreateChargeRequest) (*Charge, error)
	GetCharge(ctx context.Context, id string) (*Charge, error)
}

// MockGateway is a mock implementation of PixGateway keeping charges
// in memory.
type MockGateway struct {
	logger embedlog.Logger

	mu      sync.Mutex
	seq     int
	charges map[string]*Charge

	CreateErr error
	GetErr    error
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway(logger embedlog.Logger) *MockGateway {
	return &MockGateway{
		logger:  logger,
		charges: make(map[string]*Charge),
	}
}

// CreateCharge registers a pending charge with a fake QR payload.
func (m *MockGateway) CreateCharge(ctx context.Context, req CreateChargeRequest) (*Charge, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	charge := &Charge{
		ID:                fmt.Sprintf("mock-%d", m.seq),
		Status:            ChargeStatusPending,
		QRCode:            fmt.Sprintf("00020126mockpix%d5204000053039865802BR", m.seq),
		QRCodeBase64:      "aVZCT1J3MEtHZ29BQUFBTlN", // not a real image
		ExternalReference: req.ExternalReference,
	}
	m.charges[charge.ID] = charge

	m.logger.Print(ctx, "mock charge created", "id", charge.ID, "amount", req.Amount.String())

	return charge, nil
}

// GetCharge returns a previously created charge.
func (m *MockGateway) GetCharge(ctx context.Context, id string) (*Charge, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	charge, ok := m.charges[id]
	if !ok {
		return nil, fmt.Errorf("charge %s not found", id)
	}
	c := *charge
	return &c, nil
}

// SetStatus overrides a stored charge status, simulating a gateway-side
// transition before a webhook arrives.
func (m *MockGateway) SetStatus(id, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if charge, ok := m.charges[id]; ok {
		charge.Status = status
	}
}
