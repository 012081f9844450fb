package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vmkteam/embedlog"
)

// MediaKind identifies the receipt file format sent to the vision model.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaPDF   MediaKind = "pdf"
)

// Extraction is the vision model's reading of a receipt. A nil Amount is a
// valid, non-exceptional result meaning the model could not identify a
// value; callers must report it, not crash.
type Extraction struct {
	Amount    *decimal.Decimal
	Bank      string
	PayerName string
	RawText   string
}

// Vision extracts payment data from receipt images and PDFs.
type Vision interface {
	Extract(ctx context.Context, file []byte, kind MediaKind) (*Extraction, error)
}

// MockVision is a mock implementation of Vision.
type MockVision struct {
	logger embedlog.Logger

	Result *Extraction
	Err    error
	Calls  int
}

// NewMockVision creates a new mock vision service.
func NewMockVision(logger embedlog.Logger) *MockVision {
	amount := decimal.New(4250, -2)
	return &MockVision{
		logger: logger,
		Result: &Extraction{
			Amount:    &amount,
			Bank:      "Nubank",
			PayerName: "Maria Silva",
			RawText:   `{"valor": 42.50, "banco": "Nubank", "nome_pagador": "Maria Silva"}`,
		},
	}
}

// Extract returns the preconfigured result.
func (m *MockVision) Extract(ctx context.Context, file []byte, kind MediaKind) (*Extraction, error) {
	m.Calls++
	m.logger.Print(ctx, "mock vision extract", "bytes", len(file), "kind", string(kind))

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
