package recibo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"recibo/pkg/db"

	"recibo/pkg/services"
)

// ErrFreePlan rejects charge creation for the free tier.
var ErrFreePlan = errors.New("free plan cannot be purchased")

// CreateCharge asks the gateway for a PIX charge for the given plan and
// persists the audit row. Returns the stored payment with QR payload.
func (m *Manager) CreateCharge(ctx context.Context, chatID int64, plan Plan) (*Payment, error) {
	if !plan.Paid() {
		return nil, ErrFreePlan
	}

	info := plan.Info()
	charge, err := m.gateway.CreateCharge(ctx, services.CreateChargeRequest{
		Amount:            info.Price,
		Description:       fmt.Sprintf("Assinatura %s - bot de comprovantes", info.Display),
		ExternalReference: FormatReference(chatID, plan),
		IdempotencyKey:    idempotencyKey(chatID, plan, time.Now()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}

	payment := &db.Payment{
		ChatID:    chatID,
		Plan:      string(plan),
		Amount:    info.Price,
		GatewayID: charge.ID,
		Status:    charge.Status,
	}
	if charge.QRCode != "" {
		payment.QRCode = &charge.QRCode
	}
	if charge.QRCodeBase64 != "" {
		payment.QRCodeBase64 = &charge.QRCodeBase64
	}

	created, err := m.cr.AddPayment(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	m.log.Print(ctx, "charge created",
		"payment_id", created.ID,
		"gateway_id", charge.ID,
		"chat_id", chatID,
		"plan", string(plan),
	)

	return NewPayment(created), nil
}

// HandleWebhook processes a gateway notification for a payment. A
// non-approved status updates the audit row and stops: pending and failed
// are valid states, not errors. A malformed external reference is rejected
// as a handled condition.
func (m *Manager) HandleWebhook(ctx context.Context, gatewayPaymentID string) error {
	charge, err := m.gateway.GetCharge(ctx, gatewayPaymentID)
	if err != nil {
		return fmt.Errorf("failed to fetch charge: %w", err)
	}

	payment, err := m.cr.OnePayment(ctx, &db.PaymentSearch{GatewayID: &gatewayPaymentID})
	if err != nil {
		return fmt.Errorf("failed to find payment: %w", err)
	}

	if payment != nil && payment.Status != charge.Status {
		payment.Status = charge.Status
		if _, err := m.cr.UpdatePayment(ctx, payment, db.WithColumns(db.Columns.Payment.Status)); err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}
	}

	if charge.Status != services.ChargeStatusApproved {
		m.log.Print(ctx, "payment not approved yet", "gateway_id", gatewayPaymentID, "status", charge.Status)
		return nil
	}

	chatID, plan, err := ParseReference(charge.ExternalReference)
	if err != nil {
		m.log.Error(ctx, "malformed payment reference", "gateway_id", gatewayPaymentID, "reference", charge.ExternalReference, "err", err)
		return nil
	}

	if err := m.ActivateSubscription(ctx, chatID, plan, time.Now()); err != nil {
		return err
	}

	m.log.Print(ctx, "payment approved", "gateway_id", gatewayPaymentID, "chat_id", chatID, "plan", string(plan))

	return nil
}

// FormatReference encodes the chat and plan into the gateway's free-text
// reference field.
func FormatReference(chatID int64, plan Plan) string {
	return fmt.Sprintf("%d:%s", chatID, plan)
}

// ParseReference decodes a "chatId:plan" reference.
func ParseReference(ref string) (int64, Plan, error) {
	parts := strings.SplitN(ref, ":", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("reference %q is not chatId:plan", ref)
	}

	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("reference %q has invalid chat id", ref)
	}

	plan, ok := ParsePlan(parts[1])
	if !ok || !plan.Paid() {
		return 0, "", fmt.Errorf("reference %q has invalid plan", ref)
	}

	return chatID, plan, nil
}

// idempotencyKey derives a stable key for charge creation retries within
// the same second.
func idempotencyKey(chatID int64, plan Plan, t time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s:%d", chatID, plan, t.Unix())))
	return hex.EncodeToString(sum[:])
}
