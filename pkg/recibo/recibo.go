package recibo

import (
	"context"
	"fmt"
	"time"

	"recibo/pkg/db"
	"recibo/pkg/services"

	"github.com/vmkteam/embedlog"
)

type Manager struct {
	cr      db.CommonRepo
	db      db.DB
	gateway services.PixGateway
	log     embedlog.Logger
}

func NewManager(dbc db.DB, gateway services.PixGateway, log embedlog.Logger) *Manager {
	return &Manager{
		cr:      db.NewCommonRepo(dbc),
		db:      dbc,
		gateway: gateway,
		log:     log,
	}
}

// Subscription methods

// GetOrCreateSubscription gets the subscription for a chat or creates it
// with free-tier defaults. Never returns a nil subscription on success.
func (m *Manager) GetOrCreateSubscription(ctx context.Context, chatID int64) (*Subscription, error) {
	search := &db.SubscriptionSearch{
		ChatID: &chatID,
	}

	sub, err := m.cr.OneSubscription(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to search subscription: %w", err)
	}

	if sub != nil {
		return NewSubscription(sub), nil
	}

	newSub := &db.Subscription{
		ChatID:      chatID,
		Plan:        string(PlanFree),
		UsageCount:  0,
		PeriodStart: time.Now(),
	}

	sub, err = m.cr.AddSubscription(ctx, newSub)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	m.log.Print(ctx, "new subscription created", "subscription_id", sub.ID, "chat_id", chatID)

	return NewSubscription(sub), nil
}

// ActivateSubscription switches a chat to a paid plan after a confirmed
// payment: usage resets to zero and a fresh one-month period starts.
func (m *Manager) ActivateSubscription(ctx context.Context, chatID int64, plan Plan, now time.Time) error {
	if !plan.Paid() {
		return fmt.Errorf("plan %q cannot be activated", plan)
	}

	sub, err := m.GetOrCreateSubscription(ctx, chatID)
	if err != nil {
		return err
	}

	periodEnd := now.AddDate(0, 1, 0)
	sub.Plan = string(plan)
	sub.UsageCount = 0
	sub.PeriodStart = now
	sub.PeriodEnd = &periodEnd

	if _, err := m.cr.UpdateSubscription(ctx, &sub.Subscription, db.WithColumns(
		db.Columns.Subscription.Plan,
		db.Columns.Subscription.UsageCount,
		db.Columns.Subscription.PeriodStart,
		db.Columns.Subscription.PeriodEnd,
	)); err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	m.log.Print(ctx, "subscription activated", "chat_id", chatID, "plan", string(plan), "period_end", periodEnd)

	return nil
}

// IncrementUsage bumps the monthly counter for paid capped tiers. Free-tier
// usage is always derived live from the ledger and is never stored; the
// unlimited tier has nothing to count against.
func (m *Manager) IncrementUsage(ctx context.Context, chatID int64) error {
	sub, err := m.GetOrCreateSubscription(ctx, chatID)
	if err != nil {
		return err
	}

	plan := Plan(sub.Plan)
	if !plan.Paid() || plan == PlanUltra {
		return nil
	}

	sub.UsageCount++
	if _, err := m.cr.UpdateSubscription(ctx, &sub.Subscription, db.WithColumns(db.Columns.Subscription.UsageCount)); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}

	return nil
}
