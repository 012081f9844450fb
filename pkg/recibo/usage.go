package recibo

import (
	"context"
	"fmt"
	"math"
	"time"

	"recibo/pkg/db"
)

// Decision is the usage gate's answer for one submission attempt.
type Decision struct {
	Allowed bool
	Plan    Plan
	Used    int
	Limit   *int // nil for the unlimited tier
	Message string

	Expired         bool
	InGracePeriod   bool
	DaysUntilExpiry int // ceiling of (period end - now) in days, negative once overdue
}

// EvaluateUsage decides whether a chat may process a new receipt at `now`.
// A paid subscription expired past grace is downgraded to free in the same
// call and the decision is re-evaluated against the free-tier rule using
// the live today-count, so the caller never sees a stale paid plan.
func (m *Manager) EvaluateUsage(ctx context.Context, chatID int64, now time.Time) (Decision, error) {
	sub, err := m.GetOrCreateSubscription(ctx, chatID)
	if err != nil {
		return Decision{}, err
	}

	plan := Plan(sub.Plan)

	if plan.Paid() && expiredPastGrace(sub.PeriodEnd, now) {
		if err := m.downgradeExpired(ctx, sub); err != nil {
			return Decision{}, err
		}

		todayCount, err := m.CountToday(ctx, chatID, now)
		if err != nil {
			return Decision{}, err
		}

		d := decide(PlanFree, 0, todayCount, nil, now)
		d.Expired = true
		d.Message = expiredNotice(plan, d.Message)
		return d, nil
	}

	var todayCount int
	if plan == PlanFree {
		todayCount, err = m.CountToday(ctx, chatID, now)
		if err != nil {
			return Decision{}, err
		}
	}

	return decide(plan, sub.UsageCount, todayCount, sub.PeriodEnd, now), nil
}

// decide computes the gate outcome from a subscription snapshot. Pure:
// todayCount is the live ledger count since local midnight, relevant for
// the free tier only.
func decide(plan Plan, usageCount, todayCount int, periodEnd *time.Time, now time.Time) Decision {
	if plan == PlanFree {
		limit := FreeDailyLimit
		d := Decision{
			Allowed: todayCount < limit,
			Plan:    plan,
			Used:    todayCount,
			Limit:   &limit,
		}
		if !d.Allowed {
			d.Message = fmt.Sprintf(
				"🚫 Limite diário do plano Gratuito atingido (%d comprovantes). Envie /assinar para aumentar seu limite.",
				limit,
			)
		}
		return d
	}

	// paid tiers
	info := plan.Info()
	d := Decision{
		Allowed: true,
		Plan:    plan,
		Used:    usageCount,
	}
	if !info.Unlimited {
		limit := info.MonthlyLimit
		d.Limit = &limit
		d.Allowed = usageCount < limit
	}

	// the grace window applies to every paid tier, unlimited included
	if periodEnd != nil && now.After(*periodEnd) {
		d.InGracePeriod = true
		d.DaysUntilExpiry = ceilDays(periodEnd.Sub(now))
		remaining := GraceDays + d.DaysUntilExpiry
		d.Message = fmt.Sprintf(
			"⚠️ Sua assinatura %s venceu. Você tem %d dia(s) para renovar antes de voltar ao plano Gratuito. Envie /assinar para renovar.",
			info.Display, remaining,
		)
	}

	if !d.Allowed {
		d.Message = fmt.Sprintf(
			"🚫 Limite mensal do plano %s atingido (%d comprovantes). Envie /assinar para mudar de plano.",
			info.Display, info.MonthlyLimit,
		)
	}

	return d
}

// expiredPastGrace reports whether a paid period ended more than GraceDays ago.
func expiredPastGrace(periodEnd *time.Time, now time.Time) bool {
	if periodEnd == nil {
		return false
	}
	return now.After(periodEnd.AddDate(0, 0, GraceDays))
}

// ceilDays converts a duration to whole days, rounding toward positive
// infinity; negative once the instant has passed.
func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

func expiredNotice(previous Plan, rest string) string {
	msg := fmt.Sprintf(
		"⏰ Sua assinatura %s expirou e sua conta voltou ao plano Gratuito (%d comprovantes por dia). Envie /assinar para reativar.",
		previous.Display(), FreeDailyLimit,
	)
	if rest != "" {
		msg += "\n\n" + rest
	}
	return msg
}

// downgradeExpired rewrites the row to free-tier defaults in place.
func (m *Manager) downgradeExpired(ctx context.Context, sub *Subscription) error {
	previous := sub.Plan
	sub.Plan = string(PlanFree)
	sub.UsageCount = 0
	sub.PeriodEnd = nil

	if _, err := m.cr.UpdateSubscription(ctx, &sub.Subscription, db.WithColumns(
		db.Columns.Subscription.Plan,
		db.Columns.Subscription.UsageCount,
		db.Columns.Subscription.PeriodEnd,
	)); err != nil {
		return fmt.Errorf("failed to downgrade subscription: %w", err)
	}

	m.log.Print(ctx, "subscription downgraded", "chat_id", sub.ChatID, "previous_plan", previous)

	return nil
}

// DowngradeExpiredSubscriptions sweeps paid subscriptions whose grace
// window has passed. The usage gate also downgrades lazily on access; this
// keeps rows of inactive chats from lingering on a dead paid plan.
func (m *Manager) DowngradeExpiredSubscriptions(ctx context.Context, now time.Time) (int, error) {
	var swept int
	for _, plan := range PaidPlans {
		p := string(plan)
		subs, err := m.cr.SubscriptionsByFilters(ctx, &db.SubscriptionSearch{Plan: &p}, db.PagerDefault)
		if err != nil {
			return swept, fmt.Errorf("failed to list %s subscriptions: %w", p, err)
		}

		for i := range subs {
			if !expiredPastGrace(subs[i].PeriodEnd, now) {
				continue
			}
			if err := m.downgradeExpired(ctx, NewSubscription(&subs[i])); err != nil {
				return swept, err
			}
			swept++
		}
	}

	return swept, nil
}
