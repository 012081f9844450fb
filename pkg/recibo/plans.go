package recibo

import (
	"github.com/shopspring/decimal"
)

// Plan is a service tier. The closed table below is the only source of
// prices and limits, so an invalid tier is unrepresentable past ParsePlan.
type Plan string

const (
	PlanFree   Plan = "free"
	PlanBasico Plan = "basico"
	PlanPro    Plan = "pro"
	PlanUltra  Plan = "ultra"
)

const (
	// FreeDailyLimit is the number of receipts a free chat may process per
	// calendar day, counted live from the ledger.
	FreeDailyLimit = 5

	// GraceDays is the window after a paid period end during which service
	// continues before the forced downgrade.
	GraceDays = 3
)

// PlanInfo holds the commercial attributes of a tier.
type PlanInfo struct {
	Price        decimal.Decimal // BRL
	MonthlyLimit int             // receipts per billing period, 0 when unlimited
	Unlimited    bool
	Display      string
}

var plans = map[Plan]PlanInfo{
	PlanFree:   {Price: decimal.Zero, MonthlyLimit: 0, Display: "Gratuito"},
	PlanBasico: {Price: decimal.New(990, -2), MonthlyLimit: 1000, Display: "Básico"},
	PlanPro:    {Price: decimal.New(1990, -2), MonthlyLimit: 3500, Display: "Pro"},
	PlanUltra:  {Price: decimal.New(2990, -2), Unlimited: true, Display: "Ultra"},
}

// PaidPlans lists purchasable tiers in display order.
var PaidPlans = []Plan{PlanBasico, PlanPro, PlanUltra}

// ParsePlan returns the typed plan for a stored or user-supplied string.
func ParsePlan(s string) (Plan, bool) {
	p := Plan(s)
	_, ok := plans[p]
	return p, ok
}

// Info returns the commercial attributes of the plan.
func (p Plan) Info() PlanInfo {
	return plans[p]
}

// Valid reports whether the plan is a known tier.
func (p Plan) Valid() bool {
	_, ok := plans[p]
	return ok
}

// Paid reports whether the plan is a purchasable paid tier.
func (p Plan) Paid() bool {
	return p.Valid() && p != PlanFree
}

// Display returns the human-readable plan name.
func (p Plan) Display() string {
	if info, ok := plans[p]; ok {
		return info.Display
	}
	return string(p)
}
