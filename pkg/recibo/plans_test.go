package recibo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePlan(t *testing.T) {
	for _, s := range []string{"free", "basico", "pro", "ultra"} {
		p, ok := ParsePlan(s)
		assert.True(t, ok, s)
		assert.True(t, p.Valid())
	}

	_, ok := ParsePlan("premium")
	assert.False(t, ok)

	_, ok = ParsePlan("")
	assert.False(t, ok)
}

func TestPlanPaid(t *testing.T) {
	assert.False(t, PlanFree.Paid())
	assert.True(t, PlanBasico.Paid())
	assert.True(t, PlanPro.Paid())
	assert.True(t, PlanUltra.Paid())
	assert.False(t, Plan("premium").Paid())
}

func TestPlanInfo(t *testing.T) {
	assert.True(t, PlanFree.Info().Price.IsZero())

	basico := PlanBasico.Info()
	assert.True(t, basico.Price.Equal(decimal.New(990, -2)))
	assert.Equal(t, 1000, basico.MonthlyLimit)
	assert.False(t, basico.Unlimited)

	pro := PlanPro.Info()
	assert.True(t, pro.Price.Equal(decimal.New(1990, -2)))
	assert.Equal(t, 3500, pro.MonthlyLimit)

	ultra := PlanUltra.Info()
	assert.True(t, ultra.Price.Equal(decimal.New(2990, -2)))
	assert.True(t, ultra.Unlimited)
}

func TestPlanDisplay(t *testing.T) {
	assert.Equal(t, "Gratuito", PlanFree.Display())
	assert.Equal(t, "Básico", PlanBasico.Display())
	assert.Equal(t, "unknown", Plan("unknown").Display())
}
