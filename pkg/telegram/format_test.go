package telegram

import (
	"testing"
	"time"

	"recibo/pkg/recibo"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"42,50", "42.5"},
		{"42.50", "42.5"},
		{"R$ 42,50", "42.5"},
		{"r$42,50", "42.5"},
		{"1.234,56", "1234.56"},
		{"100", "100"},
		{"  7,00  ", "7"},
	}

	for _, tt := range tests {
		amount, err := ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, amount.String(), tt.in)
	}
}

func TestParseAmountErrors(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "-5", "R$", "12,34,56"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "R$ 42,50", FormatAmount(decimal.New(4250, -2)))
	assert.Equal(t, "R$ 100,00", FormatAmount(decimal.New(100, 0)))
	assert.Equal(t, "R$ 0,99", FormatAmount(decimal.New(99, -2)))
	assert.Equal(t, "R$ 1234,56", FormatAmount(decimal.New(123456, -2)))
}

func TestFormatDaySummary(t *testing.T) {
	empty := formatDaySummary(nil, recibo.Summary{})
	assert.Contains(t, empty, "Nenhum comprovante")

	created := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)
	transactions := []Transaction{
		{Amount: decimal.New(5000, -2), Bank: "Nubank", PayerName: "Maria", CreatedAt: created},
		{Amount: decimal.New(2550, -2), CreatedAt: created.Add(time.Hour)},
	}
	summary := recibo.Summary{Total: decimal.New(7550, -2), Count: 2}

	out := formatDaySummary(transactions, summary)
	assert.Contains(t, out, "1. <b>R$ 50,00</b>")
	assert.Contains(t, out, "Nubank")
	assert.Contains(t, out, "Maria")
	assert.Contains(t, out, "2. <b>R$ 25,50</b>")
	assert.Contains(t, out, "R$ 75,50")
	assert.Contains(t, out, "14:30")
}

func TestFormatPlanStatus(t *testing.T) {
	limit := 5
	d := recibo.Decision{Allowed: true, Plan: recibo.PlanFree, Used: 2, Limit: &limit}

	out := formatPlanStatus(d, "")
	assert.Contains(t, out, "Gratuito")
	assert.Contains(t, out, "2 de 5 hoje")

	monthly := 3500
	d = recibo.Decision{Allowed: true, Plan: recibo.PlanPro, Used: 10, Limit: &monthly}
	out = formatPlanStatus(d, "29/09/2026")
	assert.Contains(t, out, "Pro")
	assert.Contains(t, out, "10 de 3500 neste mês")
	assert.Contains(t, out, "29/09/2026")

	d = recibo.Decision{Allowed: true, Plan: recibo.PlanUltra}
	out = formatPlanStatus(d, "")
	assert.Contains(t, out, "ilimitado")
}
