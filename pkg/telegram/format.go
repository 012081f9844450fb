package telegram

import (
	"errors"
	"fmt"
	"strings"

	"recibo/pkg/recibo"

	"github.com/shopspring/decimal"
)

var errBadAmount = errors.New("valor inválido")

// ParseAmount parses a user-typed monetary value. Accepts "42,50",
// "42.50", "1.234,56" and an optional "R$" prefix. Must be positive.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "r$")
	s = strings.ReplaceAll(s, " ", "")

	if strings.Contains(s, ",") {
		// Brazilian format: dot is thousands separator, comma is decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errBadAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, errBadAmount
	}

	return amount, nil
}

// FormatAmount renders a value as "R$ 42,50".
func FormatAmount(d decimal.Decimal) string {
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// formatTransactionLine renders one ledger entry at its 1-based position.
func formatTransactionLine(position int, t Transaction) string {
	line := fmt.Sprintf("%d. <b>%s</b>", position, FormatAmount(t.Amount))
	if t.Bank != "" {
		line += " — " + t.Bank
	}
	if t.PayerName != "" {
		line += fmt.Sprintf(" (%s)", t.PayerName)
	}
	line += fmt.Sprintf(" às %s", t.CreatedAt.Format("15:04"))
	return line
}

// formatDaySummary renders today's list and running total.
func formatDaySummary(transactions []Transaction, summary recibo.Summary) string {
	if summary.Count == 0 {
		return "📊 <b>Hoje</b>\n\n<i>Nenhum comprovante registrado hoje.</i>"
	}

	var b strings.Builder
	b.WriteString("📊 <b>Hoje</b>\n\n")
	for i, t := range transactions {
		b.WriteString(formatTransactionLine(i+1, t))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n💰 <b>Total:</b> %s (%d comprovante(s))", FormatAmount(summary.Total), summary.Count)

	return b.String()
}

// formatReceiptReply renders the confirmation after a receipt is recorded.
func formatReceiptReply(t *Transaction, summary recibo.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Comprovante registrado: <b>%s</b>", FormatAmount(t.Amount))
	if t.Bank != "" {
		fmt.Fprintf(&b, " — %s", t.Bank)
	}
	if t.PayerName != "" {
		fmt.Fprintf(&b, " (%s)", t.PayerName)
	}
	fmt.Fprintf(&b, "\n\n💰 Total de hoje: <b>%s</b> (%d comprovante(s))", FormatAmount(summary.Total), summary.Count)

	return b.String()
}

// formatPlanStatus renders the /plano answer from a gate decision.
func formatPlanStatus(d recibo.Decision, periodEnd string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💳 <b>Plano:</b> %s\n", d.Plan.Display())

	if d.Limit != nil {
		unit := "neste mês"
		if d.Plan == recibo.PlanFree {
			unit = "hoje"
		}
		fmt.Fprintf(&b, "📈 <b>Uso:</b> %d de %d %s\n", d.Used, *d.Limit, unit)
	} else {
		b.WriteString("📈 <b>Uso:</b> ilimitado\n")
	}

	if periodEnd != "" {
		fmt.Fprintf(&b, "📅 <b>Válido até:</b> %s\n", periodEnd)
	}

	if d.Message != "" {
		b.WriteString("\n" + d.Message)
	}

	return strings.TrimSpace(b.String())
}
