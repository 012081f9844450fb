package telegram

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a ledger entry in the telegram bot layer
type Transaction struct {
	ID        int
	ChatID    int64
	Amount    decimal.Decimal
	Bank      string
	PayerName string
	FileID    string
	CreatedAt time.Time
}
