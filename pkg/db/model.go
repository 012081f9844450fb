package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan tier identifiers as stored in subscriptions.plan. The typed
// enumeration lives in pkg/recibo; the db layer keeps raw strings.
const (
	PlanFree   = "free"
	PlanBasico = "basico"
	PlanPro    = "pro"
	PlanUltra  = "ultra"
)

// Transaction is one recognized receipt.
type Transaction struct {
	tableName struct{} `pg:"transactions,alias:t,discard_unknown_columns"`

	ID        int             `pg:"transaction_id,pk"`
	ChatID    int64           `pg:"chat_id,use_zero"`
	Amount    decimal.Decimal `pg:"amount,use_zero"`
	Bank      *string         `pg:"bank"`
	PayerName *string         `pg:"payer_name"`
	FileID    string          `pg:"file_id,use_zero"`
	RawText   *string         `pg:"raw_text"`
	CreatedAt time.Time       `pg:"created_at,default:now()"`
}

// Subscription is the per-chat plan row. Created lazily with free-tier
// defaults, never deleted (downgraded in place).
type Subscription struct {
	tableName struct{} `pg:"subscriptions,alias:s,discard_unknown_columns"`

	ID          int        `pg:"subscription_id,pk"`
	ChatID      int64      `pg:"chat_id,use_zero"`
	Plan        string     `pg:"plan,use_zero"`
	UsageCount  int        `pg:"usage_count,use_zero"`
	PeriodStart time.Time  `pg:"period_start"`
	PeriodEnd   *time.Time `pg:"period_end"`
	CreatedAt   time.Time  `pg:"created_at,default:now()"`
}

// Payment is the audit row for one PIX charge attempt.
type Payment struct {
	tableName struct{} `pg:"payments,alias:p,discard_unknown_columns"`

	ID           int             `pg:"payment_id,pk"`
	ChatID       int64           `pg:"chat_id,use_zero"`
	Plan         string          `pg:"plan,use_zero"`
	Amount       decimal.Decimal `pg:"amount,use_zero"`
	GatewayID    string          `pg:"gateway_id,use_zero"`
	Status       string          `pg:"status,use_zero"`
	QRCode       *string         `pg:"qr_code"`
	QRCodeBase64 *string         `pg:"qr_code_base64"`
	CreatedAt    time.Time       `pg:"created_at,default:now()"`
}

var Columns = struct {
	Transaction struct {
		ID, ChatID, Amount, Bank, PayerName, FileID, RawText, CreatedAt string
	}
	Subscription struct {
		ID, ChatID, Plan, UsageCount, PeriodStart, PeriodEnd, CreatedAt string
	}
	Payment struct {
		ID, ChatID, Plan, Amount, GatewayID, Status, QRCode, QRCodeBase64, CreatedAt string
	}
}{
	Transaction: struct {
		ID, ChatID, Amount, Bank, PayerName, FileID, RawText, CreatedAt string
	}{
		ID:        "transaction_id",
		ChatID:    "chat_id",
		Amount:    "amount",
		Bank:      "bank",
		PayerName: "payer_name",
		FileID:    "file_id",
		RawText:   "raw_text",
		CreatedAt: "created_at",
	},
	Subscription: struct {
		ID, ChatID, Plan, UsageCount, PeriodStart, PeriodEnd, CreatedAt string
	}{
		ID:          "subscription_id",
		ChatID:      "chat_id",
		Plan:        "plan",
		UsageCount:  "usage_count",
		PeriodStart: "period_start",
		PeriodEnd:   "period_end",
		CreatedAt:   "created_at",
	},
	Payment: struct {
		ID, ChatID, Plan, Amount, GatewayID, Status, QRCode, QRCodeBase64, CreatedAt string
	}{
		ID:           "payment_id",
		ChatID:       "chat_id",
		Plan:         "plan",
		Amount:       "amount",
		GatewayID:    "gateway_id",
		Status:       "status",
		QRCode:       "qr_code",
		QRCodeBase64: "qr_code_base64",
		CreatedAt:    "created_at",
	},
}

var Tables = struct {
	Transaction struct {
		Name, Alias string
	}
	Subscription struct {
		Name, Alias string
	}
	Payment struct {
		Name, Alias string
	}
}{
	Transaction: struct {
		Name, Alias string
	}{Name: "transactions", Alias: "t"},
	Subscription: struct {
		Name, Alias string
	}{Name: "subscriptions", Alias: "s"},
	Payment: struct {
		Name, Alias string
	}{Name: "payments", Alias: "p"},
}
