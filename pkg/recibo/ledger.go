package recibo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recibo/pkg/db"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount rejects non-positive amounts before they reach the store.
var ErrInvalidAmount = errors.New("amount must be positive")

// Summary aggregates today's ledger for a chat.
type Summary struct {
	Total decimal.Decimal
	Count int
}

// midnight returns the start of the calendar day containing t, in t's
// location. All "today" scoping derives from this cutoff, computed once
// per call.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// targetIndex resolves an optional 1-based position against a list length:
// nil means the last element, out-of-range means not found.
func targetIndex(length int, position *int) (int, bool) {
	if length == 0 {
		return 0, false
	}
	if position == nil {
		return length - 1, true
	}
	if *position < 1 || *position > length {
		return 0, false
	}
	return *position - 1, true
}

// AppendTransaction records a recognized receipt and returns the stored row
// with its assigned id and timestamp. Duplicate checking is the caller's
// job via IsDuplicate.
func (m *Manager) AppendTransaction(ctx context.Context, chatID int64, amount decimal.Decimal, bank, payerName *string, fileID, rawText string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	transaction := &db.Transaction{
		ChatID:    chatID,
		Amount:    amount,
		Bank:      bank,
		PayerName: payerName,
		FileID:    fileID,
	}
	if rawText != "" {
		transaction.RawText = &rawText
	}

	created, err := m.cr.AddTransaction(ctx, transaction)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	m.log.Print(ctx, "transaction created",
		"transaction_id", created.ID,
		"chat_id", chatID,
		"amount", amount.String(),
	)

	return NewTransaction(created), nil
}

// IsDuplicate reports whether this chat already has a transaction for the
// given source file. Guarantees at-most-once ingestion per file per chat.
func (m *Manager) IsDuplicate(ctx context.Context, chatID int64, fileID string) (bool, error) {
	count, err := m.cr.CountTransactions(ctx, &db.TransactionSearch{
		ChatID: &chatID,
		FileID: &fileID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}

	return count > 0, nil
}

// ListToday returns today's transactions for a chat ascending by creation
// time. This ordering defines the canonical 1-based positions.
func (m *Manager) ListToday(ctx context.Context, chatID int64, now time.Time) ([]Transaction, error) {
	since := midnight(now)
	transactions, err := m.cr.TransactionsByFilters(ctx, &db.TransactionSearch{
		ChatID:       &chatID,
		CreatedAtGte: &since,
	}, db.PagerDefault, m.cr.DefaultTransactionSort())
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return MapP(transactions, NewTransaction), nil
}

// CountToday returns the number of today's transactions for a chat.
func (m *Manager) CountToday(ctx context.Context, chatID int64, now time.Time) (int, error) {
	since := midnight(now)
	count, err := m.cr.CountTransactions(ctx, &db.TransactionSearch{
		ChatID:       &chatID,
		CreatedAtGte: &since,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// DeleteByPosition removes the transaction at the given 1-based position in
// today's list, or the most recent one when position is nil. Out-of-range
// positions yield (nil, nil): nothing deleted, no error.
func (m *Manager) DeleteByPosition(ctx context.Context, chatID int64, position *int, now time.Time) (*Transaction, error) {
	transactions, err := m.ListToday(ctx, chatID, now)
	if err != nil {
		return nil, err
	}

	idx, ok := targetIndex(len(transactions), position)
	if !ok {
		return nil, nil
	}

	target := transactions[idx]
	if _, err := m.cr.DeleteTransaction(ctx, target.ID); err != nil {
		return nil, fmt.Errorf("failed to delete transaction: %w", err)
	}

	m.log.Print(ctx, "transaction deleted", "transaction_id", target.ID, "chat_id", chatID)

	return &target, nil
}

// UpdateLastAmount overwrites the amount of today's most recent transaction,
// leaving every other field untouched. Returns (nil, nil) when today is
// empty. Caller validates amount > 0; guarded here as well.
func (m *Manager) UpdateLastAmount(ctx context.Context, chatID int64, amount decimal.Decimal, now time.Time) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	since := midnight(now)
	transactions, err := m.cr.TransactionsByFilters(ctx, &db.TransactionSearch{
		ChatID:       &chatID,
		CreatedAtGte: &since,
	}, db.PagerOne, db.WithSort(db.SortField{Column: db.Columns.Transaction.CreatedAt, Direction: db.SortDesc}))
	if err != nil {
		return nil, fmt.Errorf("failed to find last transaction: %w", err)
	}

	if len(transactions) == 0 {
		return nil, nil
	}

	last := transactions[0]
	last.Amount = amount
	if _, err := m.cr.UpdateTransaction(ctx, &last, db.WithColumns(db.Columns.Transaction.Amount)); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	m.log.Print(ctx, "transaction amount updated", "transaction_id", last.ID, "chat_id", chatID, "amount", amount.String())

	return NewTransaction(&last), nil
}

// ClearToday deletes all of today's transactions for a chat and returns
// the number removed.
func (m *Manager) ClearToday(ctx context.Context, chatID int64, now time.Time) (int, error) {
	since := midnight(now)
	count, err := m.cr.DeleteTransactionsByFilters(ctx, &db.TransactionSearch{
		ChatID:       &chatID,
		CreatedAtGte: &since,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear transactions: %w", err)
	}

	if count > 0 {
		m.log.Print(ctx, "transactions cleared", "chat_id", chatID, "count", count)
	}

	return count, nil
}

// AggregateToday sums today's amounts. Zero total and count on an empty
// day is a valid result, not an error.
func (m *Manager) AggregateToday(ctx context.Context, chatID int64, now time.Time) (Summary, error) {
	transactions, err := m.ListToday(ctx, chatID, now)
	if err != nil {
		return Summary{}, err
	}

	total := decimal.Zero
	for i := range transactions {
		total = total.Add(transactions[i].Amount)
	}

	return Summary{Total: total, Count: len(transactions)}, nil
}
