package telegram

import "recibo/pkg/recibo"

// NewTransaction converts recibo.Transaction to telegram.Transaction
func NewTransaction(t *recibo.Transaction) *Transaction {
	if t == nil {
		return nil
	}

	var bank, payerName string
	if t.Bank != nil {
		bank = *t.Bank
	}
	if t.PayerName != nil {
		payerName = *t.PayerName
	}

	return &Transaction{
		ID:        t.ID,
		ChatID:    t.ChatID,
		Amount:    t.Amount,
		Bank:      bank,
		PayerName: payerName,
		FileID:    t.FileID,
		CreatedAt: t.CreatedAt,
	}
}

// NewTransactions converts slice of recibo.Transaction to slice of telegram.Transaction
func NewTransactions(transactions []recibo.Transaction) []Transaction {
	result := make([]Transaction, len(transactions))
	for i, t := range transactions {
		result[i] = *NewTransaction(&t)
	}
	return result
}
