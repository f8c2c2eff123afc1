package hashing

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

type entryContent struct {
	AccountCode string `json:"account_code"`
	EntryType   string `json:"entry_type"`
	Amount      string `json:"amount"`
}

type transactionContent struct {
	TransactionID   string         `json:"transaction_id"`
	TransactionDate string         `json:"transaction_date"`
	Entries         []entryContent `json:"entries"`
}

type entryRecord struct {
	EntryID       string `json:"entry_id"`
	TransactionID string `json:"transaction_id"`
	AccountCode   string `json:"account_code"`
	EntryType     string `json:"entry_type"`
	Amount        string `json:"amount"`
}

// TransactionHash digests the transaction id, its business date and every
// entry's account code, type and amount in entry order.
func TransactionHash(txn domain.Transaction) (string, error) {
	content := transactionContent{
		TransactionID:   txn.TransactionID,
		TransactionDate: txn.TransactionDate.UTC().Format(time.RFC3339Nano),
		Entries:         make([]entryContent, 0, len(txn.Entries)),
	}
	for _, e := range txn.Entries {
		content.Entries = append(content.Entries, entryContent{
			AccountCode: e.AccountCode,
			EntryType:   string(e.EntryType),
			Amount:      e.Amount.StringFixed(domain.AmountScale),
		})
	}
	return Digest(content)
}

// EntryHash digests a single journal entry.
func EntryHash(entry domain.JournalEntry) (string, error) {
	return Digest(entryRecord{
		EntryID:       entry.EntryID,
		TransactionID: entry.TransactionID,
		AccountCode:   entry.AccountCode,
		EntryType:     string(entry.EntryType),
		Amount:        entry.Amount.StringFixed(domain.AmountScale),
	})
}
