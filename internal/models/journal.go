package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is one persisted debit or credit line.
type JournalEntry struct {
	EntryID       string          `db:"entry_id"`
	TransactionID string          `db:"transaction_id"`
	EntryNumber   int             `db:"entry_number"`
	AccountID     string          `db:"account_id"`
	AccountCode   string          `db:"account_code"`
	EntryType     string          `db:"entry_type"`
	Amount        decimal.Decimal `db:"amount"`
	CurrencyCode  string          `db:"currency_code"`
	CostCenter    *string         `db:"cost_center"`
	BusinessUnit  *string         `db:"business_unit"`
	ProjectCode   *string         `db:"project_code"`
	Memo          *string         `db:"memo"`
	EntryHash     string          `db:"entry_hash"`
	CreatedAt     time.Time       `db:"created_at"`
}
