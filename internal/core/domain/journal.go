package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether a journal entry is a Debit or a Credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// ParseEntryType maps a boundary value onto Debit or Credit.
func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(strings.ToUpper(strings.TrimSpace(s))) {
	case Debit:
		return Debit, nil
	case Credit:
		return Credit, nil
	}
	return "", fmt.Errorf("unknown entry type %q", s)
}

// Flip returns the opposite side of the entry.
func (t EntryType) Flip() EntryType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// AmountScale is the number of fractional digits an amount may carry.
const AmountScale = 2

// JournalEntry is one debit or credit line of a transaction.
type JournalEntry struct {
	EntryID       string          `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	EntryNumber   int             `json:"entryNumber"` // 1-based within the transaction
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"` // Frozen at posting time
	EntryType     EntryType       `json:"entryType"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
	CostCenter    *string         `json:"costCenter,omitempty"`
	BusinessUnit  *string         `json:"businessUnit,omitempty"`
	ProjectCode   *string         `json:"projectCode,omitempty"`
	Memo          *string         `json:"memo,omitempty"`
	EntryHash     string          `json:"entryHash"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// EntryInput is a caller supplied journal line. Amount is a decimal string and
// is never routed through a binary float.
type EntryInput struct {
	AccountCode  string  `json:"accountCode" validate:"required,max=50"`
	EntryType    string  `json:"entryType" validate:"required"`
	Amount       string  `json:"amount" validate:"required"`
	CostCenter   *string `json:"costCenter,omitempty" validate:"omitempty,max=50"`
	BusinessUnit *string `json:"businessUnit,omitempty" validate:"omitempty,max=50"`
	ProjectCode  *string `json:"projectCode,omitempty" validate:"omitempty,max=50"`
	Memo         *string `json:"memo,omitempty"`
}
