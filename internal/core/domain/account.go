package domain

import (
	"fmt"
	"strings"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists the closed set of account types in chart order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense}

// ParseAccountType maps a boundary value onto the closed set of account types.
// Matching is case-insensitive; anything else is rejected.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(strings.ToUpper(strings.TrimSpace(s))) {
	case Asset:
		return Asset, nil
	case Liability:
		return Liability, nil
	case Equity:
		return Equity, nil
	case Revenue:
		return Revenue, nil
	case Expense:
		return Expense, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// IsDebitNormal reports whether the account grows with debits (assets and expenses).
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Account represents an entry of the chart of accounts.
type Account struct {
	AccountID       string      `json:"accountID"`       // Surrogate key (UUID)
	Code            string      `json:"code"`            // Business key, unique and immutable
	Name            string      `json:"name"`
	AccountType     AccountType `json:"accountType"`
	ParentAccountID *string     `json:"parentAccountID"` // Nullable self reference
	Level           int         `json:"level"`           // Root = 1, derived from the parent
	Description     string      `json:"description"`
	IsActive        bool        `json:"isActive"` // Soft deactivation flag
	AuditFields
}
