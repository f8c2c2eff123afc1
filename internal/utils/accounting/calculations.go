package accounting

import (
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal string exactly. Negative amounts and amounts
// with more than domain.AmountScale fractional digits are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", apperrors.ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", apperrors.ErrInvalidAmount, s)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", apperrors.ErrInvalidAmount, trimmed)
	}
	if !amount.Equal(amount.Truncate(domain.AmountScale)) {
		return decimal.Zero, fmt.Errorf("%w: %s has more than %d decimal places", apperrors.ErrInvalidAmount, trimmed, domain.AmountScale)
	}
	return amount, nil
}

// NormalBalance turns debit and credit totals into a balance following the
// account type's normal side.
func NormalBalance(accountType domain.AccountType, totals domain.EntryTotals) decimal.Decimal {
	if accountType.IsDebitNormal() {
		return totals.Debits.Sub(totals.Credits)
	}
	return totals.Credits.Sub(totals.Debits)
}

// SumEntries totals the debit and credit sides of a set of entries.
func SumEntries(entries []domain.JournalEntry) domain.EntryTotals {
	totals := domain.EntryTotals{Debits: decimal.Zero, Credits: decimal.Zero}
	for _, e := range entries {
		if e.EntryType == domain.Debit {
			totals.Debits = totals.Debits.Add(e.Amount)
		} else {
			totals.Credits = totals.Credits.Add(e.Amount)
		}
	}
	return totals
}

// ValidateBalanced requires debits to equal credits exactly, with no tolerance.
func ValidateBalanced(entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return apperrors.ErrEmptyEntrySet
	}
	totals := SumEntries(entries)
	if !totals.Debits.Equal(totals.Credits) {
		return fmt.Errorf("%w: debits %s, credits %s, difference %s",
			apperrors.ErrUnbalancedEntry,
			totals.Debits.StringFixed(domain.AmountScale),
			totals.Credits.StringFixed(domain.AmountScale),
			totals.Debits.Sub(totals.Credits).Abs().StringFixed(domain.AmountScale))
	}
	return nil
}
