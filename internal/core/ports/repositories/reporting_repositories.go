package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// LedgerReader defines aggregate reads over entries of transactions in a ledger status.
type LedgerReader interface {
	// SumAccountEntries totals an account's entries whose transaction posting
	// date lies in [from, to]. A nil from means since the beginning.
	SumAccountEntries(ctx context.Context, accountID string, from *time.Time, to time.Time) (domain.EntryTotals, error)

	// ListGeneralLedgerLines retrieves ledger lines posted in [from, to] ordered
	// by posting date, transaction number and entry number.
	ListGeneralLedgerLines(ctx context.Context, from *time.Time, to time.Time, accountCode *string) ([]domain.GeneralLedgerLine, error)
}
