package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceSvc derives balances from persisted entries and audits the ledger
type BalanceSvc interface {
	// BalanceOf returns the account's normal-side balance at asOf, or now when nil.
	BalanceOf(ctx context.Context, code string, asOf *time.Time) (decimal.Decimal, error)

	// VerifyIntegrity recomputes totals and hashes of ledger transactions,
	// all of them or only the given one.
	VerifyIntegrity(ctx context.Context, transactionID *string) (*domain.IntegrityResult, error)

	// TrialBalance lists every active account's balance ordered by code.
	TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error)
}
