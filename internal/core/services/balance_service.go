package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/hashing"
	"github.com/shopspring/decimal"
)

// balanceService recomputes every balance from persisted entries. It keeps no
// cache and takes no locks; each call reads one consistent snapshot.
type balanceService struct {
	BaseService
	store portsrepo.TransactionManager
}

// NewBalanceService creates the balance and integrity calculator.
func NewBalanceService(store portsrepo.TransactionManager, clk clock.Clock) portssvc.BalanceSvc {
	return &balanceService{BaseService: newBaseService(clk), store: store}
}

var _ portssvc.BalanceSvc = (*balanceService)(nil)

func (s *balanceService) resolveAsOf(asOf *time.Time) time.Time {
	if asOf == nil || asOf.IsZero() {
		return s.Clock.Now()
	}
	return clock.Normalize(*asOf)
}

// BalanceOf returns the account's normal-side balance including every entry
// posted up to and including asOf.
func (s *balanceService) BalanceOf(ctx context.Context, code string, asOf *time.Time) (decimal.Decimal, error) {
	at := s.resolveAsOf(asOf)
	var balance decimal.Decimal
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		account, err := findAccount(ctx, repos, code)
		if err != nil {
			return err
		}
		balance, err = accountBalance(ctx, repos, *account, nil, at)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// TrialBalance lists the balance of every active account ordered by code.
func (s *balanceService) TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	at := s.resolveAsOf(asOf)
	var rows []domain.TrialBalanceRow
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		rows, err = trialBalanceRows(ctx, repos, at)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to compute trial balance")
		return nil, err
	}
	return rows, nil
}

// VerifyIntegrity recomputes the debit and credit totals and the content
// hashes of ledger transactions and reports every mismatch.
func (s *balanceService) VerifyIntegrity(ctx context.Context, transactionID *string) (*domain.IntegrityResult, error) {
	ctx, span := s.StartSpan(ctx, "BalanceService.VerifyIntegrity")
	var err error
	defer func() { s.EndSpan(span, err) }()

	result := &domain.IntegrityResult{Valid: true, Violations: []string{}}
	err = s.store.WithinReadTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		if transactionID != nil {
			if _, err := findTransaction(ctx, repos, *transactionID, false); err != nil {
				return err
			}
		}
		txns, err := repos.Transactions().ListLedgerTransactions(ctx, transactionID)
		if err != nil {
			return err
		}
		for _, txn := range txns {
			result.Checked++
			result.Violations = append(result.Violations, transactionViolations(txn)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Valid = len(result.Violations) == 0
	if !result.Valid {
		s.GetLogger(ctx).Warn("Ledger integrity violations found",
			slog.Int("checked", result.Checked),
			slog.Int("violations", len(result.Violations)))
	}
	return result, nil
}

func transactionViolations(txn domain.Transaction) []string {
	var violations []string
	if len(txn.Entries) == 0 {
		violations = append(violations, fmt.Sprintf("Transaction %s (%s): no entries", txn.TransactionNumber, txn.TransactionID))
	}
	totals := accounting.SumEntries(txn.Entries)
	if !totals.Debits.Equal(totals.Credits) {
		violations = append(violations, fmt.Sprintf("Transaction %s (%s): debits %s != credits %s",
			txn.TransactionNumber, txn.TransactionID,
			totals.Debits.StringFixed(domain.AmountScale),
			totals.Credits.StringFixed(domain.AmountScale)))
	}
	if digest, err := hashing.TransactionHash(txn); err != nil || digest != txn.TransactionHash {
		violations = append(violations, fmt.Sprintf("Transaction %s (%s): transaction hash mismatch", txn.TransactionNumber, txn.TransactionID))
	}
	for _, e := range txn.Entries {
		if digest, err := hashing.EntryHash(e); err != nil || digest != e.EntryHash {
			violations = append(violations, fmt.Sprintf("Transaction %s (%s): entry %d hash mismatch", txn.TransactionNumber, txn.TransactionID, e.EntryNumber))
		}
	}
	return violations
}

// accountBalance sums the account's ledger entries posted in [from, to]. A nil
// from means inception.
func accountBalance(ctx context.Context, repos portsrepo.Repositories, account domain.Account, from *time.Time, to time.Time) (decimal.Decimal, error) {
	totals, err := repos.Ledger().SumAccountEntries(ctx, account.AccountID, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum entries of account %s: %w", account.Code, err)
	}
	return accounting.NormalBalance(account.AccountType, totals), nil
}

func trialBalanceRows(ctx context.Context, repos portsrepo.Repositories, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	accounts, err := repos.Accounts().ListAccounts(ctx, true)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.TrialBalanceRow, 0, len(accounts))
	for _, account := range accounts {
		balance, err := accountBalance(ctx, repos, account, nil, asOf)
		if err != nil {
			return nil, err
		}
		rows = append(rows, domain.TrialBalanceRow{
			Code:        account.Code,
			Name:        account.Name,
			AccountType: account.AccountType,
			Balance:     balance,
		})
	}
	return rows, nil
}
