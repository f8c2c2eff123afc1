package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type ledgerRepository struct {
	q querier
}

var _ portsrepo.LedgerReader = (*ledgerRepository)(nil)

// SumAccountEntries totals an account's ledger entries in [from, to]. Amounts
// are stored as text, so the sum is taken in Go with exact decimals.
func (r *ledgerRepository) SumAccountEntries(ctx context.Context, accountID string, from *time.Time, to time.Time) (domain.EntryTotals, error) {
	query := `SELECT e.entry_type, e.amount
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = ? AND t.` + ledgerStatusFilter + ` AND t.posting_date <= ?`
	args := []any{accountID, toMicros(to)}
	if from != nil {
		query += ` AND t.posting_date >= ?`
		args = append(args, toMicros(*from))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.EntryTotals{}, fmt.Errorf("failed to sum entries of account %s: %w", accountID, err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		var (
			entryType string
			amount    decimal.Decimal
		)
		if err := rows.Scan(&entryType, &amount); err != nil {
			return domain.EntryTotals{}, fmt.Errorf("failed to scan entry amount: %w", err)
		}
		entries = append(entries, domain.JournalEntry{EntryType: domain.EntryType(entryType), Amount: amount})
	}
	if err := rows.Err(); err != nil {
		return domain.EntryTotals{}, fmt.Errorf("error iterating entry amounts: %w", err)
	}
	return accounting.SumEntries(entries), nil
}

// ListGeneralLedgerLines retrieves ledger lines posted in [from, to].
func (r *ledgerRepository) ListGeneralLedgerLines(ctx context.Context, from *time.Time, to time.Time, accountCode *string) ([]domain.GeneralLedgerLine, error) {
	query := `SELECT t.transaction_id, t.transaction_number, t.transaction_date, t.posting_date, t.description,
			e.account_code, a.name, e.entry_number, e.entry_type, e.amount, e.memo
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		JOIN accounts a ON a.account_id = e.account_id
		WHERE t.` + ledgerStatusFilter + ` AND t.posting_date <= ?`
	args := []any{toMicros(to)}
	if from != nil {
		query += ` AND t.posting_date >= ?`
		args = append(args, toMicros(*from))
	}
	if accountCode != nil {
		query += ` AND e.account_code = ?`
		args = append(args, *accountCode)
	}
	query += ` ORDER BY t.posting_date, t.transaction_number, e.entry_number`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list general ledger lines: %w", err)
	}
	defer rows.Close()

	lines := []domain.GeneralLedgerLine{}
	for rows.Next() {
		var (
			line                 domain.GeneralLedgerLine
			txnDate, postingDate int64
			entryType            string
		)
		err := rows.Scan(
			&line.TransactionID,
			&line.TransactionNumber,
			&txnDate,
			&postingDate,
			&line.Description,
			&line.AccountCode,
			&line.AccountName,
			&line.EntryNumber,
			&entryType,
			&line.Amount,
			&line.Memo,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan general ledger line: %w", err)
		}
		line.TransactionDate = fromMicros(txnDate)
		line.PostingDate = fromMicros(postingDate)
		line.EntryType = domain.EntryType(entryType)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating general ledger lines: %w", err)
	}
	return lines, nil
}
