package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// PgxLedgerRepository aggregates ledger entries for balances and reports
type PgxLedgerRepository struct {
	q querier
}

// newPgxLedgerRepository creates a new ledger reader
func newPgxLedgerRepository(q querier) *PgxLedgerRepository {
	return &PgxLedgerRepository{q: q}
}

var _ portsrepo.LedgerReader = (*PgxLedgerRepository)(nil)

// SumAccountEntries totals an account's ledger entries in [from, to].
func (r *PgxLedgerRepository) SumAccountEntries(ctx context.Context, accountID string, from *time.Time, to time.Time) (domain.EntryTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN e.entry_type = 'DEBIT' THEN e.amount ELSE 0 END), 0) AS total_debit,
			COALESCE(SUM(CASE WHEN e.entry_type = 'CREDIT' THEN e.amount ELSE 0 END), 0) AS total_credit
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $1
			AND ` + ledgerStatusFilter + `
			AND t.posting_date <= $2`
	args := []any{accountID, to}
	if from != nil {
		args = append(args, *from)
		query += ` AND t.posting_date >= $3`
	}

	var totals domain.EntryTotals
	if err := r.q.QueryRow(ctx, query, args...).Scan(&totals.Debits, &totals.Credits); err != nil {
		return domain.EntryTotals{}, fmt.Errorf("error summing entries of account %s: %w", accountID, err)
	}
	return totals, nil
}

// ListGeneralLedgerLines retrieves ledger lines posted in [from, to].
func (r *PgxLedgerRepository) ListGeneralLedgerLines(ctx context.Context, from *time.Time, to time.Time, accountCode *string) ([]domain.GeneralLedgerLine, error) {
	query := `
		SELECT
			t.transaction_id, t.transaction_number, t.transaction_date, t.posting_date, t.description,
			e.account_code, a.name, e.entry_number, e.entry_type, e.amount, e.memo
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		JOIN accounts a ON a.account_id = e.account_id
		WHERE ` + ledgerStatusFilter + `
			AND t.posting_date <= $1`
	args := []any{to}
	if from != nil {
		args = append(args, *from)
		query += ` AND t.posting_date >= $` + strconv.Itoa(len(args))
	}
	if accountCode != nil {
		args = append(args, *accountCode)
		query += ` AND e.account_code = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY t.posting_date, t.transaction_number, e.entry_number`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying general ledger lines: %w", err)
	}
	defer rows.Close()

	lines := []domain.GeneralLedgerLine{}
	for rows.Next() {
		var (
			line      domain.GeneralLedgerLine
			entryType string
			amount    decimal.Decimal
		)
		if err := rows.Scan(
			&line.TransactionID,
			&line.TransactionNumber,
			&line.TransactionDate,
			&line.PostingDate,
			&line.Description,
			&line.AccountCode,
			&line.AccountName,
			&line.EntryNumber,
			&entryType,
			&amount,
			&line.Memo,
		); err != nil {
			return nil, fmt.Errorf("error scanning general ledger line: %w", err)
		}
		line.TransactionDate = clock.Normalize(line.TransactionDate)
		line.PostingDate = clock.Normalize(line.PostingDate)
		line.EntryType = domain.EntryType(entryType)
		line.Amount = amount
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating general ledger lines: %w", err)
	}
	return lines, nil
}
