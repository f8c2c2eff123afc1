package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
)

const transactionColumns = `transaction_id, transaction_number, transaction_date, posting_date,
	business_event_type, business_key, reference_number, description, currency_code, status,
	is_reversal, reverses, reversed_by, reversal_reason, source_system, source_ip, transaction_hash,
	created_at, created_by, last_updated_at, last_updated_by, version`

const entryColumns = `entry_id, transaction_id, entry_number, account_id, account_code, entry_type,
	amount, currency_code, cost_center, business_unit, project_code, memo, entry_hash, created_at`

// ledgerStatusFilter matches transactions whose entries count towards balances.
var ledgerStatusFilter = mapping.LedgerStatusFilter("status")

type transactionRepository struct {
	q querier
}

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepository)(nil)

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		m                                     models.Transaction
		isReversal                            int
		txnDate, postingDate, created, update int64
	)
	err := row.Scan(
		&m.TransactionID,
		&m.TransactionNumber,
		&txnDate,
		&postingDate,
		&m.BusinessEventType,
		&m.BusinessKey,
		&m.ReferenceNumber,
		&m.Description,
		&m.CurrencyCode,
		&m.Status,
		&isReversal,
		&m.Reverses,
		&m.ReversedBy,
		&m.ReversalReason,
		&m.SourceSystem,
		&m.SourceIP,
		&m.TransactionHash,
		&created,
		&m.CreatedBy,
		&update,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	m.IsReversal = isReversal != 0
	m.TransactionDate = fromMicros(txnDate)
	m.PostingDate = fromMicros(postingDate)
	m.CreatedAt = fromMicros(created)
	m.LastUpdatedAt = fromMicros(update)
	return mapping.ToDomainTransaction(m)
}

func scanEntry(row rowScanner) (domain.JournalEntry, error) {
	var (
		m       models.JournalEntry
		created int64
	)
	err := row.Scan(
		&m.EntryID,
		&m.TransactionID,
		&m.EntryNumber,
		&m.AccountID,
		&m.AccountCode,
		&m.EntryType,
		&m.Amount,
		&m.CurrencyCode,
		&m.CostCenter,
		&m.BusinessUnit,
		&m.ProjectCode,
		&m.Memo,
		&m.EntryHash,
		&created,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	m.CreatedAt = fromMicros(created)
	return mapping.ToDomainJournalEntry(m)
}

// NextTransactionSequence advances the day's counter. The connection holds the
// write lock from BEGIN IMMEDIATE, so concurrent posters queue behind it.
func (r *transactionRepository) NextTransactionSequence(ctx context.Context, day string) (int64, error) {
	var next int64
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO transaction_sequences (day, last_value) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET last_value = transaction_sequences.last_value + 1
		 RETURNING last_value`, day).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to advance transaction sequence for %s: %w", day, err)
	}
	return next, nil
}

// SaveTransaction inserts the header and then every entry.
func (r *transactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.TransactionID,
		m.TransactionNumber,
		toMicros(m.TransactionDate),
		toMicros(m.PostingDate),
		m.BusinessEventType,
		m.BusinessKey,
		m.ReferenceNumber,
		m.Description,
		m.CurrencyCode,
		m.Status,
		boolToInt(m.IsReversal),
		m.Reverses,
		m.ReversedBy,
		m.ReversalReason,
		m.SourceSystem,
		m.SourceIP,
		m.TransactionHash,
		toMicros(m.CreatedAt),
		m.CreatedBy,
		toMicros(m.LastUpdatedAt),
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, m.TransactionNumber)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionNumber, err)
	}

	for _, entry := range txn.Entries {
		e := mapping.ToModelJournalEntry(entry)
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO journal_entries (`+entryColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.EntryID,
			e.TransactionID,
			e.EntryNumber,
			e.AccountID,
			e.AccountCode,
			e.EntryType,
			e.Amount.StringFixed(domain.AmountScale),
			e.CurrencyCode,
			e.CostCenter,
			e.BusinessUnit,
			e.ProjectCode,
			e.Memo,
			e.EntryHash,
			toMicros(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %d of transaction %s: %w", e.EntryNumber, m.TransactionNumber, err)
		}
	}
	return nil
}

// FindTransactionByID retrieves a transaction header.
func (r *transactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = ?`, transactionID)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return &txn, nil
}

// FindTransactionByIDForUpdate relies on the unit of work already holding the
// database write lock; SQLite has no row locks.
func (r *transactionRepository) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.FindTransactionByID(ctx, transactionID)
}

// FindEntriesByTransactionID retrieves the entries of a transaction in entry order.
func (r *transactionRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalEntry, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE transaction_id = ? ORDER BY entry_number`,
		transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// ListLedgerTransactions retrieves ledger transactions with their entries.
func (r *transactionRepository) ListLedgerTransactions(ctx context.Context, transactionID *string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + ledgerStatusFilter
	var args []any
	if transactionID != nil {
		query += ` AND transaction_id = ?`
		args = append(args, *transactionID)
	}
	query += ` ORDER BY posting_date, transaction_number`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger transactions: %w", err)
	}
	txns := []domain.Transaction{}
	index := map[string]int{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		index[txn.TransactionID] = len(txns)
		txns = append(txns, txn)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	if len(txns) == 0 {
		return txns, nil
	}

	entryQuery := `SELECT ` + prefixed("e", entryColumns) + `
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE t.` + ledgerStatusFilter
	if transactionID != nil {
		entryQuery += ` AND t.transaction_id = ?`
	}
	entryQuery += ` ORDER BY e.transaction_id, e.entry_number`

	entryRows, err := r.q.QueryContext(ctx, entryQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer entryRows.Close()
	for entryRows.Next() {
		entry, err := scanEntry(entryRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if i, ok := index[entry.TransactionID]; ok {
			txns[i].Entries = append(txns[i].Entries, entry)
		}
	}
	if err := entryRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return txns, nil
}

// MarkTransactionReversed moves a POSTED transaction to REVERSED exactly once.
func (r *transactionRepository) MarkTransactionReversed(ctx context.Context, transactionID string, reversedBy string, userID string, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE transactions
		 SET status = 'REVERSED', reversed_by = ?, last_updated_at = ?, last_updated_by = ?, version = version + 1
		 WHERE transaction_id = ? AND status = 'POSTED' AND reversed_by IS NULL`,
		reversedBy, toMicros(now), userID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s reversed: %w", transactionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s reversed: %w", transactionID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %s is not an unreversed posted transaction", apperrors.ErrConflict, transactionID)
	}
	return nil
}
