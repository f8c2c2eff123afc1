package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `transaction_id, transaction_number, transaction_date, posting_date,
	business_event_type, business_key, reference_number, description, currency_code, status,
	is_reversal, reverses, reversed_by, reversal_reason, source_system, source_ip, transaction_hash,
	created_at, created_by, last_updated_at, last_updated_by, version`

const entryColumns = `e.entry_id, e.transaction_id, e.entry_number, e.account_id, e.account_code, e.entry_type,
	e.amount, e.currency_code, e.cost_center, e.business_unit, e.project_code, e.memo, e.entry_hash, e.created_at`

// ledgerStatusFilter matches transactions whose entries count towards balances.
var ledgerStatusFilter = mapping.LedgerStatusFilter("t.status")

type PgxTransactionRepository struct {
	q querier
}

// newPgxTransactionRepository creates a repository for transactions and their entries.
func newPgxTransactionRepository(q querier) *PgxTransactionRepository {
	return &PgxTransactionRepository{q: q}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.TransactionNumber,
		&m.TransactionDate,
		&m.PostingDate,
		&m.BusinessEventType,
		&m.BusinessKey,
		&m.ReferenceNumber,
		&m.Description,
		&m.CurrencyCode,
		&m.Status,
		&m.IsReversal,
		&m.Reverses,
		&m.ReversedBy,
		&m.ReversalReason,
		&m.SourceSystem,
		&m.SourceIP,
		&m.TransactionHash,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return mapping.ToDomainTransaction(m)
}

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var m models.JournalEntry
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
		&m.CreatedAt,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	return mapping.ToDomainJournalEntry(m)
}

// NextTransactionSequence advances the day's counter. The upsert holds the
// row lock until the unit of work ends, serialising concurrent posters.
func (r *PgxTransactionRepository) NextTransactionSequence(ctx context.Context, day string) (int64, error) {
	query := `
		INSERT INTO transaction_sequences (day, last_value) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_value = transaction_sequences.last_value + 1
		RETURNING last_value;
	`
	var next int64
	if err := r.q.QueryRow(ctx, query, day).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to advance transaction sequence for %s: %w", day, err)
	}
	return next, nil
}

// SaveTransaction inserts the header and then every entry in one batch.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);`
	_, err := r.q.Exec(ctx, query,
		m.TransactionID,
		m.TransactionNumber,
		m.TransactionDate,
		m.PostingDate,
		m.BusinessEventType,
		m.BusinessKey,
		m.ReferenceNumber,
		m.Description,
		m.CurrencyCode,
		m.Status,
		m.IsReversal,
		m.Reverses,
		m.ReversedBy,
		m.ReversalReason,
		m.SourceSystem,
		m.SourceIP,
		m.TransactionHash,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, m.TransactionNumber)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionNumber, err)
	}

	entryQuery := `
		INSERT INTO journal_entries (
			entry_id, transaction_id, entry_number, account_id, account_code, entry_type,
			amount, currency_code, cost_center, business_unit, project_code, memo, entry_hash, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	for _, entry := range txn.Entries {
		e := mapping.ToModelJournalEntry(entry)
		_, err := r.q.Exec(ctx, entryQuery,
			e.EntryID,
			e.TransactionID,
			e.EntryNumber,
			e.AccountID,
			e.AccountCode,
			e.EntryType,
			e.Amount,
			e.CurrencyCode,
			e.CostCenter,
			e.BusinessUnit,
			e.ProjectCode,
			e.Memo,
			e.EntryHash,
			e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %d of transaction %s: %w", e.EntryNumber, m.TransactionNumber, err)
		}
	}
	return nil
}

func (r *PgxTransactionRepository) findTransaction(ctx context.Context, transactionID string, lock bool) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	txn, err := scanTransaction(r.q.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return &txn, nil
}

// FindTransactionByID retrieves a transaction header.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findTransaction(ctx, transactionID, false)
}

// FindTransactionByIDForUpdate retrieves a transaction header and locks its row.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findTransaction(ctx, transactionID, true)
}

// FindEntriesByTransactionID retrieves the entries of a transaction in entry order.
func (r *PgxTransactionRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries e WHERE e.transaction_id = $1 ORDER BY e.entry_number;`
	rows, err := r.q.Query(ctx, query, transactionID)
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
func (r *PgxTransactionRepository) ListLedgerTransactions(ctx context.Context, transactionID *string) ([]domain.Transaction, error) {
	var args []any
	filter := ""
	if transactionID != nil {
		args = append(args, *transactionID)
		filter = ` AND t.transaction_id = $` + strconv.Itoa(len(args))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE ` + ledgerStatusFilter + filter +
		` ORDER BY t.posting_date, t.transaction_number;`
	rows, err := r.q.Query(ctx, query, args...)
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
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	if len(txns) == 0 {
		return txns, nil
	}

	entryQuery := `SELECT ` + entryColumns + `
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE ` + ledgerStatusFilter + filter + `
		ORDER BY e.transaction_id, e.entry_number;`
	entryRows, err := r.q.Query(ctx, entryQuery, args...)
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
func (r *PgxTransactionRepository) MarkTransactionReversed(ctx context.Context, transactionID string, reversedBy string, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = 'REVERSED', reversed_by = $1, last_updated_at = $2, last_updated_by = $3, version = version + 1
		WHERE transaction_id = $4 AND status = 'POSTED' AND reversed_by IS NULL;
	`
	tag, err := r.q.Exec(ctx, query, reversedBy, now, userID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s reversed: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is not an unreversed posted transaction", apperrors.ErrConflict, transactionID)
	}
	return nil
}
