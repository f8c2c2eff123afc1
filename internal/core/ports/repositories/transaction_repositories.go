package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// TransactionReader defines read operations for transactions and their entries
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction header. Returns apperrors.ErrNotFound when absent.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByIDForUpdate is FindTransactionByID holding a row lock until the unit of work ends.
	FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindEntriesByTransactionID retrieves the entries of a transaction in entry order.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalEntry, error)

	// ListLedgerTransactions retrieves transactions in a ledger status with their
	// entries, ordered by posting date. A non-nil transactionID narrows it to one.
	ListLedgerTransactions(ctx context.Context, transactionID *string) ([]domain.Transaction, error)
}

// TransactionWriter defines the append operations of the posting path
type TransactionWriter interface {
	// NextTransactionSequence atomically advances and returns the sequence for a UTC day.
	NextTransactionSequence(ctx context.Context, day string) (int64, error)

	// SaveTransaction inserts a transaction header and all of its entries.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// MarkTransactionReversed moves a POSTED transaction to REVERSED and links the reversal.
	// Returns apperrors.ErrConflict when the transaction is not POSTED or already linked.
	MarkTransactionReversed(ctx context.Context, transactionID string, reversedBy string, userID string, now time.Time) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
