package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// PostingSvc validates and commits balanced transactions
type PostingSvc interface {
	// Post commits the transaction, its entries and a TRANSACTION_POSTED audit
	// entry atomically. Rejected postings leave a TRANSACTION_FAILED audit entry.
	Post(ctx context.Context, input domain.TransactionInput, actor string, sourceSystem string) (*domain.Transaction, error)

	// GetTransaction retrieves a transaction with its entries.
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// RecordRejected writes a best-effort TRANSACTION_FAILED audit entry for a
	// posting request refused before it could be read, e.g. a malformed body.
	RecordRejected(ctx context.Context, actor string, sourceSystem string, cause error)
}

// ReversalSvc offsets posted transactions with compensating ones
type ReversalSvc interface {
	// Reverse posts the flipped entry set of a POSTED transaction and marks the
	// original REVERSED in the same unit of work.
	Reverse(ctx context.Context, transactionID string, reason string, actor string, sourceSystem string) (*domain.Transaction, error)
}
