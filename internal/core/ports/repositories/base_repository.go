package repositories

import (
	"context"
)

// UnitOfWork is the body of a store transaction. The Repositories it receives
// are bound to that transaction and must not escape the closure.
type UnitOfWork func(ctx context.Context, repos Repositories) error

// TransactionManager scopes repository work to a single store transaction.
// The transaction commits when fn returns nil and rolls back on any error or
// panic, so it is released on every exit path.
type TransactionManager interface {
	// WithinTx runs fn in a read-write transaction.
	WithinTx(ctx context.Context, fn UnitOfWork) error

	// WithinReadTx runs fn in a read-only transaction giving a consistent snapshot.
	WithinReadTx(ctx context.Context, fn UnitOfWork) error
}
