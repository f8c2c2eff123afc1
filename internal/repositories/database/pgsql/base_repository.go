package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx.Tx the repositories use.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists the ledger in PostgreSQL.
type Store struct {
	Pool *pgxpool.Pool
}

// NewStore wraps a connection pool. Schema migrations are applied separately.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

var _ portsrepo.Store = (*Store)(nil)

// Close releases the pool.
func (s *Store) Close() error {
	if s != nil && s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

// WithinTx runs fn in a READ COMMITTED transaction. Writers serialise on the
// row locks taken by the sequence upsert and by FOR UPDATE reads.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.UnitOfWork) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// WithinReadTx runs fn in a read-only REPEATABLE READ transaction so every
// query of a report sees the same snapshot.
func (s *Store) WithinReadTx(ctx context.Context, fn portsrepo.UnitOfWork) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (s *Store) run(ctx context.Context, opts pgx.TxOptions, fn portsrepo.UnitOfWork) (err error) {
	tx, err := s.Begin(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback(context.WithoutCancel(ctx), tx)
			panic(p)
		}
		if err != nil {
			_ = s.Rollback(context.WithoutCancel(ctx), tx)
		}
	}()

	if err = fn(ctx, newTxRepositories(tx)); err != nil {
		return err
	}
	return s.Commit(ctx, tx)
}

// Begin starts a new database transaction
func (s *Store) Begin(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	tx, err := s.Pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (s *Store) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (s *Store) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
