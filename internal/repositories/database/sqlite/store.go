// Package sqlite provides the SQLite-backed ledger store used for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// dsnOptions enables foreign keys, waits on a locked database and starts every
// transaction as a writer so the sequence upsert never upgrades a read lock.
const dsnOptions = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

// querier is the subset of *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists the ledger in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the database at path with a single connection. Every unit of work
// therefore runs serially, which is the only writer model SQLite supports.
func Open(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open(DriverName, path+sep+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ portsrepo.Store = (*Store)(nil)

// DB exposes the handle for migrations and maintenance.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WithinTx runs fn in a read-write transaction.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.UnitOfWork) error {
	return s.run(ctx, fn)
}

// WithinReadTx runs fn in a transaction. The single connection already
// isolates it from concurrent writers.
func (s *Store) WithinReadTx(ctx context.Context, fn portsrepo.UnitOfWork) error {
	return s.run(ctx, fn)
}

func (s *Store) run(ctx context.Context, fn portsrepo.UnitOfWork) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			// Rollback after a failed commit reports sql.ErrTxDone; the
			// original error is what the caller needs.
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, newTxRepositories(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// txRepositories binds every repository to one *sql.Tx.
type txRepositories struct {
	accounts     *accountRepository
	transactions *transactionRepository
	ledger       *ledgerRepository
	audit        *auditRepository
}

func newTxRepositories(q querier) *txRepositories {
	return &txRepositories{
		accounts:     &accountRepository{q: q},
		transactions: &transactionRepository{q: q},
		ledger:       &ledgerRepository{q: q},
		audit:        &auditRepository{q: q},
	}
}

func (r *txRepositories) Accounts() portsrepo.AccountRepositoryFacade         { return r.accounts }
func (r *txRepositories) Transactions() portsrepo.TransactionRepositoryFacade { return r.transactions }
func (r *txRepositories) Ledger() portsrepo.LedgerReader                      { return r.ledger }
func (r *txRepositories) Audit() portsrepo.AuditRepositoryFacade              { return r.audit }

func toMicros(value time.Time) int64 {
	return value.UTC().UnixMicro()
}

func fromMicros(value int64) time.Time {
	return time.UnixMicro(value).UTC()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// placeholders renders n comma separated bind markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// prefixed qualifies every column of a column list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, col := range parts {
		parts[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(parts, ", ")
}
