package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/sqlite"
)

// Backend names a supported store.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// Options controls how OpenStore prepares the store.
type Options struct {
	// RunMigrations applies the embedded schema migrations before returning.
	RunMigrations bool
	Logger        *slog.Logger
}

// ParseURI maps a connection URI onto a backend and the DSN its driver expects.
//
//	postgres://… and postgresql://…  PostgreSQL, passed through unchanged
//	sqlite://path, sqlite:path       SQLite database file at path
//	file:…                           SQLite URI filename, passed through unchanged
func ParseURI(uri string) (Backend, string, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return "", "", fmt.Errorf("database URI cannot be empty")
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return BackendPostgres, uri, nil
	case strings.HasPrefix(uri, "sqlite://"):
		return sqlitePath(strings.TrimPrefix(uri, "sqlite://"))
	case strings.HasPrefix(uri, "sqlite:"):
		return sqlitePath(strings.TrimPrefix(uri, "sqlite:"))
	case strings.HasPrefix(uri, "file:"):
		return BackendSQLite, uri, nil
	}
	return "", "", fmt.Errorf("unsupported database URI scheme in %q", redact(uri))
}

func sqlitePath(path string) (Backend, string, error) {
	if strings.TrimSpace(path) == "" {
		return "", "", fmt.Errorf("sqlite URI has no database path")
	}
	return BackendSQLite, path, nil
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[:i+3] + "…"
	}
	return "…"
}

// OpenStore connects to the store named by uri and optionally migrates it.
func OpenStore(ctx context.Context, uri string, opts Options) (portsrepo.Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backend, dsn, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendPostgres:
		if opts.RunMigrations {
			logger.Info("Running database migrations...", slog.String("backend", string(backend)))
			if err := MigratePostgres(dsn, logger); err != nil {
				return nil, err
			}
		}
		pool, err := NewPgxPool(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		return pgsql.NewStore(pool), nil

	default:
		db, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		if opts.RunMigrations {
			logger.Info("Running database migrations...", slog.String("backend", string(backend)))
			if err := MigrateSQLite(db, logger); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		logger.Info("Opened SQLite database.", slog.String("path", dsn))
		return sqlite.NewStore(db), nil
	}
}
