package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	pgmigrations "github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql/migrations"
	sqlitemigrations "github.com/SscSPs/ledger_engine/internal/repositories/database/sqlite/migrations"
	migrate "github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// MigratePostgres applies the embedded PostgreSQL migrations through a
// temporary database/sql connection.
func MigratePostgres(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database connection for migrations: %w", err)
	}
	if err := migrationDB.Ping(); err != nil {
		_ = migrationDB.Close()
		return fmt.Errorf("ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		_ = migrationDB.Close()
		return fmt.Errorf("create postgres migration driver: %w", err)
	}
	m, err := newMigrate(pgmigrations.FS, "postgres", driver)
	if err != nil {
		_ = migrationDB.Close()
		return err
	}

	upErr := up(m, logger)
	// Close releases both the source and the temporary connection.
	sourceErr, dbErr := m.Close()
	if upErr != nil {
		return upErr
	}
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}
	return nil
}

// MigrateSQLite applies the embedded SQLite migrations on db. The migrate
// instance is not closed because its driver would close db as well.
func MigrateSQLite(db *sql.DB, logger *slog.Logger) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}
	m, err := newMigrate(sqlitemigrations.FS, "sqlite", driver)
	if err != nil {
		return err
	}
	return up(m, logger)
}

func newMigrate(migrationFS fs.FS, databaseName string, driver migratedb.Driver) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, databaseName, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

func up(m *migrate.Migrate, logger *slog.Logger) error {
	err := m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply.")
		return nil
	case err != nil:
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, verr := m.Version()
	if verr == nil && dirty {
		return fmt.Errorf("database left dirty at migration version %d", version)
	}
	logger.Info("Database migrations applied successfully.", slog.Uint64("version", uint64(version)))
	return nil
}
