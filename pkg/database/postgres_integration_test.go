//go:build integration

package database_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_engine/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a disposable PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestPostgresStore_LedgerLifecycle(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := database.OpenStore(ctx, dsn, database.Options{RunMigrations: true, Logger: logger})
	require.NoError(t, err)
	defer store.Close()

	// Applying the migrations twice is a no-op.
	require.NoError(t, database.MigratePostgres(dsn, logger))

	svc := services.NewServiceContainer(&config.Config{LedgerCurrency: "AOA"}, store, clock.SystemClock{})
	const actor, source = "accountant-1", "erp"

	for _, a := range []dto.RegisterAccountRequest{
		{Code: "1000", Name: "Cash", AccountType: "ASSET"},
		{Code: "4000", Name: "Sales", AccountType: "REVENUE"},
	} {
		_, err := svc.Account.Register(ctx, a, actor, source)
		require.NoError(t, err)
	}

	sale := func() domain.TransactionInput {
		return domain.TransactionInput{
			BusinessEventType: "SALE",
			Description:       "counter sale",
			TransactionDate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Entries: []domain.EntryInput{
				{AccountCode: "1000", EntryType: "DEBIT", Amount: "10.00"},
				{AccountCode: "4000", EntryType: "CREDIT", Amount: "10.00"},
			},
		}
	}

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	numbers := map[string]bool{}
	var first *domain.Transaction
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			txn, err := svc.Posting.Post(ctx, sale(), actor, source)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, numbers[txn.TransactionNumber], "duplicate transaction number %s", txn.TransactionNumber)
			numbers[txn.TransactionNumber] = true
			if first == nil {
				first = txn
			}
		}()
	}
	wg.Wait()
	require.Len(t, numbers, workers)
	require.NotNil(t, first)

	cash, err := svc.Balance.BalanceOf(ctx, "1000", nil)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("80.00")), "cash balance %s", cash)

	reversal, err := svc.Reversal.Reverse(ctx, first.TransactionID, "duplicate", actor, source)
	require.NoError(t, err)
	require.NotNil(t, reversal.Reverses)
	assert.Equal(t, first.TransactionID, *reversal.Reverses)

	_, err = svc.Reversal.Reverse(ctx, first.TransactionID, "again", actor, source)
	assert.Error(t, err, "a transaction is reversed at most once")

	cash, err = svc.Balance.BalanceOf(ctx, "1000", nil)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("70.00")), "cash balance %s", cash)

	result, err := svc.Balance.VerifyIntegrity(ctx, nil)
	require.NoError(t, err)
	assert.True(t, result.Valid, "violations: %v", result.Violations)
	assert.Equal(t, workers+1, result.Checked)

	pgStore, ok := store.(*pgsql.Store)
	require.True(t, ok)

	_, err = pgStore.Pool.Exec(ctx, `UPDATE journal_entries SET amount = 999 WHERE transaction_id = $1`, first.TransactionID)
	assert.Error(t, err, "journal entries reject updates")
	_, err = pgStore.Pool.Exec(ctx, `DELETE FROM audit_log`)
	assert.Error(t, err, "audit log rejects deletes")

	_, err = pgStore.Pool.Exec(ctx, `ALTER TABLE journal_entries DISABLE TRIGGER journal_entries_immutable`)
	require.NoError(t, err)
	_, err = pgStore.Pool.Exec(ctx, `UPDATE journal_entries SET amount = 999 WHERE transaction_id = $1 AND entry_number = 1`, first.TransactionID)
	require.NoError(t, err)

	result, err = svc.Balance.VerifyIntegrity(ctx, &first.TransactionID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	for _, v := range result.Violations {
		assert.Contains(t, v, first.TransactionNumber, fmt.Sprintf("violation %q", v))
	}
}
