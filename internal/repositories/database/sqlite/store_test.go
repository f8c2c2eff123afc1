package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").
		WithArgs(now.UnixMicro(), "alice", "acc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
		return repos.Accounts().DeactivateAccount(ctx, "acc-1", "alice", now)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = store.WithinTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
			panic("kaboom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_BeginFailureIsInternal(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	called := false
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_CommitFailureIsInternal(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
		return nil
	})

	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.ErrorContains(t, err, "disk I/O error")
}

func TestWithinReadTx_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE code").
		WithArgs("1000").
		WillReturnError(errors.New("no such table: accounts"))
	mock.ExpectRollback()

	err := store.WithinReadTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
		_, err := repos.Accounts().FindAccountByCode(ctx, "1000")
		return err
	})

	assert.ErrorContains(t, err, "no such table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAccountByCode_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE code").
		WithArgs("9999").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}))
	mock.ExpectRollback()

	err := store.WithinReadTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
		_, err := repos.Accounts().FindAccountByCode(ctx, "9999")
		return err
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkTransactionReversed_NoRowsIsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions").
		WithArgs("rev-1", now.UnixMicro(), "alice", "txn-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
		return repos.Transactions().MarkTransactionReversed(ctx, "txn-1", "rev-1", "alice", now)
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextTransactionSequence_ReturnsUpsertedValue(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transaction_sequences").
		WithArgs("20250314").
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(int64(7)))
	mock.ExpectCommit()

	var seq int64
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		seq, err = repos.Transactions().NextTransactionSequence(ctx, "20250314")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}

func TestFindAccountsByCodes_EmptyInputSkipsQuery(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := store.WithinReadTx(context.Background(), func(ctx context.Context, repos portsrepo.Repositories) error {
		accounts, err := repos.Accounts().FindAccountsByCodes(ctx, nil)
		assert.Empty(t, accounts)
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "e.a, e.b, e.c", prefixed("e", "a,\n\tb, c"))
	assert.Equal(t, "?,?,?", placeholders(3))
	assert.Equal(t, "", placeholders(0))
}
