package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
)

const accountColumns = `account_id, code, name, account_type, parent_account_id, level, description,
	is_active, created_at, created_by, last_updated_at, last_updated_by, version`

type accountRepository struct {
	q querier
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		m                    models.Account
		isActive             int
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.ParentAccountID,
		&m.Level,
		&m.Description,
		&isActive,
		&createdAt,
		&m.CreatedBy,
		&updatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return domain.Account{}, err
	}
	m.IsActive = isActive != 0
	m.CreatedAt = fromMicros(createdAt)
	m.LastUpdatedAt = fromMicros(updatedAt)
	return mapping.ToDomainAccount(m)
}

// SaveAccount inserts a new account.
func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.AccountID,
		m.Code,
		m.Name,
		m.AccountType,
		m.ParentAccountID,
		m.Level,
		m.Description,
		boolToInt(m.IsActive),
		toMicros(m.CreatedAt),
		m.CreatedBy,
		toMicros(m.LastUpdatedAt),
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", m.Code, err)
	}
	return nil
}

// FindAccountByCode retrieves an account by its business code.
func (r *accountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = ?`, code)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	return &account, nil
}

// FindAccountsByCodes retrieves the existing accounts among codes.
func (r *accountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(codes))
	unique := make([]any, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		unique = append(unique, code)
	}
	if len(unique) == 0 {
		return result, nil
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE code IN (`+placeholders(len(unique))+`)`, unique...)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by code: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		result[account.Code] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return result, nil
}

// ListAccounts retrieves accounts ordered by code.
func (r *accountRepository) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE (? = 0 OR is_active = 1) ORDER BY code`,
		boolToInt(activeOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// DeactivateAccount clears the active flag and bumps the version.
func (r *accountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts
		 SET is_active = 0, last_updated_at = ?, last_updated_by = ?, version = version + 1
		 WHERE account_id = ?`,
		toMicros(now), userID, accountID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
