package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/google/uuid"
)

// MaxAccountLevel is the deepest level the chart of accounts may reach.
const MaxAccountLevel = 99

// accountService maintains the chart of accounts.
type accountService struct {
	BaseService
	store portsrepo.TransactionManager
}

// NewAccountService creates a new account registry service.
func NewAccountService(store portsrepo.TransactionManager, clk clock.Clock) portssvc.AccountSvcFacade {
	return &accountService{BaseService: newBaseService(clk), store: store}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// Register creates an account under an optional active parent.
func (s *accountService) Register(ctx context.Context, req dto.RegisterAccountRequest, actor string, sourceSystem string) (acc *domain.Account, err error) {
	ctx, span := s.StartSpan(ctx, "AccountService.Register")
	defer func() { s.EndSpan(span, err) }()

	if err := requireAttribution(actor, sourceSystem); err != nil {
		return nil, err
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	accountType, err := domain.ParseAccountType(req.AccountType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidAccountType, err)
	}

	now := s.Clock.Now()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		AccountType: accountType,
		Level:       1,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
			Version:       1,
		},
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		existing, err := repos.Accounts().FindAccountByCode(ctx, account.Code)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s already exists", apperrors.ErrDuplicateAccount, account.Code)
		}

		parentCode := ""
		if req.ParentCode != nil && strings.TrimSpace(*req.ParentCode) != "" {
			parentCode = strings.TrimSpace(*req.ParentCode)
			parent, err := repos.Accounts().FindAccountByCode(ctx, parentCode)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return fmt.Errorf("%w: %s", apperrors.ErrParentNotFound, parentCode)
				}
				return err
			}
			if !parent.IsActive {
				return fmt.Errorf("%w: %s", apperrors.ErrParentInactive, parentCode)
			}
			if parent.Level >= MaxAccountLevel {
				return fmt.Errorf("%w: parent %s is already at level %d", apperrors.ErrValidation, parentCode, parent.Level)
			}
			account.ParentAccountID = &parent.AccountID
			account.Level = parent.Level + 1
		}

		if err := repos.Accounts().SaveAccount(ctx, account); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return fmt.Errorf("%w: %s already exists", apperrors.ErrDuplicateAccount, account.Code)
			}
			return err
		}

		_, err = appendAudit(ctx, repos, now, domain.AuditLogEntry{
			EventType:    domain.EventAccountCreated,
			Severity:     domain.SeverityInfo,
			ActorID:      actor,
			SourceSystem: sourceSystem,
			Action:       domain.ActionCreateAccount,
			EntityType:   domain.EntityTypeAccount,
			EntityID:     account.AccountID,
			Description:  fmt.Sprintf("Account %s created", account.Code),
			Metadata: map[string]any{
				"account_code": account.Code,
				"account_name": account.Name,
				"account_type": string(account.AccountType),
				"parent_code":  parentCode,
				"level":        account.Level,
				"description":  account.Description,
			},
		})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to register account", slog.String("account_code", req.Code))
		return nil, err
	}

	s.LogInfo(ctx, "Account registered",
		slog.String("account_id", account.AccountID),
		slog.String("account_code", account.Code))
	return &account, nil
}

// Lookup retrieves an account by code.
func (s *accountService) Lookup(ctx context.Context, code string) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		account, err = findAccount(ctx, repos, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// List retrieves accounts ordered by code.
func (s *accountService) List(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	var accounts []domain.Account
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		accounts, err = repos.Accounts().ListAccounts(ctx, activeOnly)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

// Deactivate clears the active flag. Historical entries keep referencing the account.
func (s *accountService) Deactivate(ctx context.Context, code string, actor string, sourceSystem string) (acc *domain.Account, err error) {
	ctx, span := s.StartSpan(ctx, "AccountService.Deactivate")
	defer func() { s.EndSpan(span, err) }()

	if err := requireAttribution(actor, sourceSystem); err != nil {
		return nil, err
	}

	var account *domain.Account
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		account, err = findAccount(ctx, repos, code)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return nil
		}

		now := s.Clock.Now()
		if err := repos.Accounts().DeactivateAccount(ctx, account.AccountID, actor, now); err != nil {
			return err
		}
		account.IsActive = false
		account.LastUpdatedAt = now
		account.LastUpdatedBy = actor
		account.Version++

		_, err = appendAudit(ctx, repos, now, domain.AuditLogEntry{
			EventType:    domain.EventAccountDeactivated,
			Severity:     domain.SeverityWarning,
			ActorID:      actor,
			SourceSystem: sourceSystem,
			Action:       domain.ActionDeactivateAccount,
			EntityType:   domain.EntityTypeAccount,
			EntityID:     account.AccountID,
			Description:  fmt.Sprintf("Account %s deactivated", account.Code),
			Metadata: map[string]any{
				"account_code": account.Code,
				"version":      account.Version,
			},
		})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_code", code))
		return nil, err
	}
	return account, nil
}

// findAccount maps a missing code onto ErrAccountNotFound.
func findAccount(ctx context.Context, repos portsrepo.Repositories, code string) (*domain.Account, error) {
	account, err := repos.Accounts().FindAccountByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
		}
		return nil, err
	}
	return account, nil
}
