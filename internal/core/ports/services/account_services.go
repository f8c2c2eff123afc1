package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// Lookup retrieves an account by code. Fails with apperrors.ErrAccountNotFound.
	Lookup(ctx context.Context, code string) (*domain.Account, error)

	// List retrieves accounts ordered by code.
	List(ctx context.Context, activeOnly bool) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the chart of accounts
type AccountWriterSvc interface {
	// Register creates an account and records an ACCOUNT_CREATED audit entry.
	Register(ctx context.Context, req dto.RegisterAccountRequest, actor string, sourceSystem string) (*domain.Account, error)

	// Deactivate clears the active flag. Deactivating an inactive account is a no-op.
	Deactivate(ctx context.Context, code string, actor string, sourceSystem string) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
