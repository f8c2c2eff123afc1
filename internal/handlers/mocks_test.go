package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Lookup(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) List(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) Register(ctx context.Context, req dto.RegisterAccountRequest, actor string, sourceSystem string) (*domain.Account, error) {
	args := m.Called(ctx, req, actor, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) Deactivate(ctx context.Context, code string, actor string, sourceSystem string) (*domain.Account, error) {
	args := m.Called(ctx, code, actor, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) BalanceOf(ctx context.Context, code string, asOf *time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, code, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBalanceService) VerifyIntegrity(ctx context.Context, transactionID *string) (*domain.IntegrityResult, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrityResult), args.Error(1)
}

func (m *MockBalanceService) TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

var _ portssvc.BalanceSvc = (*MockBalanceService)(nil)

type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) Post(ctx context.Context, input domain.TransactionInput, actor string, sourceSystem string) (*domain.Transaction, error) {
	args := m.Called(ctx, input, actor, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockPostingService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockPostingService) RecordRejected(ctx context.Context, actor string, sourceSystem string, cause error) {
	m.Called(ctx, actor, sourceSystem, cause)
}

var _ portssvc.PostingSvc = (*MockPostingService)(nil)

type MockReversalService struct {
	mock.Mock
}

func (m *MockReversalService) Reverse(ctx context.Context, transactionID string, reason string, actor string, sourceSystem string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, reason, actor, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var _ portssvc.ReversalSvc = (*MockReversalService)(nil)

type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) TrialBalance(ctx context.Context, params dto.TrialBalanceParams, actor string, sourceSystem string) (*domain.TrialBalanceReport, error) {
	args := m.Called(ctx, params, actor, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalanceReport), args.Error(1)
}

func (m *MockReportingService) BalanceSheet(ctx context.Context, params dto.BalanceSheetParams, actor string, sourceSystem string) (*domain.BalanceSheetReport, error) {
	args := m.Called(ctx, params, actor, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheetReport), args.Error(1)
}

func (m *MockReportingService) IncomeStatement(ctx context.Context, params dto.PeriodParams, actor string, sourceSystem string) (*domain.IncomeStatementReport, error) {
	args := m.Called(ctx, params, actor, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeStatementReport), args.Error(1)
}

func (m *MockReportingService) GeneralLedger(ctx context.Context, params dto.GeneralLedgerParams, actor string, sourceSystem string) (*domain.GeneralLedgerReport, error) {
	args := m.Called(ctx, params, actor, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneralLedgerReport), args.Error(1)
}

func (m *MockReportingService) AuditTrail(ctx context.Context, params dto.AuditTrailParams, actor string, sourceSystem string) (*domain.AuditTrailReport, error) {
	args := m.Called(ctx, params, actor, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditTrailReport), args.Error(1)
}

func (m *MockReportingService) Verify(report domain.SignedReport) (bool, error) {
	args := m.Called(report)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportingService) VerifyDocument(doc []byte) (bool, error) {
	args := m.Called(doc)
	return args.Bool(0), args.Error(1)
}

var _ portssvc.ReportingSvc = (*MockReportingService)(nil)

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, entry domain.AuditLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditService) ListAuditLog(ctx context.Context, params dto.ListAuditLogParams) (*dto.ListAuditLogResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListAuditLogResponse), args.Error(1)
}

var _ portssvc.AuditSvc = (*MockAuditService)(nil)
