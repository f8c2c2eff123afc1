package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// ReportingSvc builds signed financial statements
type ReportingSvc interface {
	TrialBalance(ctx context.Context, params dto.TrialBalanceParams, actor string, sourceSystem string) (*domain.TrialBalanceReport, error)
	BalanceSheet(ctx context.Context, params dto.BalanceSheetParams, actor string, sourceSystem string) (*domain.BalanceSheetReport, error)
	IncomeStatement(ctx context.Context, params dto.PeriodParams, actor string, sourceSystem string) (*domain.IncomeStatementReport, error)
	GeneralLedger(ctx context.Context, params dto.GeneralLedgerParams, actor string, sourceSystem string) (*domain.GeneralLedgerReport, error)
	AuditTrail(ctx context.Context, params dto.AuditTrailParams, actor string, sourceSystem string) (*domain.AuditTrailReport, error)

	// Verify recomputes a report's content hash and compares it with the stored one.
	Verify(report domain.SignedReport) (bool, error)

	// VerifyDocument is Verify for a report received as JSON.
	VerifyDocument(doc []byte) (bool, error)
}
