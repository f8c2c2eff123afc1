package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/hashing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const reportDateLayout = "2006-01-02"

// balanceTolerance is the only rounding tolerance in the system and applies
// to the balance sheet sanity check, never to posting.
var balanceTolerance = decimal.New(1, -2)

// reportingService implements the ReportingSvc interface
type reportingService struct {
	BaseService
	store portsrepo.TransactionManager
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock overrides the clock used for report timestamps and defaults.
func WithReportingClock(clk clock.Clock) ReportingServiceOption {
	return func(s *reportingService) {
		if clk != nil {
			s.Clock = clk
		}
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(store portsrepo.TransactionManager, options ...ReportingServiceOption) portssvc.ReportingSvc {
	svc := &reportingService{
		BaseService: newBaseService(nil),
		store:       store,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingSvc = (*reportingService)(nil)

// generate runs build and signs its report in one unit of work, writing the
// REPORT_GENERATED audit entry alongside.
func (s *reportingService) generate(ctx context.Context, reportType domain.ReportType, actor, sourceSystem string, parameters map[string]any, build func(ctx context.Context, repos portsrepo.Repositories, env domain.ReportEnvelope) (domain.SignedReport, error)) (report domain.SignedReport, err error) {
	ctx, span := s.StartSpan(ctx, "ReportingService."+string(reportType))
	defer func() { s.EndSpan(span, err) }()

	if err := requireAttribution(actor, sourceSystem); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	env := domain.ReportEnvelope{
		ReportID:    uuid.NewString(),
		ReportType:  reportType,
		GeneratedAt: now,
		GeneratedBy: actor,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		report, err = build(ctx, repos, env)
		if err != nil {
			return err
		}
		digest, err := hashing.DigestExcluding(report, domain.ReportHashField)
		if err != nil {
			return fmt.Errorf("sign report: %w", err)
		}
		envelope := report.Envelope()
		envelope.ReportHash = digest

		_, err = appendAudit(ctx, repos, now, domain.AuditLogEntry{
			EventType:    domain.EventReportGenerated,
			Severity:     domain.SeverityInfo,
			ActorID:      actor,
			SourceSystem: sourceSystem,
			Action:       domain.ActionGenerateReport,
			EntityType:   domain.EntityTypeReport,
			EntityID:     envelope.ReportID,
			Description:  fmt.Sprintf("Report %s generated: %s", reportType, envelope.ReportName),
			Metadata: map[string]any{
				"report_id":   envelope.ReportID,
				"report_type": string(reportType),
				"report_name": envelope.ReportName,
				"report_hash": digest,
				"parameters":  parameters,
			},
		})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to generate report", slog.String("report_type", string(reportType)))
		return nil, err
	}
	s.LogInfo(ctx, "Report generated",
		slog.String("report_type", string(reportType)),
		slog.String("report_id", env.ReportID))
	return report, nil
}

// TrialBalance lists active account balances, optionally hiding zero balances.
func (s *reportingService) TrialBalance(ctx context.Context, params dto.TrialBalanceParams, actor string, sourceSystem string) (*domain.TrialBalanceReport, error) {
	asOf := s.resolveTo(params.AsOf)
	report, err := s.generate(ctx, domain.ReportTrialBalance, actor, sourceSystem,
		map[string]any{"as_of": asOf, "include_zero": params.IncludeZero},
		func(ctx context.Context, repos portsrepo.Repositories, env domain.ReportEnvelope) (domain.SignedReport, error) {
			rows, err := trialBalanceRows(ctx, repos, asOf)
			if err != nil {
				return nil, err
			}
			env.ReportName = "Trial Balance as of " + asOf.Format(reportDateLayout)
			report := &domain.TrialBalanceReport{
				ReportEnvelope: env,
				AsOf:           asOf,
				Accounts:       make([]domain.TrialBalanceRow, 0, len(rows)),
				TotalsByType:   make(map[domain.AccountType]decimal.Decimal, len(domain.AccountTypes)),
			}
			for _, t := range domain.AccountTypes {
				report.TotalsByType[t] = decimal.Zero
			}
			for _, row := range rows {
				if !params.IncludeZero && row.Balance.IsZero() {
					continue
				}
				report.Accounts = append(report.Accounts, row)
				report.TotalsByType[row.AccountType] = report.TotalsByType[row.AccountType].Add(row.Balance)
			}
			report.AccountCount = len(report.Accounts)
			return report, nil
		})
	if err != nil {
		return nil, err
	}
	return report.(*domain.TrialBalanceReport), nil
}

// BalanceSheet groups asset, liability and equity balances and checks that
// assets equal liabilities plus equity plus current earnings within 0.01.
func (s *reportingService) BalanceSheet(ctx context.Context, params dto.BalanceSheetParams, actor string, sourceSystem string) (*domain.BalanceSheetReport, error) {
	asOf := s.resolveTo(params.AsOf)
	report, err := s.generate(ctx, domain.ReportBalanceSheet, actor, sourceSystem,
		map[string]any{"as_of": asOf},
		func(ctx context.Context, repos portsrepo.Repositories, env domain.ReportEnvelope) (domain.SignedReport, error) {
			rows, err := trialBalanceRows(ctx, repos, asOf)
			if err != nil {
				return nil, err
			}
			env.ReportName = "Balance Sheet as of " + asOf.Format(reportDateLayout)
			report := &domain.BalanceSheetReport{
				ReportEnvelope:   env,
				AsOf:             asOf,
				Assets:           []domain.AccountAmount{},
				Liabilities:      []domain.AccountAmount{},
				Equity:           []domain.AccountAmount{},
				TotalAssets:      decimal.Zero,
				TotalLiabilities: decimal.Zero,
				TotalEquity:      decimal.Zero,
				CurrentEarnings:  decimal.Zero,
			}
			for _, row := range rows {
				line := domain.AccountAmount{Code: row.Code, Name: row.Name, Amount: row.Balance}
				switch row.AccountType {
				case domain.Asset:
					if !row.Balance.IsZero() {
						report.Assets = append(report.Assets, line)
					}
					report.TotalAssets = report.TotalAssets.Add(row.Balance)
				case domain.Liability:
					if !row.Balance.IsZero() {
						report.Liabilities = append(report.Liabilities, line)
					}
					report.TotalLiabilities = report.TotalLiabilities.Add(row.Balance)
				case domain.Equity:
					if !row.Balance.IsZero() {
						report.Equity = append(report.Equity, line)
					}
					report.TotalEquity = report.TotalEquity.Add(row.Balance)
				case domain.Revenue:
					report.CurrentEarnings = report.CurrentEarnings.Add(row.Balance)
				case domain.Expense:
					report.CurrentEarnings = report.CurrentEarnings.Sub(row.Balance)
				}
			}
			claims := report.TotalLiabilities.Add(report.TotalEquity).Add(report.CurrentEarnings)
			report.Balanced = report.TotalAssets.Sub(claims).Abs().LessThan(balanceTolerance)
			return report, nil
		})
	if err != nil {
		return nil, err
	}
	return report.(*domain.BalanceSheetReport), nil
}

// IncomeStatement nets revenue and expense activity posted inside the period.
func (s *reportingService) IncomeStatement(ctx context.Context, params dto.PeriodParams, actor string, sourceSystem string) (*domain.IncomeStatementReport, error) {
	from, to, err := s.resolvePeriod(params)
	if err != nil {
		return nil, err
	}
	report, err := s.generate(ctx, domain.ReportIncomeStatement, actor, sourceSystem,
		map[string]any{"from": from, "to": to},
		func(ctx context.Context, repos portsrepo.Repositories, env domain.ReportEnvelope) (domain.SignedReport, error) {
			accounts, err := repos.Accounts().ListAccounts(ctx, true)
			if err != nil {
				return nil, err
			}
			env.ReportName = fmt.Sprintf("Income Statement %s to %s", periodStart(from), to.Format(reportDateLayout))
			report := &domain.IncomeStatementReport{
				ReportEnvelope: env,
				From:           from,
				To:             to,
				Revenues:       []domain.AccountAmount{},
				Expenses:       []domain.AccountAmount{},
				TotalRevenue:   decimal.Zero,
				TotalExpenses:  decimal.Zero,
			}
			for _, account := range accounts {
				if account.AccountType != domain.Revenue && account.AccountType != domain.Expense {
					continue
				}
				amount, err := accountBalance(ctx, repos, account, from, to)
				if err != nil {
					return nil, err
				}
				if amount.IsZero() {
					continue
				}
				line := domain.AccountAmount{Code: account.Code, Name: account.Name, Amount: amount}
				if account.AccountType == domain.Revenue {
					report.Revenues = append(report.Revenues, line)
					report.TotalRevenue = report.TotalRevenue.Add(amount)
				} else {
					report.Expenses = append(report.Expenses, line)
					report.TotalExpenses = report.TotalExpenses.Add(amount)
				}
			}
			report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)
			return report, nil
		})
	if err != nil {
		return nil, err
	}
	return report.(*domain.IncomeStatementReport), nil
}

// GeneralLedger extracts every ledger line posted inside the period.
func (s *reportingService) GeneralLedger(ctx context.Context, params dto.GeneralLedgerParams, actor string, sourceSystem string) (*domain.GeneralLedgerReport, error) {
	from, to, err := s.resolvePeriod(params.PeriodParams)
	if err != nil {
		return nil, err
	}
	report, err := s.generate(ctx, domain.ReportGeneralLedger, actor, sourceSystem,
		map[string]any{"from": from, "to": to, "account_code": params.AccountCode},
		func(ctx context.Context, repos portsrepo.Repositories, env domain.ReportEnvelope) (domain.SignedReport, error) {
			if params.AccountCode != nil {
				if _, err := findAccount(ctx, repos, *params.AccountCode); err != nil {
					return nil, err
				}
			}
			lines, err := repos.Ledger().ListGeneralLedgerLines(ctx, from, to, params.AccountCode)
			if err != nil {
				return nil, err
			}
			if lines == nil {
				lines = []domain.GeneralLedgerLine{}
			}
			env.ReportName = fmt.Sprintf("General Ledger %s to %s", periodStart(from), to.Format(reportDateLayout))
			report := &domain.GeneralLedgerReport{
				ReportEnvelope: env,
				From:           from,
				To:             to,
				AccountFilter:  params.AccountCode,
				Entries:        lines,
				EntryCount:     len(lines),
				TotalDebits:    decimal.Zero,
				TotalCredits:   decimal.Zero,
			}
			for _, line := range lines {
				if line.EntryType == domain.Debit {
					report.TotalDebits = report.TotalDebits.Add(line.Amount)
				} else {
					report.TotalCredits = report.TotalCredits.Add(line.Amount)
				}
			}
			return report, nil
		})
	if err != nil {
		return nil, err
	}
	return report.(*domain.GeneralLedgerReport), nil
}

// AuditTrail extracts audit entries recorded inside the period, newest first.
func (s *reportingService) AuditTrail(ctx context.Context, params dto.AuditTrailParams, actor string, sourceSystem string) (*domain.AuditTrailReport, error) {
	from, to, err := s.resolvePeriod(params.PeriodParams)
	if err != nil {
		return nil, err
	}
	report, err := s.generate(ctx, domain.ReportAuditTrail, actor, sourceSystem,
		map[string]any{"from": from, "to": to, "event_type": params.EventType, "actor_id": params.ActorID},
		func(ctx context.Context, repos portsrepo.Repositories, env domain.ReportEnvelope) (domain.SignedReport, error) {
			filter := domain.AuditFilter{From: from, To: &to, Limit: params.Limit}
			if params.EventType != nil {
				filter.EventType = *params.EventType
			}
			if params.ActorID != nil {
				filter.ActorID = *params.ActorID
			}
			entries, err := repos.Audit().ListAuditEntries(ctx, filter)
			if err != nil {
				return nil, err
			}
			if entries == nil {
				entries = []domain.AuditLogEntry{}
			}
			env.ReportName = fmt.Sprintf("Audit Trail %s to %s", periodStart(from), to.Format(reportDateLayout))
			return &domain.AuditTrailReport{
				ReportEnvelope:  env,
				From:            from,
				To:              to,
				EventTypeFilter: params.EventType,
				ActorFilter:     params.ActorID,
				Entries:         entries,
				EntryCount:      len(entries),
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return report.(*domain.AuditTrailReport), nil
}

// Verify recomputes the report's content hash and compares it with the stored one.
func (s *reportingService) Verify(report domain.SignedReport) (bool, error) {
	if report == nil || report.Envelope().ReportHash == "" {
		return false, nil
	}
	digest, err := hashing.DigestExcluding(report, domain.ReportHashField)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return digest == report.Envelope().ReportHash, nil
}

// VerifyDocument verifies a report received as a JSON object. A signed
// document must name one of the known report types.
func (s *reportingService) VerifyDocument(doc []byte) (bool, error) {
	var envelope struct {
		ReportType string `json:"reportType"`
		ReportHash string `json:"reportHash"`
	}
	dec := json.NewDecoder(bytes.NewReader(doc))
	if err := dec.Decode(&envelope); err != nil {
		return false, fmt.Errorf("%w: report is not a JSON object: %v", apperrors.ErrValidation, err)
	}
	if envelope.ReportHash == "" {
		return false, nil
	}
	if _, err := domain.ParseReportType(envelope.ReportType); err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	digest, err := hashing.DigestDocumentExcluding(doc, domain.ReportHashField)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return digest == envelope.ReportHash, nil
}

func (s *reportingService) resolveTo(to *time.Time) time.Time {
	if to == nil || to.IsZero() {
		return s.Clock.Now()
	}
	return clock.Normalize(*to)
}

func (s *reportingService) resolvePeriod(params dto.PeriodParams) (*time.Time, time.Time, error) {
	to := s.resolveTo(params.To)
	if params.From == nil || params.From.IsZero() {
		return nil, to, nil
	}
	from := clock.Normalize(*params.From)
	if from.After(to) {
		return nil, time.Time{}, fmt.Errorf("%w: period start %s is after end %s",
			apperrors.ErrValidation, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return &from, to, nil
}

func periodStart(from *time.Time) string {
	if from == nil {
		return "inception"
	}
	return from.Format(reportDateLayout)
}
