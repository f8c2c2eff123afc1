package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// TrialBalanceParams parameterizes a trial balance report.
type TrialBalanceParams struct {
	AsOf        *time.Time `form:"asOf" time_format:"2006-01-02T15:04:05Z07:00"`
	IncludeZero bool       `form:"includeZero"`
}

// BalanceSheetParams parameterizes a balance sheet.
type BalanceSheetParams struct {
	AsOf *time.Time `form:"asOf" time_format:"2006-01-02T15:04:05Z07:00"`
}

// PeriodParams bounds a report to the inclusive window [From, To]. A nil To
// means now; a nil From means the beginning of the ledger.
type PeriodParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// GeneralLedgerParams parameterizes a general ledger extract.
type GeneralLedgerParams struct {
	PeriodParams
	AccountCode *string `form:"accountCode"`
}

// AuditTrailParams parameterizes an audit trail extract.
type AuditTrailParams struct {
	PeriodParams
	EventType *string `form:"eventType"`
	ActorID   *string `form:"actorID"`
	Limit     int     `form:"limit"`
}

// VerifyReportResponse is the outcome of a report signature check.
type VerifyReportResponse struct {
	Valid bool `json:"valid"`
}

// TrialBalanceResponse is the lightweight, unsigned trial balance.
type TrialBalanceResponse struct {
	AsOf time.Time                `json:"asOf"`
	Rows []domain.TrialBalanceRow `json:"rows"`
}
