package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReportType identifies the kind of a generated report.
type ReportType string

const (
	ReportTrialBalance    ReportType = "TRIAL_BALANCE"
	ReportBalanceSheet    ReportType = "BALANCE_SHEET"
	ReportIncomeStatement ReportType = "INCOME_STATEMENT"
	ReportGeneralLedger   ReportType = "GENERAL_LEDGER"
	ReportAuditTrail      ReportType = "AUDIT_TRAIL"
)

// ParseReportType rejects any report type outside the closed set.
func ParseReportType(s string) (ReportType, error) {
	switch ReportType(strings.ToUpper(strings.TrimSpace(s))) {
	case ReportTrialBalance:
		return ReportTrialBalance, nil
	case ReportBalanceSheet:
		return ReportBalanceSheet, nil
	case ReportIncomeStatement:
		return ReportIncomeStatement, nil
	case ReportGeneralLedger:
		return ReportGeneralLedger, nil
	case ReportAuditTrail:
		return ReportAuditTrail, nil
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// ReportHashField is the JSON key excluded from a report's own content hash.
const ReportHashField = "reportHash"

// ReportEnvelope carries the identity and signature shared by every report.
// It is embedded so its fields are flattened into the report's JSON object.
type ReportEnvelope struct {
	ReportID    string     `json:"reportID"`
	ReportType  ReportType `json:"reportType"`
	ReportName  string     `json:"reportName"`
	GeneratedAt time.Time  `json:"generatedAt"`
	GeneratedBy string     `json:"generatedBy"`
	ReportHash  string     `json:"reportHash"`
}

// Envelope exposes the envelope of any report embedding it.
func (e *ReportEnvelope) Envelope() *ReportEnvelope { return e }

// SignedReport is implemented by every report type through ReportEnvelope.
type SignedReport interface {
	Envelope() *ReportEnvelope
}

// TrialBalanceRow is the balance of one account at a point in time.
type TrialBalanceRow struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
}

// AccountAmount represents an account with its net amount for financial statements.
type AccountAmount struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// TrialBalanceReport lists every active account balance with totals per type.
type TrialBalanceReport struct {
	ReportEnvelope
	AsOf         time.Time                       `json:"asOf"`
	Accounts     []TrialBalanceRow               `json:"accounts"`
	TotalsByType map[AccountType]decimal.Decimal `json:"totalsByType"`
	AccountCount int                             `json:"accountCount"`
}

// BalanceSheetReport groups asset, liability and equity balances.
// CurrentEarnings is revenue minus expense to date, not yet closed into equity.
type BalanceSheetReport struct {
	ReportEnvelope
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	CurrentEarnings  decimal.Decimal `json:"currentEarnings"`
	Balanced         bool            `json:"balanced"`
}

// IncomeStatementReport covers revenue and expense activity inside a period.
type IncomeStatementReport struct {
	ReportEnvelope
	From          *time.Time      `json:"from"`
	To            time.Time       `json:"to"`
	Revenues      []AccountAmount `json:"revenues"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// GeneralLedgerLine is one journal entry joined with its transaction header.
type GeneralLedgerLine struct {
	TransactionID     string          `json:"transactionID"`
	TransactionNumber string          `json:"transactionNumber"`
	TransactionDate   time.Time       `json:"transactionDate"`
	PostingDate       time.Time       `json:"postingDate"`
	Description       string          `json:"description"`
	AccountCode       string          `json:"accountCode"`
	AccountName       string          `json:"accountName"`
	EntryNumber       int             `json:"entryNumber"`
	EntryType         EntryType       `json:"entryType"`
	Amount            decimal.Decimal `json:"amount"`
	Memo              *string         `json:"memo,omitempty"`
}

// GeneralLedgerReport extracts ledger lines posted inside a period.
type GeneralLedgerReport struct {
	ReportEnvelope
	From          *time.Time          `json:"from"`
	To            time.Time           `json:"to"`
	AccountFilter *string             `json:"accountFilter"`
	Entries       []GeneralLedgerLine `json:"entries"`
	EntryCount    int                 `json:"entryCount"`
	TotalDebits   decimal.Decimal     `json:"totalDebits"`
	TotalCredits  decimal.Decimal     `json:"totalCredits"`
}

// AuditTrailReport extracts audit log entries inside a period.
type AuditTrailReport struct {
	ReportEnvelope
	From            *time.Time      `json:"from"`
	To              time.Time       `json:"to"`
	EventTypeFilter *string         `json:"eventTypeFilter"`
	ActorFilter     *string         `json:"actorFilter"`
	Entries         []AuditLogEntry `json:"entries"`
	EntryCount      int             `json:"entryCount"`
}

// EntryTotals holds the debit and credit sums of a set of entries.
type EntryTotals struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// IntegrityResult is the outcome of a ledger self-audit.
type IntegrityResult struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
	Checked    int      `json:"checked"`
}
