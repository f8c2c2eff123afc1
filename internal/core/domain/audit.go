package domain

import (
	"fmt"
	"strings"
	"time"
)

// Severity classifies audit log entries.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// ParseSeverity rejects any severity outside the closed set.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityInfo:
		return SeverityInfo, nil
	case SeverityWarning:
		return SeverityWarning, nil
	case SeverityError:
		return SeverityError, nil
	case SeverityCritical:
		return SeverityCritical, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Audit event types written by the engine.
const (
	EventAccountCreated            = "ACCOUNT_CREATED"
	EventAccountDeactivated        = "ACCOUNT_DEACTIVATED"
	EventTransactionPosted         = "TRANSACTION_POSTED"
	EventTransactionFailed         = "TRANSACTION_FAILED"
	EventTransactionReversed       = "TRANSACTION_REVERSED"
	EventTransactionReversalFailed = "TRANSACTION_REVERSAL_FAILED"
	EventReportGenerated           = "REPORT_GENERATED"
)

// Audit actions.
const (
	ActionCreateAccount      = "CREATE_ACCOUNT"
	ActionDeactivateAccount  = "DEACTIVATE_ACCOUNT"
	ActionPostTransaction    = "POST_TRANSACTION"
	ActionReverseTransaction = "REVERSE_TRANSACTION"
	ActionGenerateReport     = "GENERATE_REPORT"
)

// Entity types referenced by audit entries.
const (
	EntityTypeAccount     = "ACCOUNT"
	EntityTypeTransaction = "TRANSACTION"
	EntityTypeReport      = "REPORT"
)

// AuditLogEntry is an append-only record of a state change or a failed operation.
type AuditLogEntry struct {
	AuditID        string         `json:"auditID"`
	EventTimestamp time.Time      `json:"eventTimestamp"`
	EventType      string         `json:"eventType"`
	Severity       Severity       `json:"severity"`
	ActorID        string         `json:"actorID"`
	SourceSystem   string         `json:"sourceSystem"`
	SourceIP       string         `json:"sourceIP,omitempty"`
	Action         string         `json:"action"`
	TransactionID  *string        `json:"transactionID,omitempty"`
	EntityType     string         `json:"entityType,omitempty"`
	EntityID       string         `json:"entityID,omitempty"`
	Description    string         `json:"description"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	MetadataHash   string         `json:"metadataHash,omitempty"`
}

// AuditFilter narrows audit log queries. Zero values mean "no constraint".
type AuditFilter struct {
	From      *time.Time
	To        *time.Time
	EventType string
	ActorID   string
	// Cursor, when set, returns entries strictly older than (Timestamp, AuditID).
	CursorTimestamp *time.Time
	CursorAuditID   string
	Limit           int
}
