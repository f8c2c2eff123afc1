package dto

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ListAuditLogParams defines query parameters for paging the audit log.
type ListAuditLogParams struct {
	EventType string `form:"eventType"`
	ActorID   string `form:"actorID"`
	Limit     int    `form:"limit"`
	NextToken string `form:"nextToken"`
}

// ListAuditLogResponse is one page of audit entries.
type ListAuditLogResponse struct {
	Entries   []domain.AuditLogEntry `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
