package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// AuditReader defines read operations for the audit log
type AuditReader interface {
	// ListAuditEntries retrieves entries newest first, ties broken by id descending.
	ListAuditEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error)
}

// AuditWriter appends to the audit log. There is no update or delete.
type AuditWriter interface {
	SaveAuditEntry(ctx context.Context, entry domain.AuditLogEntry) error
}

// AuditRepositoryFacade combines all audit-related repository interfaces
type AuditRepositoryFacade interface {
	AuditReader
	AuditWriter
}
