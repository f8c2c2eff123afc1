package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// AuditSvc appends to and pages through the audit log
type AuditSvc interface {
	// Record appends an entry in its own unit of work.
	Record(ctx context.Context, entry domain.AuditLogEntry) error

	// ListAuditLog pages through the log newest first.
	ListAuditLog(ctx context.Context, params dto.ListAuditLogParams) (*dto.ListAuditLogResponse, error)
}
