package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/auditcontext"
	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/hashing"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/google/uuid"
)

type auditService struct {
	BaseService
	store portsrepo.TransactionManager
}

// NewAuditService creates the append-only audit log service.
func NewAuditService(store portsrepo.TransactionManager, clk clock.Clock) portssvc.AuditSvc {
	return &auditService{BaseService: newBaseService(clk), store: store}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

// appendAudit completes an entry with its id, timestamp, source IP and
// metadata hash, then writes it through the unit of work's audit repository.
func appendAudit(ctx context.Context, repos portsrepo.Repositories, now time.Time, entry domain.AuditLogEntry) (domain.AuditLogEntry, error) {
	if entry.AuditID == "" {
		entry.AuditID = uuid.NewString()
	}
	if entry.EventTimestamp.IsZero() {
		entry.EventTimestamp = now
	}
	if entry.Severity == "" {
		entry.Severity = domain.SeverityInfo
	}
	if entry.SourceIP == "" {
		entry.SourceIP = auditcontext.IPAddressFromContext(ctx)
	}
	if len(entry.Metadata) > 0 {
		digest, err := hashing.Digest(entry.Metadata)
		if err != nil {
			return entry, fmt.Errorf("hash audit metadata: %w", err)
		}
		entry.MetadataHash = digest
	}
	if err := repos.Audit().SaveAuditEntry(ctx, entry); err != nil {
		return entry, fmt.Errorf("append audit entry %s: %w", entry.EventType, err)
	}
	return entry, nil
}

// Record appends an entry in its own unit of work.
func (s *auditService) Record(ctx context.Context, entry domain.AuditLogEntry) error {
	if err := requireAttribution(entry.ActorID, entry.SourceSystem); err != nil {
		return err
	}
	if entry.EventType == "" || entry.Action == "" {
		return fmt.Errorf("%w: audit event type and action are required", apperrors.ErrValidation)
	}
	if entry.Severity != "" {
		severity, err := domain.ParseSeverity(string(entry.Severity))
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		entry.Severity = severity
	}
	return s.store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		_, err := appendAudit(ctx, repos, s.Clock.Now(), entry)
		return err
	})
}

// recordBestEffort appends an entry in a separate unit of work, logging
// instead of returning a failure so the caller's original error survives.
func recordBestEffort(ctx context.Context, base *BaseService, store portsrepo.TransactionManager, entry domain.AuditLogEntry) {
	err := store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		_, err := appendAudit(ctx, repos, base.Clock.Now(), entry)
		return err
	})
	if err != nil {
		base.LogError(ctx, err, "Failed to write failure audit entry",
			slog.String("event_type", entry.EventType),
			slog.String("actor_id", entry.ActorID))
	}
}

// ListAuditLog pages through the log newest first.
func (s *auditService) ListAuditLog(ctx context.Context, params dto.ListAuditLogParams) (*dto.ListAuditLogResponse, error) {
	limit := pagination.ClampLimit(params.Limit)
	filter := domain.AuditFilter{
		EventType: params.EventType,
		ActorID:   params.ActorID,
		Limit:     limit + 1,
	}
	if params.NextToken != "" {
		ts, id, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: invalid page token", apperrors.ErrValidation)
		}
		filter.CursorTimestamp = &ts
		filter.CursorAuditID = id
	}

	var entries []domain.AuditLogEntry
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		entries, err = repos.Audit().ListAuditEntries(ctx, filter)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit log")
		return nil, err
	}

	resp := &dto.ListAuditLogResponse{Entries: entries}
	if len(entries) > limit {
		resp.Entries = entries[:limit]
		last := resp.Entries[limit-1]
		token := pagination.EncodeToken(last.EventTimestamp, last.AuditID)
		resp.NextToken = &token
	}
	if resp.Entries == nil {
		resp.Entries = []domain.AuditLogEntry{}
	}
	return resp, nil
}
