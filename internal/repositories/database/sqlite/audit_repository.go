package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
)

const auditColumns = `audit_id, event_timestamp, event_type, severity, actor_id, source_system, source_ip,
	action, transaction_id, entity_type, entity_id, description, metadata, metadata_hash`

type auditRepository struct {
	q querier
}

var _ portsrepo.AuditRepositoryFacade = (*auditRepository)(nil)

// SaveAuditEntry appends one entry.
func (r *auditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditLogEntry) error {
	m, err := mapping.ToModelAuditLogEntry(entry)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx,
		`INSERT INTO audit_log (`+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.AuditID,
		toMicros(m.EventTimestamp),
		m.EventType,
		m.Severity,
		m.ActorID,
		m.SourceSystem,
		m.SourceIP,
		m.Action,
		m.TransactionID,
		m.EntityType,
		m.EntityID,
		m.Description,
		string(m.Metadata),
		m.MetadataHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: audit entry %s", apperrors.ErrDuplicate, m.AuditID)
		}
		return fmt.Errorf("failed to append audit entry %s: %w", m.EventType, err)
	}
	return nil
}

// ListAuditEntries retrieves entries newest first.
func (r *auditRepository) ListAuditEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.From != nil {
		conditions = append(conditions, "event_timestamp >= ?")
		args = append(args, toMicros(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "event_timestamp <= ?")
		args = append(args, toMicros(*filter.To))
	}
	if filter.EventType != "" {
		conditions = append(conditions, "event_type = ?")
		args = append(args, filter.EventType)
	}
	if filter.ActorID != "" {
		conditions = append(conditions, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.CursorTimestamp != nil {
		ts := toMicros(*filter.CursorTimestamp)
		conditions = append(conditions, "(event_timestamp < ? OR (event_timestamp = ? AND audit_id < ?))")
		args = append(args, ts, ts, filter.CursorAuditID)
	}

	query := `SELECT ` + auditColumns + ` FROM audit_log`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY event_timestamp DESC, audit_id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditLogEntry{}
	for rows.Next() {
		var (
			m         models.AuditLogEntry
			timestamp int64
			metadata  string
		)
		err := rows.Scan(
			&m.AuditID,
			&timestamp,
			&m.EventType,
			&m.Severity,
			&m.ActorID,
			&m.SourceSystem,
			&m.SourceIP,
			&m.Action,
			&m.TransactionID,
			&m.EntityType,
			&m.EntityID,
			&m.Description,
			&metadata,
			&m.MetadataHash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		m.EventTimestamp = fromMicros(timestamp)
		m.Metadata = []byte(metadata)
		entry, err := mapping.ToDomainAuditLogEntry(m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}
	return entries, nil
}
