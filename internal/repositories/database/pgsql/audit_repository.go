package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
)

const auditColumns = `audit_id, event_timestamp, event_type, severity, actor_id, source_system, source_ip,
	action, transaction_id, entity_type, entity_id, description, metadata, metadata_hash`

// PgxAuditRepository appends to and reads the audit log
type PgxAuditRepository struct {
	q querier
}

func newPgxAuditRepository(q querier) *PgxAuditRepository {
	return &PgxAuditRepository{q: q}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// SaveAuditEntry appends one entry.
func (r *PgxAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditLogEntry) error {
	m, err := mapping.ToModelAuditLogEntry(entry)
	if err != nil {
		return err
	}
	query := `INSERT INTO audit_log (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`
	_, err = r.q.Exec(ctx, query,
		m.AuditID,
		m.EventTimestamp,
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
		m.Metadata,
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
func (r *PgxAuditRepository) ListAuditEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	var (
		conditions []string
		args       []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		conditions = append(conditions, "event_timestamp >= "+next(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "event_timestamp <= "+next(*filter.To))
	}
	if filter.EventType != "" {
		conditions = append(conditions, "event_type = "+next(filter.EventType))
	}
	if filter.ActorID != "" {
		conditions = append(conditions, "actor_id = "+next(filter.ActorID))
	}
	if filter.CursorTimestamp != nil {
		ts := next(*filter.CursorTimestamp)
		id := next(filter.CursorAuditID)
		conditions = append(conditions, "(event_timestamp, audit_id) < ("+ts+", "+id+"::uuid)")
	}

	query := `SELECT ` + auditColumns + ` FROM audit_log`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY event_timestamp DESC, audit_id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + next(filter.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditLogEntry{}
	for rows.Next() {
		var m models.AuditLogEntry
		if err := rows.Scan(
			&m.AuditID,
			&m.EventTimestamp,
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
			&m.Metadata,
			&m.MetadataHash,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
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
