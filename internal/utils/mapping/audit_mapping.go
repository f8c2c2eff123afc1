package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelAuditLogEntry converts a domain AuditLogEntry to a model AuditLogEntry.
// Metadata is stored as a JSON object; an entry without metadata stores "{}".
func ToModelAuditLogEntry(d domain.AuditLogEntry) (models.AuditLogEntry, error) {
	metadata := []byte("{}")
	if len(d.Metadata) > 0 {
		raw, err := json.Marshal(d.Metadata)
		if err != nil {
			return models.AuditLogEntry{}, fmt.Errorf("encode audit metadata: %w", err)
		}
		metadata = raw
	}
	return models.AuditLogEntry{
		AuditID:        d.AuditID,
		EventTimestamp: d.EventTimestamp,
		EventType:      d.EventType,
		Severity:       string(d.Severity),
		ActorID:        d.ActorID,
		SourceSystem:   d.SourceSystem,
		SourceIP:       d.SourceIP,
		Action:         d.Action,
		TransactionID:  d.TransactionID,
		EntityType:     d.EntityType,
		EntityID:       d.EntityID,
		Description:    d.Description,
		Metadata:       metadata,
		MetadataHash:   d.MetadataHash,
	}, nil
}

// ToDomainAuditLogEntry converts a model AuditLogEntry to a domain AuditLogEntry.
// Numbers in metadata decode as json.Number so the metadata hash stays reproducible.
func ToDomainAuditLogEntry(m models.AuditLogEntry) (domain.AuditLogEntry, error) {
	severity, err := domain.ParseSeverity(m.Severity)
	if err != nil {
		return domain.AuditLogEntry{}, fmt.Errorf("audit entry %s: %w", m.AuditID, err)
	}
	d := domain.AuditLogEntry{
		AuditID:        m.AuditID,
		EventTimestamp: clock.Normalize(m.EventTimestamp),
		EventType:      m.EventType,
		Severity:       severity,
		ActorID:        m.ActorID,
		SourceSystem:   m.SourceSystem,
		SourceIP:       m.SourceIP,
		Action:         m.Action,
		TransactionID:  m.TransactionID,
		EntityType:     m.EntityType,
		EntityID:       m.EntityID,
		Description:    m.Description,
		MetadataHash:   m.MetadataHash,
	}
	if len(m.Metadata) > 0 {
		dec := json.NewDecoder(bytes.NewReader(m.Metadata))
		dec.UseNumber()
		var metadata map[string]any
		if err := dec.Decode(&metadata); err != nil {
			return d, fmt.Errorf("decode metadata of audit entry %s: %w", m.AuditID, err)
		}
		if len(metadata) > 0 {
			d.Metadata = metadata
		}
	}
	return d, nil
}
