package models

import "time"

// AuditLogEntry is a persisted audit row. Metadata holds the JSON object as written.
type AuditLogEntry struct {
	AuditID        string    `db:"audit_id"`
	EventTimestamp time.Time `db:"event_timestamp"`
	EventType      string    `db:"event_type"`
	Severity       string    `db:"severity"`
	ActorID        string    `db:"actor_id"`
	SourceSystem   string    `db:"source_system"`
	SourceIP       string    `db:"source_ip"`
	Action         string    `db:"action"`
	TransactionID  *string   `db:"transaction_id"`
	EntityType     string    `db:"entity_type"`
	EntityID       string    `db:"entity_id"`
	Description    string    `db:"description"`
	Metadata       []byte    `db:"metadata"`
	MetadataHash   string    `db:"metadata_hash"`
}
