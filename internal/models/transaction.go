package models

import "time"

// Transaction is the persisted transaction header.
type Transaction struct {
	TransactionID     string    `db:"transaction_id"`
	TransactionNumber string    `db:"transaction_number"`
	TransactionDate   time.Time `db:"transaction_date"`
	PostingDate       time.Time `db:"posting_date"`
	BusinessEventType string    `db:"business_event_type"`
	BusinessKey       *string   `db:"business_key"`
	ReferenceNumber   *string   `db:"reference_number"`
	Description       string    `db:"description"`
	CurrencyCode      string    `db:"currency_code"`
	Status            string    `db:"status"`
	IsReversal        bool      `db:"is_reversal"`
	Reverses          *string   `db:"reverses"`
	ReversedBy        *string   `db:"reversed_by"`
	ReversalReason    *string   `db:"reversal_reason"`
	SourceSystem      string    `db:"source_system"`
	SourceIP          string    `db:"source_ip"`
	TransactionHash   string    `db:"transaction_hash"`
	AuditFields
}
