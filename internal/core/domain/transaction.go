package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransactionStatus indicates the lifecycle state of a transaction.
type TransactionStatus string

const (
	Pending   TransactionStatus = "PENDING"
	Posted    TransactionStatus = "POSTED"
	Reversed  TransactionStatus = "REVERSED"
	Cancelled TransactionStatus = "CANCELLED"
)

// ParseTransactionStatus rejects any status outside the closed set.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case Pending:
		return Pending, nil
	case Posted:
		return Posted, nil
	case Reversed:
		return Reversed, nil
	case Cancelled:
		return Cancelled, nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// LedgerStatuses are the statuses whose entries count towards balances.
// A reversed transaction stays in the ledger; its reversal offsets it.
var LedgerStatuses = []TransactionStatus{Posted, Reversed}

const (
	sequenceDayLayout = "20060102"
	// MaxDailySequence is the largest sequence a six digit transaction number can carry.
	MaxDailySequence = 999999
)

// MaxBusinessEventTypeLength bounds a caller supplied business event type.
// Stored event types may be longer by len(ReversalEventPrefix).
const MaxBusinessEventTypeLength = 100

// ReversalEventPrefix marks the business event type of a compensating transaction.
const ReversalEventPrefix = "REVERSAL_"

// ReversalEventType names the compensating transaction of eventType. The
// prefix is never stacked, so reversing a reversal keeps the same type and
// the length stays within MaxBusinessEventTypeLength+len(ReversalEventPrefix).
func ReversalEventType(eventType string) string {
	return ReversalEventPrefix + strings.TrimPrefix(eventType, ReversalEventPrefix)
}

// SequenceDay returns the UTC calendar day key used for transaction numbering.
func SequenceDay(t time.Time) string {
	return t.UTC().Format(sequenceDayLayout)
}

// FormatTransactionNumber renders the human readable YYYYMMDD-NNNNNN number.
func FormatTransactionNumber(day string, seq int64) string {
	return fmt.Sprintf("%s-%06d", day, seq)
}

// Transaction is the immutable header of a balanced set of journal entries.
type Transaction struct {
	TransactionID     string            `json:"transactionID"`
	TransactionNumber string            `json:"transactionNumber"`
	TransactionDate   time.Time         `json:"transactionDate"` // Business date, caller supplied
	PostingDate       time.Time         `json:"postingDate"`     // Commit instant, UTC
	BusinessEventType string            `json:"businessEventType"`
	BusinessKey       *string           `json:"businessKey,omitempty"`
	ReferenceNumber   *string           `json:"referenceNumber,omitempty"`
	Description       string            `json:"description"`
	CurrencyCode      string            `json:"currencyCode"`
	Status            TransactionStatus `json:"status"`

	IsReversal     bool    `json:"isReversal"`
	Reverses       *string `json:"reverses,omitempty"`
	ReversedBy     *string `json:"reversedBy,omitempty"`
	ReversalReason *string `json:"reversalReason,omitempty"`

	SourceSystem    string `json:"sourceSystem"`
	SourceIP        string `json:"sourceIP,omitempty"`
	TransactionHash string `json:"transactionHash"`

	Entries []JournalEntry `json:"entries,omitempty"`
	AuditFields
}

// TransactionInput is a request to post a new transaction.
type TransactionInput struct {
	BusinessEventType string       `json:"businessEventType" validate:"required,max=100"`
	Description       string       `json:"description" validate:"required"`
	TransactionDate   time.Time    `json:"transactionDate" validate:"required"`
	BusinessKey       *string      `json:"businessKey,omitempty" validate:"omitempty,max=200"`
	ReferenceNumber   *string      `json:"referenceNumber,omitempty" validate:"omitempty,max=100"`
	Entries           []EntryInput `json:"entries" validate:"dive"`
}
