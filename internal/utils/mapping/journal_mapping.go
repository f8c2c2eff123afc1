package mapping

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelTransaction converts a domain Transaction header to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:     d.TransactionID,
		TransactionNumber: d.TransactionNumber,
		TransactionDate:   d.TransactionDate,
		PostingDate:       d.PostingDate,
		BusinessEventType: d.BusinessEventType,
		BusinessKey:       d.BusinessKey,
		ReferenceNumber:   d.ReferenceNumber,
		Description:       d.Description,
		CurrencyCode:      d.CurrencyCode,
		Status:            string(d.Status),
		IsReversal:        d.IsReversal,
		Reverses:          d.Reverses,
		ReversedBy:        d.ReversedBy,
		ReversalReason:    d.ReversalReason,
		SourceSystem:      d.SourceSystem,
		SourceIP:          d.SourceIP,
		TransactionHash:   d.TransactionHash,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction without entries
func ToDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	status, err := domain.ParseTransactionStatus(m.Status)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", m.TransactionID, err)
	}
	return domain.Transaction{
		TransactionID:     m.TransactionID,
		TransactionNumber: m.TransactionNumber,
		TransactionDate:   clock.Normalize(m.TransactionDate),
		PostingDate:       clock.Normalize(m.PostingDate),
		BusinessEventType: m.BusinessEventType,
		BusinessKey:       m.BusinessKey,
		ReferenceNumber:   m.ReferenceNumber,
		Description:       m.Description,
		CurrencyCode:      m.CurrencyCode,
		Status:            status,
		IsReversal:        m.IsReversal,
		Reverses:          m.Reverses,
		ReversedBy:        m.ReversedBy,
		ReversalReason:    m.ReversalReason,
		SourceSystem:      m.SourceSystem,
		SourceIP:          m.SourceIP,
		TransactionHash:   m.TransactionHash,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}, nil
}

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:       d.EntryID,
		TransactionID: d.TransactionID,
		EntryNumber:   d.EntryNumber,
		AccountID:     d.AccountID,
		AccountCode:   d.AccountCode,
		EntryType:     string(d.EntryType),
		Amount:        d.Amount,
		CurrencyCode:  d.CurrencyCode,
		CostCenter:    d.CostCenter,
		BusinessUnit:  d.BusinessUnit,
		ProjectCode:   d.ProjectCode,
		Memo:          d.Memo,
		EntryHash:     d.EntryHash,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) (domain.JournalEntry, error) {
	entryType, err := domain.ParseEntryType(m.EntryType)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("journal entry %s: %w", m.EntryID, err)
	}
	return domain.JournalEntry{
		EntryID:       m.EntryID,
		TransactionID: m.TransactionID,
		EntryNumber:   m.EntryNumber,
		AccountID:     m.AccountID,
		AccountCode:   m.AccountCode,
		EntryType:     entryType,
		Amount:        m.Amount,
		CurrencyCode:  m.CurrencyCode,
		CostCenter:    m.CostCenter,
		BusinessUnit:  m.BusinessUnit,
		ProjectCode:   m.ProjectCode,
		Memo:          m.Memo,
		EntryHash:     m.EntryHash,
		CreatedAt:     clock.Normalize(m.CreatedAt),
	}, nil
}
