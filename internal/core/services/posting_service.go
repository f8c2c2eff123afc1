package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/auditcontext"
	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/hashing"
	"github.com/google/uuid"
)

// preparedPosting is a validated transaction input whose entries are parsed
// but not yet bound to accounts.
type preparedPosting struct {
	input   domain.TransactionInput
	entries []domain.JournalEntry
}

// reversalLink is set when the posting offsets an earlier transaction.
type reversalLink struct {
	reverses string
	reason   string
}

// poster holds the posting path shared by posting and reversal.
type poster struct {
	BaseService
	currency string
}

// prepare validates the input without touching the store. Fields named in
// derived were produced by the engine from stored data and skip the caller
// limits.
func (p *poster) prepare(input domain.TransactionInput, derived ...string) (*preparedPosting, error) {
	if len(input.Entries) == 0 {
		return nil, apperrors.ErrEmptyEntrySet
	}
	input.BusinessEventType = strings.TrimSpace(input.BusinessEventType)
	input.Description = strings.TrimSpace(input.Description)
	if err := p.validateStruct(input, derived...); err != nil {
		return nil, err
	}

	entries := make([]domain.JournalEntry, 0, len(input.Entries))
	for i, in := range input.Entries {
		entryType, err := domain.ParseEntryType(in.EntryType)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", apperrors.ErrInvalidEntryType, i+1, err)
		}
		amount, err := accounting.ParseAmount(in.Amount)
		if err != nil {
			return nil, fmt.Errorf("entry %d (account %s): %w", i+1, in.AccountCode, err)
		}
		entries = append(entries, domain.JournalEntry{
			EntryNumber:  i + 1,
			AccountCode:  strings.TrimSpace(in.AccountCode),
			EntryType:    entryType,
			Amount:       amount,
			CostCenter:   in.CostCenter,
			BusinessUnit: in.BusinessUnit,
			ProjectCode:  in.ProjectCode,
			Memo:         in.Memo,
		})
	}

	if err := accounting.ValidateBalanced(entries); err != nil {
		return nil, err
	}
	return &preparedPosting{input: input, entries: entries}, nil
}

// postWithin resolves accounts, numbers, hashes and persists a prepared
// posting inside the caller's unit of work.
func (p *poster) postWithin(ctx context.Context, repos portsrepo.Repositories, prepared *preparedPosting, actor, sourceSystem string, link *reversalLink) (*domain.Transaction, error) {
	codes := make([]string, 0, len(prepared.entries))
	for _, e := range prepared.entries {
		codes = append(codes, e.AccountCode)
	}
	accounts, err := repos.Accounts().FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	for _, e := range prepared.entries {
		account, ok := accounts[e.AccountCode]
		if !ok {
			return nil, fmt.Errorf("%w: %s (entry %d)", apperrors.ErrAccountNotFound, e.AccountCode, e.EntryNumber)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: %s (entry %d)", apperrors.ErrAccountInactive, e.AccountCode, e.EntryNumber)
		}
	}

	now, day, seq, err := p.nextNumber(ctx, repos)
	if err != nil {
		return nil, err
	}

	input := prepared.input
	txn := domain.Transaction{
		TransactionID:     uuid.NewString(),
		TransactionNumber: domain.FormatTransactionNumber(day, seq),
		TransactionDate:   clock.Normalize(input.TransactionDate),
		PostingDate:       now,
		BusinessEventType: input.BusinessEventType,
		BusinessKey:       input.BusinessKey,
		ReferenceNumber:   input.ReferenceNumber,
		Description:       input.Description,
		CurrencyCode:      p.currency,
		Status:            domain.Posted,
		SourceSystem:      sourceSystem,
		SourceIP:          auditcontext.IPAddressFromContext(ctx),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
			Version:       1,
		},
	}
	if link != nil {
		txn.IsReversal = true
		txn.Reverses = &link.reverses
		txn.ReversalReason = &link.reason
	}

	txn.Entries = make([]domain.JournalEntry, len(prepared.entries))
	for i, e := range prepared.entries {
		account := accounts[e.AccountCode]
		e.EntryID = uuid.NewString()
		e.TransactionID = txn.TransactionID
		e.AccountID = account.AccountID
		e.AccountCode = account.Code
		e.CurrencyCode = p.currency
		e.CreatedAt = now
		if e.EntryHash, err = hashing.EntryHash(e); err != nil {
			return nil, fmt.Errorf("hash entry %d: %w", e.EntryNumber, err)
		}
		txn.Entries[i] = e
	}
	if txn.TransactionHash, err = hashing.TransactionHash(txn); err != nil {
		return nil, fmt.Errorf("hash transaction: %w", err)
	}

	if err := repos.Transactions().SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}

	totals := accounting.SumEntries(txn.Entries)
	_, err = appendAudit(ctx, repos, now, domain.AuditLogEntry{
		EventType:     domain.EventTransactionPosted,
		Severity:      domain.SeverityInfo,
		ActorID:       actor,
		SourceSystem:  sourceSystem,
		Action:        domain.ActionPostTransaction,
		TransactionID: &txn.TransactionID,
		EntityType:    domain.EntityTypeTransaction,
		EntityID:      txn.TransactionID,
		Description:   fmt.Sprintf("Transaction %s posted", txn.TransactionNumber),
		Metadata: map[string]any{
			"transaction_number":  txn.TransactionNumber,
			"business_event_type": txn.BusinessEventType,
			"total_debits":        totals.Debits.StringFixed(domain.AmountScale),
			"total_credits":       totals.Credits.StringFixed(domain.AmountScale),
			"entry_count":         len(txn.Entries),
			"transaction_hash":    txn.TransactionHash,
		},
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// nextNumber advances the day's sequence and only then reads the posting
// instant. The sequence row stays locked until the unit of work ends, so
// postings of a day commit in posting date order. If the UTC day turned
// while waiting for the lock, the number is drawn again from the new day.
func (p *poster) nextNumber(ctx context.Context, repos portsrepo.Repositories) (time.Time, string, int64, error) {
	day := domain.SequenceDay(p.Clock.Now())
	for {
		seq, err := repos.Transactions().NextTransactionSequence(ctx, day)
		if err != nil {
			return time.Time{}, "", 0, err
		}
		now := p.Clock.Now()
		if current := domain.SequenceDay(now); current != day {
			day = current
			continue
		}
		if seq > domain.MaxDailySequence {
			return time.Time{}, "", 0, fmt.Errorf("%w: daily transaction sequence exhausted for %s", apperrors.ErrConflict, day)
		}
		return now, day, seq, nil
	}
}

// postingService validates and commits transactions.
type postingService struct {
	poster
	store portsrepo.TransactionManager
}

// NewPostingService creates the posting engine. currency is the ledger's
// single currency, stamped on every transaction and entry.
func NewPostingService(store portsrepo.TransactionManager, clk clock.Clock, currency string) portssvc.PostingSvc {
	return &postingService{
		poster: poster{BaseService: newBaseService(clk), currency: currency},
		store:  store,
	}
}

var _ portssvc.PostingSvc = (*postingService)(nil)

// Post validates and commits a transaction with its entries and audit entry in
// one unit of work. Any failure leaves no partial state and is recorded as a
// TRANSACTION_FAILED audit entry in a separate commit.
func (s *postingService) Post(ctx context.Context, input domain.TransactionInput, actor string, sourceSystem string) (txn *domain.Transaction, err error) {
	ctx, span := s.StartSpan(ctx, "PostingService.Post")
	defer func() { s.EndSpan(span, err) }()

	if err := requireAttribution(actor, sourceSystem); err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			s.LogError(ctx, err, "Transaction posting failed",
				slog.String("business_event_type", input.BusinessEventType),
				slog.Int("entry_count", len(input.Entries)))
			recordBestEffort(ctx, &s.BaseService, s.store, postingFailure(input, actor, sourceSystem, err))
		}
	}()

	prepared, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		txn, err = s.postWithin(ctx, repos, prepared, actor, sourceSystem, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("transaction_number", txn.TransactionNumber))
	return txn, nil
}

// RecordRejected audits a posting request that never reached Post. Requests
// without attribution are only logged.
func (s *postingService) RecordRejected(ctx context.Context, actor string, sourceSystem string, cause error) {
	if err := requireAttribution(actor, sourceSystem); err != nil {
		s.LogError(ctx, cause, "Unattributed posting request rejected")
		return
	}
	recordBestEffort(ctx, &s.BaseService, s.store, postingFailure(domain.TransactionInput{}, actor, sourceSystem, cause))
}

func postingFailure(input domain.TransactionInput, actor, sourceSystem string, cause error) domain.AuditLogEntry {
	metadata := map[string]any{
		"error":               cause.Error(),
		"business_event_type": input.BusinessEventType,
		"entry_count":         len(input.Entries),
	}
	if input.BusinessKey != nil {
		metadata["business_key"] = *input.BusinessKey
	}
	return domain.AuditLogEntry{
		EventType:    domain.EventTransactionFailed,
		Severity:     domain.SeverityError,
		ActorID:      actor,
		SourceSystem: sourceSystem,
		Action:       domain.ActionPostTransaction,
		EntityType:   domain.EntityTypeTransaction,
		Description:  fmt.Sprintf("Transaction posting failed: %v", cause),
		Metadata:     metadata,
	}
}

// GetTransaction retrieves a transaction with its entries.
func (s *postingService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		txn, err = findTransaction(ctx, repos, transactionID, false)
		if err != nil {
			return err
		}
		txn.Entries, err = repos.Transactions().FindEntriesByTransactionID(ctx, txn.TransactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// findTransaction maps a missing id onto ErrTransactionNotFound.
func findTransaction(ctx context.Context, repos portsrepo.Repositories, transactionID string, forUpdate bool) (*domain.Transaction, error) {
	if _, err := uuid.Parse(transactionID); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}
	var (
		txn *domain.Transaction
		err error
	)
	if forUpdate {
		txn, err = repos.Transactions().FindTransactionByIDForUpdate(ctx, transactionID)
	} else {
		txn, err = repos.Transactions().FindTransactionByID(ctx, transactionID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
		}
		return nil, err
	}
	return txn, nil
}
