package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/clock"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

const reversalMemoPrefix = "Reversal: "

// reversalService offsets posted transactions. It never edits the original
// beyond the one-way POSTED to REVERSED transition.
type reversalService struct {
	poster
	store portsrepo.TransactionManager
}

// NewReversalService creates the reversal protocol on top of the posting path.
func NewReversalService(store portsrepo.TransactionManager, clk clock.Clock, currency string) portssvc.ReversalSvc {
	return &reversalService{
		poster: poster{BaseService: newBaseService(clk), currency: currency},
		store:  store,
	}
}

var _ portssvc.ReversalSvc = (*reversalService)(nil)

// Reverse posts the flipped entry set of a POSTED transaction, links both
// transactions and marks the original REVERSED in one unit of work.
func (s *reversalService) Reverse(ctx context.Context, transactionID string, reason string, actor string, sourceSystem string) (reversal *domain.Transaction, err error) {
	ctx, span := s.StartSpan(ctx, "ReversalService.Reverse")
	defer func() { s.EndSpan(span, err) }()

	if err := requireAttribution(actor, sourceSystem); err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			s.LogError(ctx, err, "Transaction reversal failed", slog.String("transaction_id", transactionID))
			recordBestEffort(ctx, &s.BaseService, s.store, domain.AuditLogEntry{
				EventType:    domain.EventTransactionReversalFailed,
				Severity:     domain.SeverityError,
				ActorID:      actor,
				SourceSystem: sourceSystem,
				Action:       domain.ActionReverseTransaction,
				EntityType:   domain.EntityTypeTransaction,
				EntityID:     transactionID,
				Description:  fmt.Sprintf("Reversal of %s failed: %v", transactionID, err),
				Metadata: map[string]any{
					"error":           err.Error(),
					"reversal_reason": reason,
				},
			})
		}
	}()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reversal reason is required", apperrors.ErrValidation)
	}

	var original *domain.Transaction
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		original, err = findTransaction(ctx, repos, transactionID, true)
		if err != nil {
			return err
		}
		if original.Status == domain.Reversed || original.ReversedBy != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyReversed, original.TransactionNumber)
		}
		if original.Status != domain.Posted {
			return fmt.Errorf("%w: %s is %s", apperrors.ErrNotPosted, original.TransactionNumber, original.Status)
		}

		entries, err := repos.Transactions().FindEntriesByTransactionID(ctx, original.TransactionID)
		if err != nil {
			return err
		}

		prepared, err := s.prepare(s.compensatingInput(original, entries, reason), "BusinessEventType")
		if err != nil {
			return err
		}
		reversal, err = s.postWithin(ctx, repos, prepared, actor, sourceSystem, &reversalLink{
			reverses: original.TransactionID,
			reason:   reason,
		})
		if err != nil {
			return err
		}

		now := reversal.PostingDate
		if err := repos.Transactions().MarkTransactionReversed(ctx, original.TransactionID, reversal.TransactionID, actor, now); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return fmt.Errorf("%w: %s", apperrors.ErrAlreadyReversed, original.TransactionNumber)
			}
			return err
		}

		_, err = appendAudit(ctx, repos, now, domain.AuditLogEntry{
			EventType:     domain.EventTransactionReversed,
			Severity:      domain.SeverityWarning,
			ActorID:       actor,
			SourceSystem:  sourceSystem,
			Action:        domain.ActionReverseTransaction,
			TransactionID: &original.TransactionID,
			EntityType:    domain.EntityTypeTransaction,
			EntityID:      original.TransactionID,
			Description:   fmt.Sprintf("Transaction %s reversed by %s", original.TransactionNumber, reversal.TransactionNumber),
			Metadata: map[string]any{
				"original_transaction_number": original.TransactionNumber,
				"reversal_transaction_id":     reversal.TransactionID,
				"reversal_transaction_number": reversal.TransactionNumber,
				"reversal_reason":             reason,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transaction reversed",
		slog.String("transaction_id", original.TransactionID),
		slog.String("reversal_transaction_id", reversal.TransactionID))
	return reversal, nil
}

// compensatingInput flips every entry of the original while keeping its
// account, amount and dimensions.
func (s *reversalService) compensatingInput(original *domain.Transaction, entries []domain.JournalEntry, reason string) domain.TransactionInput {
	inputs := make([]domain.EntryInput, 0, len(entries))
	for _, e := range entries {
		memo := reversalMemoPrefix
		if e.Memo != nil {
			memo += *e.Memo
		}
		inputs = append(inputs, domain.EntryInput{
			AccountCode:  e.AccountCode,
			EntryType:    string(e.EntryType.Flip()),
			Amount:       e.Amount.StringFixed(domain.AmountScale),
			CostCenter:   e.CostCenter,
			BusinessUnit: e.BusinessUnit,
			ProjectCode:  e.ProjectCode,
			Memo:         &memo,
		})
	}
	number := original.TransactionNumber
	return domain.TransactionInput{
		BusinessEventType: domain.ReversalEventType(original.BusinessEventType),
		Description:       fmt.Sprintf("Reversal of %s: %s", original.TransactionNumber, reason),
		TransactionDate:   s.Clock.Now(),
		BusinessKey:       original.BusinessKey,
		ReferenceNumber:   &number,
		Entries:           inputs,
	}
}
