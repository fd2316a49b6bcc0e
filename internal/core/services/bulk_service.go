package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_backend/internal/apperrors"
	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/finbooks/finbooks_backend/internal/core/lifecycle"
	portsremote "github.com/finbooks/finbooks_backend/internal/core/ports/remote"
	portsrepo "github.com/finbooks/finbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_backend/internal/core/ports/services"
	"github.com/finbooks/finbooks_backend/internal/dto"
	"github.com/finbooks/finbooks_backend/internal/middleware"
)

var (
	ErrNoEntryIDs     = errors.New("at least one entry ID is required")
	ErrReasonRequired = errors.New("a non-empty reason is required for this transition")
)

// bulkService orchestrates bulk state transitions: request-shape validation,
// per-entry state-machine evaluation, one batch call to the remote
// accounting API for the eligible entries, and local snapshot mirroring.
// It does not assume atomicity; partial failure is the steady state.
type bulkService struct {
	entryRepo portsrepo.EntryRepositoryWithTx
	apiClient portsremote.AccountingAPIClient
}

// NewBulkService creates a new BulkService.
func NewBulkService(entryRepo portsrepo.EntryRepositoryWithTx, apiClient portsremote.AccountingAPIClient) portssvc.BulkSvcFacade {
	return &bulkService{
		entryRepo: entryRepo,
		apiClient: apiClient,
	}
}

// Ensure bulkService implements the portssvc.BulkSvcFacade interface
var _ portssvc.BulkSvcFacade = (*bulkService)(nil)

// ApplyTransition implements portssvc.BulkTransitionSvc.
func (s *bulkService) ApplyTransition(ctx context.Context, transition lifecycle.Transition, req dto.BulkTransitionRequest, requestingUserID string) (*domain.BulkOperationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Request-shape validation happens before any per-entry evaluation.
	if len(req.EntryIDs) == 0 {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNoEntryIDs)
	}
	reason := strings.TrimSpace(req.Reason)
	if lifecycle.RequiresReason(transition) && reason == "" {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrReasonRequired)
	}
	if reason == "" {
		reason = fmt.Sprintf("bulk %s", transition)
	}

	entryIDs := uniqueStrings(req.EntryIDs)

	entries, err := s.entryRepo.FindEntriesByIDs(ctx, entryIDs)
	if err != nil {
		logger.Error("Failed to fetch entries for bulk transition", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}

	result := domain.NewBulkOperationResult()
	eligible := make([]string, 0, len(entryIDs))

	for _, entryID := range entryIDs {
		entry, found := entries[entryID]
		if !found {
			result.AddFailed(entryID, "entry not found")
			continue
		}

		// Idempotence: entries already where the transition would put them
		// are classified as already-succeeded so retries stay safe.
		if target, ok := lifecycle.TargetStatus(transition); ok && entry.Status == target {
			result.AddSucceeded(entryID)
			continue
		}
		if transition == lifecycle.TransitionReverse && entry.ReversingEntryID != nil {
			result.AddSucceeded(entryID)
			continue
		}

		if err := s.evaluateEntry(ctx, &entry, transition, reason, req.Force); err != nil {
			result.AddFailed(entryID, err.Error())
			continue
		}

		eligible = append(eligible, entryID)
	}

	if len(eligible) > 0 {
		remoteResult, err := s.apiClient.ApplyBulkTransition(ctx, transition, eligible, reason, req.Force)
		if err != nil {
			logger.Error("Bulk transition remote call failed", slog.String("error", err.Error()), slog.String("transition", string(transition)))
			return nil, err
		}
		result.Merge(remoteResult)

		s.mirrorSucceeded(ctx, transition, remoteResult.SucceededIDs, entries, reason, requestingUserID)
	}

	logger.Info("Bulk transition applied",
		slog.String("transition", string(transition)),
		slog.Int("requested", result.TotalRequested),
		slog.Int("succeeded", result.TotalSucceeded),
		slog.Int("failed", result.TotalFailed),
	)
	return result, nil
}

// evaluateEntry runs the state machine and the advisory checks for one
// entry. Advisory failures are overridable with force; structural failures
// (illegal transition, unbalanced, missing reason) never are.
func (s *bulkService) evaluateEntry(ctx context.Context, entry *domain.JournalEntry, transition lifecycle.Transition, reason string, force bool) error {
	if err := lifecycle.Validate(entry, transition, reason); err != nil {
		var precondition *lifecycle.PreconditionFailedError
		if errors.As(err, &precondition) && precondition.Advisory && force {
			return nil
		}
		return err
	}

	// Approving or posting an entry whose reference another entry already
	// carries is worth a warning, not a hard stop.
	if (transition == lifecycle.TransitionApprove || transition == lifecycle.TransitionPost) && entry.Reference != "" && !force {
		duplicateIDs, err := s.entryRepo.FindEntryIDsByReference(ctx, entry.Reference)
		if err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Duplicate-reference check failed", slog.String("error", err.Error()), slog.String("entry_id", entry.EntryID))
		} else {
			for _, id := range duplicateIDs {
				if id != entry.EntryID {
					return &lifecycle.PreconditionFailedError{
						EntryID:   entry.EntryID,
						Condition: fmt.Sprintf("reference %q is already used by entry %s", entry.Reference, id),
						Advisory:  true,
					}
				}
			}
		}
	}

	return nil
}

// mirrorSucceeded updates the local snapshots of entries the remote API
// confirmed. The remote outcome is authoritative; a local mirroring failure
// is logged but does not reclassify the entry.
func (s *bulkService) mirrorSucceeded(ctx context.Context, transition lifecycle.Transition, succeededIDs []string, entries map[string]domain.JournalEntry, reason string, userID string) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	for _, entryID := range succeededIDs {
		if transition == lifecycle.TransitionReverse {
			original, found := entries[entryID]
			if !found {
				continue
			}
			if err := s.createReversalMirror(ctx, &original, reason, userID, now); err != nil {
				logger.Warn("Failed to mirror reversal locally", slog.String("error", err.Error()), slog.String("entry_id", entryID))
			}
			continue
		}

		target, ok := lifecycle.TargetStatus(transition)
		if !ok {
			continue
		}
		statusReason := ""
		if lifecycle.RequiresReason(transition) {
			statusReason = reason
		}
		if err := s.entryRepo.UpdateEntryStatus(ctx, entryID, target, statusReason, userID, now); err != nil {
			logger.Warn("Failed to mirror status locally", slog.String("error", err.Error()), slog.String("entry_id", entryID), slog.String("status", string(target)))
		}
	}
}

// createReversalMirror stores the mirrored entry for a confirmed reversal:
// a new DRAFT whose lines swap debit and credit, linked both ways to the
// original. The original stays POSTED. The mirror and its links are written
// in one transaction, so a failed write leaves the original untouched and a
// retried reverse starts from a clean slate instead of stacking drafts.
func (s *bulkService) createReversalMirror(ctx context.Context, original *domain.JournalEntry, reason string, userID string, now time.Time) error {
	reversalID := uuid.NewString()

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		EntryDate:       original.EntryDate,
		Reference:       original.Reference,
		Description:     fmt.Sprintf("Reversal of entry: %s (%s)", original.Description, reason),
		EntryType:       original.EntryType,
		Status:          domain.StatusDraft,
		OriginalEntryID: &original.EntryID,
		Lines:           make([]domain.JournalEntryLine, len(original.Lines)),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	for i, origLine := range original.Lines {
		reversal.Lines[i] = domain.JournalEntryLine{
			LineID:         uuid.NewString(),
			EntryID:        reversalID,
			AccountID:      origLine.AccountID,
			DebitAmount:    origLine.CreditAmount,
			CreditAmount:   origLine.DebitAmount,
			ThirdPartyID:   origLine.ThirdPartyID,
			CostCenterID:   origLine.CostCenterID,
			ProductID:      origLine.ProductID,
			PaymentTermsID: origLine.PaymentTermsID,
			DueDate:        origLine.DueDate,
			InvoiceDate:    origLine.InvoiceDate,
			Notes:          origLine.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	tx, err := s.entryRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reversal transaction: %w", err)
	}
	defer func() {
		_ = s.entryRepo.Rollback(ctx, tx)
	}()

	if err := s.entryRepo.SaveEntryInTx(ctx, tx, reversal); err != nil {
		return fmt.Errorf("failed to save reversal mirror: %w", err)
	}
	if err := s.entryRepo.UpdateReversalLinksInTx(ctx, tx, original.EntryID, reversalID, userID, now); err != nil {
		return fmt.Errorf("failed to link reversal: %w", err)
	}
	if err := s.entryRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit reversal mirror: %w", err)
	}
	return nil
}

// uniqueStrings returns a slice containing only the unique strings from the
// input, preserving first-seen order.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
