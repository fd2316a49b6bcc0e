package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_backend/internal/apperrors"
	"github.com/finbooks/finbooks_backend/internal/core/accounting"
	"github.com/finbooks/finbooks_backend/internal/core/domain"
	portsremote "github.com/finbooks/finbooks_backend/internal/core/ports/remote"
	portsrepo "github.com/finbooks/finbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_backend/internal/core/ports/services"
	"github.com/finbooks/finbooks_backend/internal/core/schedule"
	"github.com/finbooks/finbooks_backend/internal/dto"
	"github.com/finbooks/finbooks_backend/internal/middleware"
)

var (
	ErrEntryNotDraft      = errors.New("entry must be in DRAFT status for this change")
	ErrEntryImmutable     = errors.New("entry can no longer be modified")
	ErrNegativeAmounts    = errors.New("line amounts must be non-negative")
	ErrNoLines            = errors.New("entry must have at least one line")
	ErrMissingDescription = errors.New("entry description is required")
)

// entryService provides draft CRUD, validation and due-date resolution for
// journal entries.
type entryService struct {
	entryRepo portsrepo.EntryRepositoryWithTx
	apiClient portsremote.AccountingAPIClient
}

// NewEntryService creates a new EntryService.
func NewEntryService(entryRepo portsrepo.EntryRepositoryWithTx, apiClient portsremote.AccountingAPIClient) portssvc.EntrySvcFacade {
	return &entryService{
		entryRepo: entryRepo,
		apiClient: apiClient,
	}
}

// Ensure entryService implements the portssvc.EntrySvcFacade interface
var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// buildLines converts line request DTOs into domain lines attached to the
// given entry. Draft lines may be incomplete (a draft is work in progress;
// the full invariants are enforced at approve time), but amounts must be
// non-negative from the start.
func buildLines(entryID string, reqs []dto.EntryLineRequest, userID string, now time.Time) ([]domain.JournalEntryLine, error) {
	lines := make([]domain.JournalEntryLine, len(reqs))
	for i, lineReq := range reqs {
		if lineReq.DebitAmount.IsNegative() || lineReq.CreditAmount.IsNegative() {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrValidation, i+1, ErrNegativeAmounts)
		}
		lines[i] = domain.JournalEntryLine{
			LineID:         uuid.NewString(),
			EntryID:        entryID,
			AccountID:      lineReq.AccountID,
			DebitAmount:    lineReq.DebitAmount,
			CreditAmount:   lineReq.CreditAmount,
			ThirdPartyID:   lineReq.ThirdPartyID,
			CostCenterID:   lineReq.CostCenterID,
			ProductID:      lineReq.ProductID,
			PaymentTermsID: lineReq.PaymentTermsID,
			DueDate:        lineReq.DueDate,
			InvoiceDate:    lineReq.InvoiceDate,
			Notes:          lineReq.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}
	return lines, nil
}

// CreateEntry creates a new journal entry in DRAFT status.
// Implements portssvc.EntryWriterSvc
func (s *entryService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNoLines)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrMissingDescription)
	}

	entryType := domain.EntryType(req.EntryType)
	if entryType == "" {
		entryType = domain.TypeStandard
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines, err := buildLines(entryID, req.Lines, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.Date,
		Reference:   req.Reference,
		Description: req.Description,
		EntryType:   entryType,
		Status:      domain.StatusDraft,
		Lines:       lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to save entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	logger.Info("Entry created", slog.String("entry_id", entry.EntryID), slog.Int("line_count", len(entry.Lines)))
	return &entry, nil
}

// GetEntryByID retrieves a specific entry with its lines.
// Implements portssvc.EntryReaderSvc
func (s *entryService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find entry by ID", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	logger.Debug("Entry retrieved", slog.String("entry_id", entryID), slog.Int("line_count", len(entry.Lines)))
	return entry, nil
}

// ListEntries retrieves a paginated list of entries.
// Implements portssvc.EntryReaderSvc
func (s *entryService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20 // Default limit
	}

	var status *domain.EntryStatus
	if params.Status != nil {
		st := domain.EntryStatus(*params.Status)
		switch st {
		case domain.StatusDraft, domain.StatusApproved, domain.StatusPosted, domain.StatusCancelled:
			status = &st
		default:
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, *params.Status)
		}
	}

	entries, nextToken, err := s.entryRepo.ListEntries(ctx, limit, params.NextToken, status)
	if err != nil {
		logger.Error("Failed to list entries from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToEntryResponse(&entries[i])
	}

	logger.Info("Entries listed", "count", len(entries))
	return &dto.ListEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// UpdateEntry updates a draft entry. While APPROVED only the description and
// reference may still change; POSTED and CANCELLED entries are immutable.
// Implements portssvc.EntryWriterSvc
func (s *entryService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Entry not found for update", slog.String("entry_id", entryID))
		} else {
			logger.Error("Failed to find entry for update", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}

	switch entry.Status {
	case domain.StatusDraft:
		// Fully mutable.
	case domain.StatusApproved:
		if req.Lines != nil || req.Date != nil {
			return nil, fmt.Errorf("%w: %w: only description and reference may change after approval", apperrors.ErrConflict, ErrEntryNotDraft)
		}
	default:
		return nil, fmt.Errorf("%w: status is %s: %v", apperrors.ErrConflict, entry.Status, ErrEntryImmutable)
	}

	now := time.Now().UTC()
	updated := false
	if req.Date != nil {
		entry.EntryDate = *req.Date
		updated = true
	}
	if req.Reference != nil {
		entry.Reference = *req.Reference
		updated = true
	}
	if req.Description != nil {
		entry.Description = *req.Description
		updated = true
	}
	if req.Lines != nil {
		if len(*req.Lines) == 0 {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNoLines)
		}
		lines, err := buildLines(entry.EntryID, *req.Lines, requestingUserID, now)
		if err != nil {
			return nil, err
		}
		entry.Lines = lines
		updated = true
	}

	if !updated {
		logger.Debug("No fields provided for entry update", slog.String("entry_id", entryID))
		return entry, nil
	}

	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = requestingUserID

	if err := s.entryRepo.UpdateEntry(ctx, *entry); err != nil {
		logger.Error("Failed to save entry update", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save entry update: %w", err)
	}

	logger.Info("Entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

// ValidateEntry runs the double-entry checks against a stored entry.
// Implements portssvc.EntryValidatorSvc
func (s *entryService) ValidateEntry(ctx context.Context, entryID string) (*accounting.ValidationResult, error) {
	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	result := accounting.ValidateEntry(*entry)
	return &result, nil
}

// ResolveDueDates resolves the due-date view of every line of an entry.
// Schedules are fetched once per distinct payment-terms linkage.
// Implements portssvc.EntryDueDateSvc
func (s *entryService) ResolveDueDates(ctx context.Context, entryID string) (*dto.EntryDueDateSummaryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	schedules := make(map[string][]domain.PaymentScheduleItem)
	for _, line := range entry.Lines {
		if line.PaymentTermsID == "" {
			continue
		}
		if _, fetched := schedules[line.PaymentTermsID]; fetched {
			continue
		}
		invoiceDate := entry.EntryDate
		if line.InvoiceDate != nil {
			invoiceDate = *line.InvoiceDate
		}
		items, err := s.apiClient.FetchPaymentSchedule(ctx, line.PaymentTermsID, invoiceDate)
		if err != nil {
			logger.Error("Failed to fetch payment schedule", slog.String("error", err.Error()), slog.String("payment_terms_id", line.PaymentTermsID))
			return nil, fmt.Errorf("failed to fetch payment schedule for %s: %w", line.PaymentTermsID, err)
		}
		schedules[line.PaymentTermsID] = items
	}

	summary := schedule.ResolveForEntry(*entry, schedules)

	resp := &dto.EntryDueDateSummaryResponse{
		HasScheduledPayments:   summary.HasScheduledPayments,
		EarliestDueDate:        summary.EarliestDueDate,
		LatestDueDate:          summary.LatestDueDate,
		TotalScheduledPayments: summary.TotalScheduledPayments,
		Lines:                  make([]dto.LineDueDateResponse, len(entry.Lines)),
	}
	for i, line := range entry.Lines {
		info := schedule.Resolve(line, schedules[line.PaymentTermsID])
		resp.Lines[i] = dto.LineDueDateResponse{
			LineID:       line.LineID,
			FinalDueDate: info.FinalDueDate,
			IsCalculated: info.IsCalculated,
			Schedule:     dto.ToScheduleItemResponses(info.Schedule),
		}
	}

	logger.Debug("Due dates resolved", slog.String("entry_id", entryID), slog.Bool("has_scheduled", summary.HasScheduledPayments))
	return resp, nil
}
