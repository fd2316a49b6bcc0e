package services

import (
	"context"

	"github.com/finbooks/finbooks_backend/internal/core/accounting"
	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/finbooks/finbooks_backend/internal/dto"
)

// EntryReaderSvc defines read operations for journal-entry data
type EntryReaderSvc interface {
	// GetEntryByID retrieves a specific entry, with its lines, by ID.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// EntryWriterSvc defines write operations for journal-entry drafts
type EntryWriterSvc interface {
	// CreateEntry persists a new draft entry with its lines.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// UpdateEntry updates a draft entry's header and, optionally, its lines.
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.JournalEntry, error)
}

// EntryValidatorSvc defines validation operations over stored entries
type EntryValidatorSvc interface {
	// ValidateEntry runs the double-entry checks against a stored entry
	// without mutating anything.
	ValidateEntry(ctx context.Context, entryID string) (*accounting.ValidationResult, error)
}

// EntryDueDateSvc defines due-date resolution over stored entries
type EntryDueDateSvc interface {
	// ResolveDueDates resolves the due-date view of every line of an entry,
	// fetching payment schedules for lines linked to payment terms.
	ResolveDueDates(ctx context.Context, entryID string) (*dto.EntryDueDateSummaryResponse, error)
}

// EntrySvcFacade combines all entry-related service interfaces
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
	EntryValidatorSvc
	EntryDueDateSvc
}
