package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
)

// EntryReader defines read operations for journal-entry data
type EntryReader interface {
	// FindEntryByID retrieves a specific entry, with its lines, by ID.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntriesByIDs retrieves entries (with lines) for a set of IDs,
	// keyed by entry ID. IDs with no stored entry are simply absent.
	FindEntriesByIDs(ctx context.Context, entryIDs []string) (map[string]domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries using token-based
	// pagination, optionally filtered by status. It returns the entries, a
	// token for the next page, and an error.
	ListEntries(ctx context.Context, limit int, nextToken *string, status *domain.EntryStatus) ([]domain.JournalEntry, *string, error)

	// FindEntryIDsByReference returns the IDs of entries sharing the given
	// reference. Used for the duplicate-reference advisory check.
	FindEntryIDsByReference(ctx context.Context, reference string) ([]string, error)
}

// EntryWriter defines write operations for journal-entry data
type EntryWriter interface {
	// SaveEntry persists a new entry and its lines atomically.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// SaveEntryInTx persists a new entry and its lines within an existing
	// transaction.
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error

	// UpdateEntry replaces the header fields and lines of a stored entry.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateEntryStatus moves a stored entry to a new status, recording the
	// reason supplied with cancellations and resets.
	UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, reason string, updatedByUserID string, updatedAt time.Time) error

	// UpdateReversalLinksInTx records the linkage between an original entry
	// and the entry that reverses it within an existing transaction, so the
	// mirror draft and its links always land together.
	UpdateReversalLinksInTx(ctx context.Context, tx pgx.Tx, originalEntryID string, reversingEntryID string, updatedByUserID string, updatedAt time.Time) error
}

// EntryRepositoryFacade combines all entry-related repository interfaces
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
