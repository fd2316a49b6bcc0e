package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates where a journal entry sits in its lifecycle.
type EntryStatus string

const (
	StatusDraft     EntryStatus = "DRAFT"
	StatusApproved  EntryStatus = "APPROVED"
	StatusPosted    EntryStatus = "POSTED"
	StatusCancelled EntryStatus = "CANCELLED"
)

// EntryType classifies a journal entry.
type EntryType string

const (
	TypeStandard   EntryType = "STANDARD"
	TypeOpening    EntryType = "OPENING"
	TypeAdjustment EntryType = "ADJUSTMENT"
	TypeClosing    EntryType = "CLOSING"
)

// JournalEntry is the unit of double-entry bookkeeping: a dated, described
// set of lines whose debits and credits must balance before the entry can
// leave DRAFT.
type JournalEntry struct {
	EntryID     string      `json:"entryID"` // Primary key (UUID)
	EntryDate   time.Time   `json:"entryDate"`
	Reference   string      `json:"reference"`
	Description string      `json:"description"`
	EntryType   EntryType   `json:"entryType"`
	Status      EntryStatus `json:"status"` // Default: DRAFT

	// CancellationReason is set when the entry is cancelled or reset; it is
	// mandatory for those transitions.
	CancellationReason string `json:"cancellationReason,omitempty"`

	// Reversal linkage. ReversingEntryID points at the mirrored entry that
	// reverses this one; OriginalEntryID points back the other way.
	ReversingEntryID *string `json:"reversingEntryID,omitempty"`
	OriginalEntryID  *string `json:"originalEntryID,omitempty"`

	Lines []JournalEntryLine `json:"lines,omitempty"`
	AuditFields
}

// TotalDebit sums the debit side of all lines.
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.DebitAmount)
	}
	return total
}

// TotalCredit sums the credit side of all lines.
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.CreditAmount)
	}
	return total
}

// IsBalanced reports whether total debits equal total credits using exact
// decimal comparison. An entry with no lines is trivially balanced but still
// invalid; completeness is checked separately.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebit().Equal(e.TotalCredit())
}
