package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/finbooks/finbooks_backend/internal/core/accounting"
	"github.com/finbooks/finbooks_backend/internal/core/domain"
)

// Transition names a requested lifecycle operation on a journal entry.
// Reverse is an operation rather than a state: it leaves the original entry
// POSTED and produces a new mirrored entry.
type Transition string

const (
	TransitionApprove      Transition = "approve"
	TransitionPost         Transition = "post"
	TransitionResetToDraft Transition = "reset-to-draft"
	TransitionCancel       Transition = "cancel"
	TransitionReverse      Transition = "reverse"
)

// ErrNilEntry is a programming error: validation was invoked without an
// entry snapshot.
var ErrNilEntry = errors.New("nil journal entry")

// ErrUnknownTransition is a programming error: the transition name is not
// one of the defined operations.
var ErrUnknownTransition = errors.New("unknown transition")

// IllegalTransitionError reports a transition requested from a state for
// which no rule exists.
type IllegalTransitionError struct {
	EntryID    string
	From       domain.EntryStatus
	Transition Transition
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %q from status %s for entry %s", e.Transition, e.From, e.EntryID)
}

// PreconditionFailedError reports a transition whose rule exists but whose
// business precondition is unmet. Advisory failures (duplicate-reference
// warnings and the like) may be overridden with force; structural failures
// (unbalanced entry, missing reason) never are.
type PreconditionFailedError struct {
	EntryID   string
	Condition string
	Advisory  bool
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("precondition failed for entry %s: %s", e.EntryID, e.Condition)
}

// ParseTransition maps a request string onto a defined transition.
func ParseTransition(s string) (Transition, error) {
	switch Transition(strings.ToLower(strings.TrimSpace(s))) {
	case TransitionApprove:
		return TransitionApprove, nil
	case TransitionPost:
		return TransitionPost, nil
	case TransitionResetToDraft:
		return TransitionResetToDraft, nil
	case TransitionCancel:
		return TransitionCancel, nil
	case TransitionReverse:
		return TransitionReverse, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTransition, s)
	}
}

// AllowedSources returns the statuses a transition may be requested from.
func AllowedSources(t Transition) []domain.EntryStatus {
	switch t {
	case TransitionApprove:
		return []domain.EntryStatus{domain.StatusDraft}
	case TransitionPost:
		return []domain.EntryStatus{domain.StatusApproved}
	case TransitionResetToDraft:
		return []domain.EntryStatus{domain.StatusApproved, domain.StatusPosted}
	case TransitionCancel:
		return []domain.EntryStatus{domain.StatusDraft, domain.StatusApproved}
	case TransitionReverse:
		return []domain.EntryStatus{domain.StatusPosted}
	default:
		return nil
	}
}

// TargetStatus returns the status an entry lands in after the transition.
// The boolean is false for reverse, which does not move the original entry.
func TargetStatus(t Transition) (domain.EntryStatus, bool) {
	switch t {
	case TransitionApprove:
		return domain.StatusApproved, true
	case TransitionPost:
		return domain.StatusPosted, true
	case TransitionResetToDraft:
		return domain.StatusDraft, true
	case TransitionCancel:
		return domain.StatusCancelled, true
	default:
		return "", false
	}
}

// RequiresReason reports whether the transition demands a non-empty reason.
// Approve and post accept an optional reason; cancel, reset and reverse do
// not proceed without one.
func RequiresReason(t Transition) bool {
	switch t {
	case TransitionCancel, TransitionResetToDraft, TransitionReverse:
		return true
	default:
		return false
	}
}

// Validate checks a requested transition against the entry snapshot. It
// returns nil when the transition may proceed, *IllegalTransitionError when
// no rule covers the current status, and *PreconditionFailedError when a
// rule exists but its precondition is unmet. It never mutates the entry and
// never silently no-ops: callers that want idempotent already-in-target
// handling must check the status before calling.
func Validate(entry *domain.JournalEntry, t Transition, reason string) error {
	if entry == nil {
		return ErrNilEntry
	}
	sources := AllowedSources(t)
	if sources == nil {
		return fmt.Errorf("%w: %q", ErrUnknownTransition, t)
	}

	allowed := false
	for _, from := range sources {
		if entry.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return &IllegalTransitionError{EntryID: entry.EntryID, From: entry.Status, Transition: t}
	}

	if RequiresReason(t) && strings.TrimSpace(reason) == "" {
		return &PreconditionFailedError{EntryID: entry.EntryID, Condition: "reason is required"}
	}

	// Approve and post re-check the double-entry invariants. An entry
	// mutated after approval in a way that breaks balance must not post.
	if t == TransitionApprove || t == TransitionPost {
		result := accounting.ValidateEntry(*entry)
		if !result.IsValid {
			return &PreconditionFailedError{
				EntryID:   entry.EntryID,
				Condition: strings.Join(result.Issues, "; "),
			}
		}
	}

	return nil
}
