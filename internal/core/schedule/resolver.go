package schedule

import (
	"sort"
	"time"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
)

// Resolve determines the due-date view of a single line.
//
// The presence of PaymentTermsID is the sole determinant of IsCalculated: a
// line with payment terms and a non-empty schedule resolves to the date of
// the chronologically last instalment; a line with payment terms but no
// schedule data, or a stale schedule without payment terms, falls back to
// the manual due date. This guards against cached schedule artifacts
// overriding the payment-terms policy.
func Resolve(line domain.JournalEntryLine, sched []domain.PaymentScheduleItem) domain.DueDateInfo {
	if line.PaymentTermsID != "" && len(sched) > 0 {
		ordered := make([]domain.PaymentScheduleItem, len(sched))
		copy(ordered, sched)
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].DueDate.Before(ordered[j].DueDate)
		})
		last := ordered[len(ordered)-1].DueDate
		return domain.DueDateInfo{
			FinalDueDate: &last,
			Schedule:     ordered,
			IsCalculated: true,
		}
	}

	info := domain.DueDateInfo{Schedule: []domain.PaymentScheduleItem{}}
	if line.DueDate != nil {
		due := *line.DueDate
		info.FinalDueDate = &due
	}
	return info
}

// ResolveForEntry folds Resolve over all lines of an entry. Schedules are
// supplied keyed by payment-terms ID; lines without a matching schedule are
// treated as manual.
func ResolveForEntry(entry domain.JournalEntry, schedules map[string][]domain.PaymentScheduleItem) domain.EntryDueDateSummary {
	summary := domain.EntryDueDateSummary{}
	for _, line := range entry.Lines {
		info := Resolve(line, schedules[line.PaymentTermsID])
		if info.IsCalculated {
			summary.HasScheduledPayments = true
			summary.TotalScheduledPayments += len(info.Schedule)
		}
		if info.FinalDueDate == nil {
			continue
		}
		summary.EarliestDueDate = earlier(summary.EarliestDueDate, *info.FinalDueDate)
		summary.LatestDueDate = later(summary.LatestDueDate, *info.FinalDueDate)
	}
	return summary
}

func earlier(current *time.Time, candidate time.Time) *time.Time {
	if current == nil || candidate.Before(*current) {
		return &candidate
	}
	return current
}

func later(current *time.Time, candidate time.Time) *time.Time {
	if current == nil || candidate.After(*current) {
		return &candidate
	}
	return current
}
