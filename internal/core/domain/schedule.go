package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentScheduleItem is one partial-payment instalment computed from a
// payment-terms definition and an invoice date.
type PaymentScheduleItem struct {
	DueDate time.Time       `json:"dueDate"`
	Amount  decimal.Decimal `json:"amount"`
}

// DueDateInfo is the resolved due-date view of a single line.
// IsCalculated is true only when the line carries a payment-terms link AND a
// non-empty schedule; a manual DueDate never makes a line "calculated".
type DueDateInfo struct {
	FinalDueDate *time.Time            `json:"finalDueDate,omitempty"`
	Schedule     []PaymentScheduleItem `json:"schedule"`
	IsCalculated bool                  `json:"isCalculated"`
}

// EntryDueDateSummary aggregates DueDateInfo over all lines of an entry.
type EntryDueDateSummary struct {
	HasScheduledPayments   bool       `json:"hasScheduledPayments"`
	EarliestDueDate        *time.Time `json:"earliestDueDate,omitempty"`
	LatestDueDate          *time.Time `json:"latestDueDate,omitempty"`
	TotalScheduledPayments int        `json:"totalScheduledPayments"`
}
