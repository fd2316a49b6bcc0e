package dto

import (
	"time"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ScheduleItemResponse is one instalment of a payment schedule.
type ScheduleItemResponse struct {
	DueDate time.Time       `json:"dueDate"`
	Amount  decimal.Decimal `json:"amount"`
}

// LineDueDateResponse is the resolved due-date view of one line.
type LineDueDateResponse struct {
	LineID       string                 `json:"lineID"`
	FinalDueDate *time.Time             `json:"finalDueDate,omitempty"`
	IsCalculated bool                   `json:"isCalculated"`
	Schedule     []ScheduleItemResponse `json:"schedule"`
}

// EntryDueDateSummaryResponse aggregates due-date resolution over an entry.
type EntryDueDateSummaryResponse struct {
	HasScheduledPayments   bool                  `json:"hasScheduledPayments"`
	EarliestDueDate        *time.Time            `json:"earliestDueDate,omitempty"`
	LatestDueDate          *time.Time            `json:"latestDueDate,omitempty"`
	TotalScheduledPayments int                   `json:"totalScheduledPayments"`
	Lines                  []LineDueDateResponse `json:"lines"`
}

// ToScheduleItemResponses converts domain schedule items to DTOs.
func ToScheduleItemResponses(items []domain.PaymentScheduleItem) []ScheduleItemResponse {
	out := make([]ScheduleItemResponse, len(items))
	for i, item := range items {
		out[i] = ScheduleItemResponse{DueDate: item.DueDate, Amount: item.Amount}
	}
	return out
}
