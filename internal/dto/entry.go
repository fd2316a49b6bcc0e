package dto

import (
	"time"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest carries one debit or credit row of an entry being
// created or updated.
type EntryLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`

	ThirdPartyID   string     `json:"thirdPartyID,omitempty"`
	CostCenterID   string     `json:"costCenterID,omitempty"`
	ProductID      string     `json:"productID,omitempty"`
	PaymentTermsID string     `json:"paymentTermsID,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	InvoiceDate    *time.Time `json:"invoiceDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

// CreateEntryRequest defines the payload for creating a draft entry.
type CreateEntryRequest struct {
	Date        time.Time          `json:"date" binding:"required"`
	Reference   string             `json:"reference"`
	Description string             `json:"description" binding:"required"`
	EntryType   string             `json:"entryType" binding:"omitempty,entrytype"`
	Lines       []EntryLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateEntryRequest defines the payload for updating a draft entry.
// Nil fields are left unchanged; supplying Lines replaces all lines.
type UpdateEntryRequest struct {
	Date        *time.Time          `json:"date,omitempty"`
	Reference   *string             `json:"reference,omitempty"`
	Description *string             `json:"description,omitempty"`
	Lines       *[]EntryLineRequest `json:"lines,omitempty"`
}

// ListEntriesParams holds query parameters for listing entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
	Status    *string `form:"status"`
}

// EntryLineResponse defines the data returned for a single line.
type EntryLineResponse struct {
	LineID       string          `json:"lineID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`

	ThirdPartyID   string     `json:"thirdPartyID,omitempty"`
	CostCenterID   string     `json:"costCenterID,omitempty"`
	ProductID      string     `json:"productID,omitempty"`
	PaymentTermsID string     `json:"paymentTermsID,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	InvoiceDate    *time.Time `json:"invoiceDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID            string              `json:"entryID"`
	Date               time.Time           `json:"date"`
	Reference          string              `json:"reference"`
	Description        string              `json:"description"`
	EntryType          string              `json:"entryType"`
	Status             string              `json:"status"`
	CancellationReason string              `json:"cancellationReason,omitempty"`
	ReversingEntryID   *string             `json:"reversingEntryID,omitempty"`
	OriginalEntryID    *string             `json:"originalEntryID,omitempty"`
	TotalDebit         decimal.Decimal     `json:"totalDebit"`
	TotalCredit        decimal.Decimal     `json:"totalCredit"`
	IsBalanced         bool                `json:"isBalanced"`
	Lines              []EntryLineResponse `json:"lines,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	CreatedBy          string              `json:"createdBy"`
}

// ListEntriesResponse wraps a page of entries with the pagination token.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ValidationResultResponse reports the outcome of validating an entry.
type ValidationResultResponse struct {
	IsValid     bool            `json:"isValid"`
	IsBalanced  bool            `json:"isBalanced"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Issues      []string        `json:"issues"`
}

// ToEntryLineResponse converts a domain line to its response DTO.
func ToEntryLineResponse(line *domain.JournalEntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:         line.LineID,
		AccountID:      line.AccountID,
		DebitAmount:    line.DebitAmount,
		CreditAmount:   line.CreditAmount,
		ThirdPartyID:   line.ThirdPartyID,
		CostCenterID:   line.CostCenterID,
		ProductID:      line.ProductID,
		PaymentTermsID: line.PaymentTermsID,
		DueDate:        line.DueDate,
		InvoiceDate:    line.InvoiceDate,
		Notes:          line.Notes,
	}
}

// ToEntryResponse converts a domain entry to its response DTO.
func ToEntryResponse(entry *domain.JournalEntry) EntryResponse {
	lines := make([]EntryLineResponse, len(entry.Lines))
	for i := range entry.Lines {
		lines[i] = ToEntryLineResponse(&entry.Lines[i])
	}
	return EntryResponse{
		EntryID:            entry.EntryID,
		Date:               entry.EntryDate,
		Reference:          entry.Reference,
		Description:        entry.Description,
		EntryType:          string(entry.EntryType),
		Status:             string(entry.Status),
		CancellationReason: entry.CancellationReason,
		ReversingEntryID:   entry.ReversingEntryID,
		OriginalEntryID:    entry.OriginalEntryID,
		TotalDebit:         entry.TotalDebit(),
		TotalCredit:        entry.TotalCredit(),
		IsBalanced:         entry.IsBalanced(),
		Lines:              lines,
		CreatedAt:          entry.CreatedAt,
		CreatedBy:          entry.CreatedBy,
	}
}
