package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntryLine is a single debit or credit row within an entry, tied to
// an account. Exactly one of DebitAmount/CreditAmount must be positive for a
// valid line; both amounts are non-negative.
type JournalEntryLine struct {
	LineID    string `json:"lineID"`  // Primary key (UUID)
	EntryID   string `json:"entryID"` // FK -> JournalEntry.EntryID
	AccountID string `json:"accountID"`

	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`

	// Optional analytic dimensions.
	ThirdPartyID string `json:"thirdPartyID,omitempty"`
	CostCenterID string `json:"costCenterID,omitempty"`
	ProductID    string `json:"productID,omitempty"`

	// PaymentTermsID links the line to a payment-terms definition. When set,
	// the due date is computed from the amortization schedule and any manual
	// DueDate is ignored by the resolver.
	PaymentTermsID string     `json:"paymentTermsID,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	InvoiceDate    *time.Time `json:"invoiceDate,omitempty"`

	Notes string `json:"notes,omitempty"`
	AuditFields
}
