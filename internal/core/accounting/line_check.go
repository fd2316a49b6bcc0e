package accounting

import (
	"fmt"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
)

// ViolationCode identifies a specific line-level invariant breach.
type ViolationCode string

const (
	// MissingAccount: the line has no account reference.
	MissingAccount ViolationCode = "MISSING_ACCOUNT"
	// ZeroAmount: both debit and credit are zero.
	ZeroAmount ViolationCode = "ZERO_AMOUNT"
	// DualAmount: both debit and credit are positive.
	DualAmount ViolationCode = "DUAL_AMOUNT"
	// NegativeAmount: one of the amounts is negative.
	NegativeAmount ViolationCode = "NEGATIVE_AMOUNT"
)

// Violation describes one invariant breach on one line.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// CheckLine validates a single journal-entry line. It is a pure function: no
// I/O, no side effects. A well-formed line references an account and carries
// exactly one positive amount, debit or credit.
func CheckLine(line domain.JournalEntryLine) []Violation {
	var violations []Violation

	if line.AccountID == "" {
		violations = append(violations, Violation{
			Code:    MissingAccount,
			Message: "line has no account reference",
		})
	}

	debitPositive := line.DebitAmount.IsPositive()
	creditPositive := line.CreditAmount.IsPositive()

	switch {
	case line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative():
		violations = append(violations, Violation{
			Code:    NegativeAmount,
			Message: fmt.Sprintf("amounts must be non-negative, got debit %s credit %s", line.DebitAmount, line.CreditAmount),
		})
	case !debitPositive && !creditPositive:
		violations = append(violations, Violation{
			Code:    ZeroAmount,
			Message: "line must carry a debit or a credit amount",
		})
	case debitPositive && creditPositive:
		violations = append(violations, Violation{
			Code:    DualAmount,
			Message: fmt.Sprintf("line carries both a debit (%s) and a credit (%s)", line.DebitAmount, line.CreditAmount),
		})
	}

	return violations
}
