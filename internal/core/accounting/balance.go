package accounting

import (
	"fmt"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Entry-level issue codes, reported alongside per-line violations.
const (
	IssueEmptyEntry = "EMPTY_ENTRY"
	IssueUnbalanced = "UNBALANCED"
)

// ValidationResult is the outcome of validating a whole entry snapshot.
type ValidationResult struct {
	IsValid     bool            `json:"isValid"`
	IsBalanced  bool            `json:"isBalanced"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Issues      []string        `json:"issues"`
}

// ValidateEntry validates a full journal entry: every line passes CheckLine,
// the entry has at least one line, and total debits equal total credits
// under exact decimal comparison. Deterministic over the entry snapshot,
// no side effects.
func ValidateEntry(entry domain.JournalEntry) ValidationResult {
	result := ValidationResult{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Issues:      []string{},
	}

	if len(entry.Lines) == 0 {
		result.Issues = append(result.Issues, fmt.Sprintf("%s: entry has no lines", IssueEmptyEntry))
	}

	for i, line := range entry.Lines {
		result.TotalDebit = result.TotalDebit.Add(line.DebitAmount)
		result.TotalCredit = result.TotalCredit.Add(line.CreditAmount)
		for _, violation := range CheckLine(line) {
			result.Issues = append(result.Issues, fmt.Sprintf("line %d: %s", i+1, violation))
		}
	}

	result.IsBalanced = result.TotalDebit.Equal(result.TotalCredit)
	if !result.IsBalanced {
		result.Issues = append(result.Issues, fmt.Sprintf("%s: total debit %s does not equal total credit %s",
			IssueUnbalanced, result.TotalDebit, result.TotalCredit))
	}

	result.IsValid = len(result.Issues) == 0
	return result
}
