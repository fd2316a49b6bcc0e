package domain_test

import (
	"testing"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalEntry_Totals(t *testing.T) {
	entry := domain.JournalEntry{
		Lines: []domain.JournalEntryLine{
			{AccountID: "acc-1", DebitAmount: decimal.NewFromFloat(10.50)},
			{AccountID: "acc-2", DebitAmount: decimal.NewFromFloat(4.50)},
			{AccountID: "acc-3", CreditAmount: decimal.NewFromInt(15)},
		},
	}

	assert.True(t, entry.TotalDebit().Equal(decimal.NewFromInt(15)))
	assert.True(t, entry.TotalCredit().Equal(decimal.NewFromInt(15)))
	assert.True(t, entry.IsBalanced())
}

func TestJournalEntry_IsBalanced(t *testing.T) {
	tests := []struct {
		name  string
		lines []domain.JournalEntryLine
		want  bool
	}{
		{
			name: "balanced pair",
			lines: []domain.JournalEntryLine{
				{DebitAmount: decimal.NewFromInt(100)},
				{CreditAmount: decimal.NewFromInt(100)},
			},
			want: true,
		},
		{
			name: "unbalanced by a cent",
			lines: []domain.JournalEntryLine{
				{DebitAmount: decimal.RequireFromString("100.00")},
				{CreditAmount: decimal.RequireFromString("99.99")},
			},
			want: false,
		},
		{
			name:  "no lines is trivially balanced",
			lines: nil,
			want:  true,
		},
		{
			name: "differing scale still balances",
			lines: []domain.JournalEntryLine{
				{DebitAmount: decimal.RequireFromString("100.0")},
				{CreditAmount: decimal.RequireFromString("100.000")},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := domain.JournalEntry{Lines: tt.lines}
			assert.Equal(t, tt.want, entry.IsBalanced())
		})
	}
}

func TestBulkOperationResult_PartitionInvariant(t *testing.T) {
	result := domain.NewBulkOperationResult()
	result.AddSucceeded("e1")
	result.AddSucceeded("e2")
	result.AddFailed("e3", "entry not found")

	assert.Equal(t, 3, result.TotalRequested)
	assert.Equal(t, 2, result.TotalSucceeded)
	assert.Equal(t, 1, result.TotalFailed)
	assert.Equal(t, result.TotalRequested, result.TotalSucceeded+result.TotalFailed)
	assert.Equal(t, []string{"e1", "e2"}, result.SucceededIDs)
	assert.Equal(t, "entry not found", result.FailedEntries["e3"])
}

func TestBulkOperationResult_Merge(t *testing.T) {
	local := domain.NewBulkOperationResult()
	local.AddSucceeded("e1")
	local.AddFailed("e2", "entry not found")

	remote := domain.NewBulkOperationResult()
	remote.AddSucceeded("e3")
	remote.AddFailed("e4", "rejected")

	local.Merge(remote)

	assert.Equal(t, 4, local.TotalRequested)
	assert.Equal(t, 2, local.TotalSucceeded)
	assert.Equal(t, 2, local.TotalFailed)
	assert.ElementsMatch(t, []string{"e1", "e3"}, local.SucceededIDs)

	// Merging nil is a no-op.
	local.Merge(nil)
	assert.Equal(t, 4, local.TotalRequested)
}
