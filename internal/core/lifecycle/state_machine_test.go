package lifecycle_test

import (
	"errors"
	"testing"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/finbooks/finbooks_backend/internal/core/lifecycle"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balancedEntry(status domain.EntryStatus) *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:     "entry-1",
		Description: "balanced entry",
		Status:      status,
		Lines: []domain.JournalEntryLine{
			{AccountID: "acc-1", DebitAmount: decimal.NewFromInt(100)},
			{AccountID: "acc-2", CreditAmount: decimal.NewFromInt(100)},
		},
	}
}

func TestParseTransition(t *testing.T) {
	tests := []struct {
		input   string
		want    lifecycle.Transition
		wantErr bool
	}{
		{input: "approve", want: lifecycle.TransitionApprove},
		{input: "POST", want: lifecycle.TransitionPost},
		{input: "  reset-to-draft ", want: lifecycle.TransitionResetToDraft},
		{input: "cancel", want: lifecycle.TransitionCancel},
		{input: "reverse", want: lifecycle.TransitionReverse},
		{input: "archive", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := lifecycle.ParseTransition(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, lifecycle.ErrUnknownTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetStatus_ReverseHasNoTarget(t *testing.T) {
	_, ok := lifecycle.TargetStatus(lifecycle.TransitionReverse)
	assert.False(t, ok)

	target, ok := lifecycle.TargetStatus(lifecycle.TransitionCancel)
	assert.True(t, ok)
	assert.Equal(t, domain.StatusCancelled, target)
}

func TestValidate_LegalTransitions(t *testing.T) {
	tests := []struct {
		name       string
		from       domain.EntryStatus
		transition lifecycle.Transition
		reason     string
	}{
		{name: "draft to approved", from: domain.StatusDraft, transition: lifecycle.TransitionApprove},
		{name: "approved to posted", from: domain.StatusApproved, transition: lifecycle.TransitionPost},
		{name: "approved back to draft", from: domain.StatusApproved, transition: lifecycle.TransitionResetToDraft, reason: "needs rework"},
		{name: "posted back to draft", from: domain.StatusPosted, transition: lifecycle.TransitionResetToDraft, reason: "period reopened"},
		{name: "draft cancelled", from: domain.StatusDraft, transition: lifecycle.TransitionCancel, reason: "abandoned"},
		{name: "approved cancelled", from: domain.StatusApproved, transition: lifecycle.TransitionCancel, reason: "duplicate"},
		{name: "posted reversed", from: domain.StatusPosted, transition: lifecycle.TransitionReverse, reason: "booked in error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lifecycle.Validate(balancedEntry(tt.from), tt.transition, tt.reason)
			assert.NoError(t, err)
		})
	}
}

func TestValidate_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name       string
		from       domain.EntryStatus
		transition lifecycle.Transition
	}{
		{name: "draft cannot post", from: domain.StatusDraft, transition: lifecycle.TransitionPost},
		{name: "draft cannot reverse", from: domain.StatusDraft, transition: lifecycle.TransitionReverse},
		{name: "posted cannot approve", from: domain.StatusPosted, transition: lifecycle.TransitionApprove},
		{name: "posted cannot cancel", from: domain.StatusPosted, transition: lifecycle.TransitionCancel},
		{name: "cancelled is terminal for approve", from: domain.StatusCancelled, transition: lifecycle.TransitionApprove},
		{name: "cancelled is terminal for reset", from: domain.StatusCancelled, transition: lifecycle.TransitionResetToDraft},
		{name: "approved cannot reverse", from: domain.StatusApproved, transition: lifecycle.TransitionReverse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lifecycle.Validate(balancedEntry(tt.from), tt.transition, "some reason")

			var illegal *lifecycle.IllegalTransitionError
			require.ErrorAs(t, err, &illegal)
			assert.Equal(t, tt.from, illegal.From)
			assert.Equal(t, tt.transition, illegal.Transition)
		})
	}
}

func TestValidate_ReasonRequired(t *testing.T) {
	for _, transition := range []lifecycle.Transition{
		lifecycle.TransitionCancel,
		lifecycle.TransitionResetToDraft,
		lifecycle.TransitionReverse,
	} {
		t.Run(string(transition), func(t *testing.T) {
			from := lifecycle.AllowedSources(transition)[0]
			err := lifecycle.Validate(balancedEntry(from), transition, "   ")

			var precondition *lifecycle.PreconditionFailedError
			require.ErrorAs(t, err, &precondition)
			assert.False(t, precondition.Advisory)
			assert.Contains(t, precondition.Condition, "reason")
		})
	}
}

func TestValidate_ApproveRechecksBalance(t *testing.T) {
	entry := balancedEntry(domain.StatusDraft)
	entry.Lines[1].CreditAmount = decimal.NewFromInt(90)

	err := lifecycle.Validate(entry, lifecycle.TransitionApprove, "")

	var precondition *lifecycle.PreconditionFailedError
	require.ErrorAs(t, err, &precondition)
	assert.False(t, precondition.Advisory)
	assert.Contains(t, precondition.Condition, "UNBALANCED")
}

func TestValidate_PostRechecksLineInvariants(t *testing.T) {
	// An entry whose lines degraded after approval must not post.
	entry := balancedEntry(domain.StatusApproved)
	entry.Lines[0].CreditAmount = decimal.NewFromInt(100)
	entry.Lines[1].DebitAmount = decimal.NewFromInt(100)

	err := lifecycle.Validate(entry, lifecycle.TransitionPost, "")

	var precondition *lifecycle.PreconditionFailedError
	require.ErrorAs(t, err, &precondition)
	assert.Contains(t, precondition.Condition, "DUAL_AMOUNT")
}

func TestValidate_CancelSkipsBalanceCheck(t *testing.T) {
	// Cancelling an unbalanced draft is allowed; only approve and post
	// re-run the double-entry checks.
	entry := balancedEntry(domain.StatusDraft)
	entry.Lines[1].CreditAmount = decimal.NewFromInt(1)

	err := lifecycle.Validate(entry, lifecycle.TransitionCancel, "abandoned")
	assert.NoError(t, err)
}

func TestValidate_NilEntry(t *testing.T) {
	err := lifecycle.Validate(nil, lifecycle.TransitionApprove, "")
	assert.ErrorIs(t, err, lifecycle.ErrNilEntry)
}

func TestValidate_UnknownTransition(t *testing.T) {
	err := lifecycle.Validate(balancedEntry(domain.StatusDraft), lifecycle.Transition("archive"), "")
	assert.ErrorIs(t, err, lifecycle.ErrUnknownTransition)
}

func TestValidate_NeverMutatesEntry(t *testing.T) {
	entry := balancedEntry(domain.StatusDraft)

	require.NoError(t, lifecycle.Validate(entry, lifecycle.TransitionApprove, ""))

	assert.Equal(t, domain.StatusDraft, entry.Status)
}

func TestIllegalTransitionError_Message(t *testing.T) {
	err := &lifecycle.IllegalTransitionError{
		EntryID:    "entry-9",
		From:       domain.StatusCancelled,
		Transition: lifecycle.TransitionPost,
	}
	assert.Contains(t, err.Error(), "entry-9")
	assert.Contains(t, err.Error(), string(domain.StatusCancelled))

	var target *lifecycle.IllegalTransitionError
	assert.True(t, errors.As(err, &target))
}
