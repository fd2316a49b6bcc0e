package services_test

import (
	"context"
	"testing"

	"github.com/finbooks/finbooks_backend/internal/apperrors"
	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/finbooks/finbooks_backend/internal/core/lifecycle"
	portssvc "github.com/finbooks/finbooks_backend/internal/core/ports/services"
	"github.com/finbooks/finbooks_backend/internal/core/services"
	"github.com/finbooks/finbooks_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type BulkServiceTestSuite struct {
	suite.Suite
	mockRepo   *MockEntryRepository
	mockClient *MockAccountingClient
	service    portssvc.BulkSvcFacade
	userID     string
}

func (suite *BulkServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockEntryRepository)
	suite.mockClient = new(MockAccountingClient)
	suite.service = services.NewBulkService(suite.mockRepo, suite.mockClient)
	suite.userID = uuid.NewString()
}

// balancedDraft builds a balanced two-line entry in the given status.
func balancedDraft(status domain.EntryStatus) domain.JournalEntry {
	entryID := uuid.NewString()
	return domain.JournalEntry{
		EntryID:     entryID,
		Description: "Office supplies",
		EntryType:   domain.TypeStandard,
		Status:      status,
		Lines: []domain.JournalEntryLine{
			{LineID: uuid.NewString(), EntryID: entryID, AccountID: "acc-1", DebitAmount: decimal.NewFromInt(100), CreditAmount: decimal.Zero},
			{LineID: uuid.NewString(), EntryID: entryID, AccountID: "acc-2", DebitAmount: decimal.Zero, CreditAmount: decimal.NewFromInt(100)},
		},
	}
}

func remoteSuccess(entryIDs ...string) *domain.BulkOperationResult {
	result := domain.NewBulkOperationResult()
	for _, id := range entryIDs {
		result.AddSucceeded(id)
	}
	return result
}

// --- Test Cases ---

func (suite *BulkServiceTestSuite) TestApplyTransition_EmptyEntryIDs() {
	ctx := context.Background()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, dto.BulkTransitionRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindEntriesByIDs", mock.Anything, mock.Anything)
}

func (suite *BulkServiceTestSuite) TestApplyTransition_CancelWithoutReason() {
	ctx := context.Background()
	req := dto.BulkTransitionRequest{EntryIDs: []string{uuid.NewString()}}

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionCancel, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	// Shape failures must reject the whole request before any entry is touched.
	suite.mockRepo.AssertNotCalled(suite.T(), "FindEntriesByIDs", mock.Anything, mock.Anything)
	suite.mockClient.AssertNotCalled(suite.T(), "ApplyBulkTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BulkServiceTestSuite) TestApplyTransition_Approve_Success() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusDraft)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()
	suite.mockClient.On("ApplyBulkTransition", ctx, lifecycle.TransitionApprove, []string{entry.EntryID}, "bulk approve", false).
		Return(remoteSuccess(entry.EntryID), nil).Once()
	suite.mockRepo.On("UpdateEntryStatus", ctx, entry.EntryID, domain.StatusApproved, "", suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.Equal(1, result.TotalRequested)
	suite.Equal(1, result.TotalSucceeded)
	suite.Equal(0, result.TotalFailed)
	suite.Contains(result.SucceededIDs, entry.EntryID)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockClient.AssertExpectations(suite.T())
}

func (suite *BulkServiceTestSuite) TestApplyTransition_AlreadyInTarget_Idempotent() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusApproved)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalSucceeded)
	suite.Equal(0, result.TotalFailed)
	// Nothing eligible, so the remote API is never called.
	suite.mockClient.AssertNotCalled(suite.T(), "ApplyBulkTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BulkServiceTestSuite) TestApplyTransition_EntryNotFound() {
	ctx := context.Background()
	missingID := uuid.NewString()
	req := dto.BulkTransitionRequest{EntryIDs: []string{missingID}}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{missingID}).
		Return(map[string]domain.JournalEntry{}, nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalRequested)
	suite.Equal(0, result.TotalSucceeded)
	suite.Equal(1, result.TotalFailed)
	suite.Contains(result.FailedEntries[missingID], "not found")
}

func (suite *BulkServiceTestSuite) TestApplyTransition_IllegalTransition() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusDraft)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}, Reason: "undo"}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()

	// A DRAFT cannot be reversed; only POSTED entries can.
	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionReverse, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalFailed)
	suite.NotEmpty(result.FailedEntries[entry.EntryID])
	suite.mockClient.AssertNotCalled(suite.T(), "ApplyBulkTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BulkServiceTestSuite) TestApplyTransition_UnbalancedEntryNotApproved() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusDraft)
	entry.Lines[1].CreditAmount = decimal.NewFromInt(50)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}, Force: true}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	suite.Require().NoError(err)
	// Balance is structural; force never overrides it.
	suite.Equal(1, result.TotalFailed)
	suite.mockClient.AssertNotCalled(suite.T(), "ApplyBulkTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BulkServiceTestSuite) TestApplyTransition_DuplicateReferenceAdvisory() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusDraft)
	entry.Reference = "INV-2025-001"
	otherID := uuid.NewString()
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()
	suite.mockRepo.On("FindEntryIDsByReference", ctx, "INV-2025-001").
		Return([]string{otherID, entry.EntryID}, nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalFailed)
	suite.Contains(result.FailedEntries[entry.EntryID], "already used")
}

func (suite *BulkServiceTestSuite) TestApplyTransition_DuplicateReferenceOverriddenByForce() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusDraft)
	entry.Reference = "INV-2025-001"
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}, Force: true}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()
	suite.mockClient.On("ApplyBulkTransition", ctx, lifecycle.TransitionApprove, []string{entry.EntryID}, "bulk approve", true).
		Return(remoteSuccess(entry.EntryID), nil).Once()
	suite.mockRepo.On("UpdateEntryStatus", ctx, entry.EntryID, domain.StatusApproved, "", suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalSucceeded)
	// Force skips the duplicate-reference lookup entirely.
	suite.mockRepo.AssertNotCalled(suite.T(), "FindEntryIDsByReference", mock.Anything, mock.Anything)
	suite.mockClient.AssertExpectations(suite.T())
}

func (suite *BulkServiceTestSuite) TestApplyTransition_MixedBatchPartition() {
	ctx := context.Background()
	draft := balancedDraft(domain.StatusDraft)
	alreadyApproved := balancedDraft(domain.StatusApproved)
	missingID := uuid.NewString()
	ids := []string{draft.EntryID, alreadyApproved.EntryID, missingID}
	req := dto.BulkTransitionRequest{EntryIDs: ids}

	suite.mockRepo.On("FindEntriesByIDs", ctx, ids).
		Return(map[string]domain.JournalEntry{
			draft.EntryID:           draft,
			alreadyApproved.EntryID: alreadyApproved,
		}, nil).Once()
	suite.mockClient.On("ApplyBulkTransition", ctx, lifecycle.TransitionApprove, []string{draft.EntryID}, "bulk approve", false).
		Return(remoteSuccess(draft.EntryID), nil).Once()
	suite.mockRepo.On("UpdateEntryStatus", ctx, draft.EntryID, domain.StatusApproved, "", suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(3, result.TotalRequested)
	suite.Equal(2, result.TotalSucceeded)
	suite.Equal(1, result.TotalFailed)
	suite.Equal(result.TotalRequested, result.TotalSucceeded+result.TotalFailed)
	suite.ElementsMatch([]string{draft.EntryID, alreadyApproved.EntryID}, result.SucceededIDs)
	suite.Contains(result.FailedEntries, missingID)
}

func (suite *BulkServiceTestSuite) TestApplyTransition_DuplicateIDsCollapsed() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusDraft)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID, entry.EntryID}}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()
	suite.mockClient.On("ApplyBulkTransition", ctx, lifecycle.TransitionApprove, []string{entry.EntryID}, "bulk approve", false).
		Return(remoteSuccess(entry.EntryID), nil).Once()
	suite.mockRepo.On("UpdateEntryStatus", ctx, entry.EntryID, domain.StatusApproved, "", suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalRequested)
}

func (suite *BulkServiceTestSuite) TestApplyTransition_RemoteError() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusDraft)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}}
	expectedErr := assert.AnError

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()
	suite.mockClient.On("ApplyBulkTransition", ctx, lifecycle.TransitionApprove, []string{entry.EntryID}, "bulk approve", false).
		Return(nil, expectedErr).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, expectedErr)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateEntryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BulkServiceTestSuite) TestApplyTransition_CancelMirrorsReason() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusApproved)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}, Reason: "duplicate booking"}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()
	suite.mockClient.On("ApplyBulkTransition", ctx, lifecycle.TransitionCancel, []string{entry.EntryID}, "duplicate booking", false).
		Return(remoteSuccess(entry.EntryID), nil).Once()
	suite.mockRepo.On("UpdateEntryStatus", ctx, entry.EntryID, domain.StatusCancelled, "duplicate booking", suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionCancel, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalSucceeded)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BulkServiceTestSuite) TestApplyTransition_Reverse_MirrorsSwappedLines() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusPosted)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}, Reason: "booked in error"}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()
	suite.mockClient.On("ApplyBulkTransition", ctx, lifecycle.TransitionReverse, []string{entry.EntryID}, "booked in error", false).
		Return(remoteSuccess(entry.EntryID), nil).Once()

	suite.mockRepo.On("Begin", ctx).Return(fakeTx{}, nil).Once()
	var saved domain.JournalEntry
	suite.mockRepo.On("SaveEntryInTx", ctx, fakeTx{}, mock.AnythingOfType("domain.JournalEntry")).
		Run(func(args mock.Arguments) {
			saved = args.Get(2).(domain.JournalEntry)
		}).Return(nil).Once()
	suite.mockRepo.On("UpdateReversalLinksInTx", ctx, fakeTx{}, entry.EntryID, mock.AnythingOfType("string"), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockRepo.On("Commit", ctx, fakeTx{}).Return(nil).Once()
	suite.mockRepo.On("Rollback", ctx, fakeTx{}).Return(nil).Maybe()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionReverse, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalSucceeded)

	// The mirror is a fresh DRAFT linked to the original with swapped amounts.
	suite.Equal(domain.StatusDraft, saved.Status)
	suite.Require().NotNil(saved.OriginalEntryID)
	suite.Equal(entry.EntryID, *saved.OriginalEntryID)
	suite.Require().Len(saved.Lines, 2)
	suite.True(saved.Lines[0].DebitAmount.Equal(entry.Lines[0].CreditAmount))
	suite.True(saved.Lines[0].CreditAmount.Equal(entry.Lines[0].DebitAmount))
	suite.True(saved.Lines[1].DebitAmount.Equal(entry.Lines[1].CreditAmount))
	suite.True(saved.Lines[1].CreditAmount.Equal(entry.Lines[1].DebitAmount))

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BulkServiceTestSuite) TestApplyTransition_Reverse_LinkFailureLeavesNoMirror() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusPosted)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}, Reason: "booked in error"}

	// Two rounds of the same reverse after a link-update failure. Nothing
	// commits, so the retry must run against an unchanged original rather
	// than stacking a second unlinked mirror draft.
	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Twice()
	suite.mockClient.On("ApplyBulkTransition", ctx, lifecycle.TransitionReverse, []string{entry.EntryID}, "booked in error", false).
		Return(remoteSuccess(entry.EntryID), nil).Twice()

	suite.mockRepo.On("Begin", ctx).Return(fakeTx{}, nil).Twice()
	suite.mockRepo.On("SaveEntryInTx", ctx, fakeTx{}, mock.AnythingOfType("domain.JournalEntry")).
		Return(nil).Twice()
	suite.mockRepo.On("UpdateReversalLinksInTx", ctx, fakeTx{}, entry.EntryID, mock.AnythingOfType("string"), suite.userID, mock.AnythingOfType("time.Time")).
		Return(assert.AnError).Twice()
	suite.mockRepo.On("Rollback", ctx, fakeTx{}).Return(nil).Twice()

	first, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionReverse, req, suite.userID)
	suite.Require().NoError(err)
	second, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionReverse, req, suite.userID)
	suite.Require().NoError(err)

	// The remote outcome stands on both attempts.
	suite.Equal(1, first.TotalSucceeded)
	suite.Equal(1, second.TotalSucceeded)

	// The failed mirror write never commits, so no unlinked draft survives
	// either attempt.
	suite.mockRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BulkServiceTestSuite) TestApplyTransition_Reverse_AlreadyReversed() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusPosted)
	reversingID := uuid.NewString()
	entry.ReversingEntryID = &reversingID
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}, Reason: "booked in error"}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionReverse, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalSucceeded)
	suite.mockClient.AssertNotCalled(suite.T(), "ApplyBulkTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BulkServiceTestSuite) TestApplyTransition_MirrorFailureDoesNotReclassify() {
	ctx := context.Background()
	entry := balancedDraft(domain.StatusDraft)
	req := dto.BulkTransitionRequest{EntryIDs: []string{entry.EntryID}}

	suite.mockRepo.On("FindEntriesByIDs", ctx, []string{entry.EntryID}).
		Return(map[string]domain.JournalEntry{entry.EntryID: entry}, nil).Once()
	suite.mockClient.On("ApplyBulkTransition", ctx, lifecycle.TransitionApprove, []string{entry.EntryID}, "bulk approve", false).
		Return(remoteSuccess(entry.EntryID), nil).Once()
	suite.mockRepo.On("UpdateEntryStatus", ctx, entry.EntryID, domain.StatusApproved, "", suite.userID, mock.AnythingOfType("time.Time")).
		Return(assert.AnError).Once()

	result, err := suite.service.ApplyTransition(ctx, lifecycle.TransitionApprove, req, suite.userID)

	// The remote outcome is authoritative; local mirror trouble is only logged.
	suite.Require().NoError(err)
	suite.Equal(1, result.TotalSucceeded)
	suite.Equal(0, result.TotalFailed)
}

func TestBulkServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BulkServiceTestSuite))
}
