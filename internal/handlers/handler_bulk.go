package handlers

import (
	"log/slog"
	"net/http"

	"github.com/finbooks/finbooks_backend/internal/core/lifecycle"
	portssvc "github.com/finbooks/finbooks_backend/internal/core/ports/services"
	"github.com/finbooks/finbooks_backend/internal/dto"
	"github.com/finbooks/finbooks_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// bulkHandler handles HTTP requests for bulk and single state transitions.
type bulkHandler struct {
	bulkService portssvc.BulkSvcFacade
}

// newBulkHandler creates a new bulkHandler.
func newBulkHandler(bulkService portssvc.BulkSvcFacade) *bulkHandler {
	return &bulkHandler{
		bulkService: bulkService,
	}
}

// handleBulk applies one transition to the set of entry IDs in the body.
func (h *bulkHandler) handleBulk(c *gin.Context, transition lifecycle.Transition) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for bulk transition", slog.String("error", err.Error()), slog.String("transition", string(transition)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.bulkService.ApplyTransition(c.Request.Context(), transition, req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to apply bulk transition")
		return
	}

	// Partial failure is the expected steady state; the response always
	// enumerates every failed ID with its reason.
	c.JSON(http.StatusOK, dto.ToBulkOperationResultResponse(result))
}

// handleSingle applies one transition to the entry named in the path,
// reusing the bulk orchestration for a single ID.
func (h *bulkHandler) handleSingle(c *gin.Context, transition lifecycle.Transition) {
	entryID := c.Param("entryID")

	var body dto.SingleTransitionRequest
	// A body is optional for approve/post.
	_ = c.ShouldBindJSON(&body)

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	req := dto.BulkTransitionRequest{
		EntryIDs: []string{entryID},
		Reason:   body.Reason,
		Force:    body.Force,
	}
	result, err := h.bulkService.ApplyTransition(c.Request.Context(), transition, req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to apply transition")
		return
	}

	if reason, failed := result.FailedEntries[entryID]; failed {
		c.JSON(http.StatusConflict, gin.H{"error": reason})
		return
	}
	c.JSON(http.StatusOK, dto.ToBulkOperationResultResponse(result))
}

// bulkApprove godoc
// @Summary Bulk approve journal entries
// @Description Approves a set of DRAFT entries; partial failures are reported per entry
// @Tags bulk
// @Accept  json
// @Produce  json
// @Param   request body dto.BulkTransitionRequest true "Entry IDs and options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 400 {object} map[string]string "Invalid request shape"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/bulk-approve [post]
func (h *bulkHandler) bulkApprove(c *gin.Context) {
	h.handleBulk(c, lifecycle.TransitionApprove)
}

// bulkPost godoc
// @Summary Bulk post journal entries
// @Description Posts a set of APPROVED entries to the ledger; partial failures are reported per entry
// @Tags bulk
// @Accept  json
// @Produce  json
// @Param   request body dto.BulkTransitionRequest true "Entry IDs and options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 400 {object} map[string]string "Invalid request shape"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/bulk-post [post]
func (h *bulkHandler) bulkPost(c *gin.Context) {
	h.handleBulk(c, lifecycle.TransitionPost)
}

// bulkCancel godoc
// @Summary Bulk cancel journal entries
// @Description Cancels a set of entries; a non-empty reason is required
// @Tags bulk
// @Accept  json
// @Produce  json
// @Param   request body dto.BulkTransitionRequest true "Entry IDs, reason and options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 400 {object} map[string]string "Invalid request shape or missing reason"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/bulk-cancel [post]
func (h *bulkHandler) bulkCancel(c *gin.Context) {
	h.handleBulk(c, lifecycle.TransitionCancel)
}

// bulkResetToDraft godoc
// @Summary Bulk reset journal entries to draft
// @Description Moves a set of APPROVED entries back to DRAFT; a non-empty reason is required
// @Tags bulk
// @Accept  json
// @Produce  json
// @Param   request body dto.BulkTransitionRequest true "Entry IDs, reason and options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 400 {object} map[string]string "Invalid request shape or missing reason"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/bulk-reset-to-draft [post]
func (h *bulkHandler) bulkResetToDraft(c *gin.Context) {
	h.handleBulk(c, lifecycle.TransitionResetToDraft)
}

// bulkReverse godoc
// @Summary Bulk reverse journal entries
// @Description Reverses a set of POSTED entries and mirrors each reversal as a linked DRAFT; a non-empty reason is required
// @Tags bulk
// @Accept  json
// @Produce  json
// @Param   request body dto.BulkTransitionRequest true "Entry IDs, reason and options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 400 {object} map[string]string "Invalid request shape or missing reason"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/bulk-reverse [post]
func (h *bulkHandler) bulkReverse(c *gin.Context) {
	h.handleBulk(c, lifecycle.TransitionReverse)
}

// approveEntry godoc
// @Summary Approve a journal entry
// @Description Approves a single DRAFT entry
// @Tags transitions
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   request body dto.SingleTransitionRequest false "Options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 409 {object} map[string]string "Entry not eligible for approval"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/{entryID}/approve [post]
func (h *bulkHandler) approveEntry(c *gin.Context) {
	h.handleSingle(c, lifecycle.TransitionApprove)
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Posts a single APPROVED entry to the ledger
// @Tags transitions
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   request body dto.SingleTransitionRequest false "Options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 409 {object} map[string]string "Entry not eligible for posting"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/{entryID}/post [post]
func (h *bulkHandler) postEntry(c *gin.Context) {
	h.handleSingle(c, lifecycle.TransitionPost)
}

// cancelEntry godoc
// @Summary Cancel a journal entry
// @Description Cancels a single entry; a non-empty reason is required
// @Tags transitions
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   request body dto.SingleTransitionRequest true "Reason and options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 409 {object} map[string]string "Entry not eligible for cancellation"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/{entryID}/cancel [post]
func (h *bulkHandler) cancelEntry(c *gin.Context) {
	h.handleSingle(c, lifecycle.TransitionCancel)
}

// resetEntryToDraft godoc
// @Summary Reset a journal entry to draft
// @Description Moves a single APPROVED entry back to DRAFT; a non-empty reason is required
// @Tags transitions
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   request body dto.SingleTransitionRequest true "Reason and options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 409 {object} map[string]string "Entry not eligible for reset"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/{entryID}/reset-to-draft [post]
func (h *bulkHandler) resetEntryToDraft(c *gin.Context) {
	h.handleSingle(c, lifecycle.TransitionResetToDraft)
}

// reverseEntry godoc
// @Summary Reverse a journal entry
// @Description Reverses a single POSTED entry and mirrors the reversal as a linked DRAFT; a non-empty reason is required
// @Tags transitions
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   request body dto.SingleTransitionRequest true "Reason and options"
// @Success 200 {object} dto.BulkOperationResultResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 409 {object} map[string]string "Entry not eligible for reversal"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/{entryID}/reverse [post]
func (h *bulkHandler) reverseEntry(c *gin.Context) {
	h.handleSingle(c, lifecycle.TransitionReverse)
}

func registerBulkRoutes(group *gin.RouterGroup, bulkService portssvc.BulkSvcFacade) {
	handler := newBulkHandler(bulkService)

	entries := group.Group("/entries")
	{
		entries.POST("/bulk-approve", handler.bulkApprove)
		entries.POST("/bulk-post", handler.bulkPost)
		entries.POST("/bulk-cancel", handler.bulkCancel)
		entries.POST("/bulk-reset-to-draft", handler.bulkResetToDraft)
		entries.POST("/bulk-reverse", handler.bulkReverse)

		entries.POST("/:entryID/approve", handler.approveEntry)
		entries.POST("/:entryID/post", handler.postEntry)
		entries.POST("/:entryID/cancel", handler.cancelEntry)
		entries.POST("/:entryID/reset-to-draft", handler.resetEntryToDraft)
		entries.POST("/:entryID/reverse", handler.reverseEntry)
	}
}
