package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbooks/finbooks_backend/internal/apperrors"
	portssvc "github.com/finbooks/finbooks_backend/internal/core/ports/services"
	"github.com/finbooks/finbooks_backend/internal/dto"
	"github.com/finbooks/finbooks_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// entryHandler handles HTTP requests related to journal entries.
type entryHandler struct {
	entryService portssvc.EntrySvcFacade
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(entryService portssvc.EntrySvcFacade) *entryHandler {
	return &entryHandler{
		entryService: entryService,
	}
}

// respondWithError maps application errors onto HTTP status codes.
func respondWithError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRemote):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Accounting backend unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// createEntry godoc
// @Summary Create a draft journal entry
// @Description Creates a new journal entry in DRAFT status with its lines
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateEntryRequest true "Entry and lines"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create entry"
// @Router /entries [post]
func (h *entryHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Warn("Failed to create entry", slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to create entry")
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a journal entry and its lines
// @Description Retrieves a journal entry with its lines by ID
// @Tags entries
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Router /entries/{entryID} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := h.entryService.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to get entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		respondWithError(c, err, "Failed to retrieve entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a paginated list of journal entries, optionally filtered by status
// @Tags entries
// @Produce  json
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token"
// @Param   status query string false "Filter by status (DRAFT, APPROVED, POSTED, CANCELLED)"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Router /entries [get]
func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.entryService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err, "Failed to list entries")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateEntry godoc
// @Summary Update a draft journal entry
// @Description Updates header fields and, while DRAFT, the lines of an entry
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   entry body dto.UpdateEntryRequest true "Fields to update"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry can no longer be modified"
// @Router /entries/{entryID} [patch]
func (h *entryHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for updateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.UpdateEntry(c.Request.Context(), entryID, req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to update entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// validateEntry godoc
// @Summary Validate a journal entry
// @Description Runs the double-entry checks against a stored entry without mutating it
// @Tags entries
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.ValidationResultResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /entries/{entryID}/validate [post]
func (h *entryHandler) validateEntry(c *gin.Context) {
	entryID := c.Param("entryID")

	result, err := h.entryService.ValidateEntry(c.Request.Context(), entryID)
	if err != nil {
		respondWithError(c, err, "Failed to validate entry")
		return
	}

	c.JSON(http.StatusOK, dto.ValidationResultResponse{
		IsValid:     result.IsValid,
		IsBalanced:  result.IsBalanced,
		TotalDebit:  result.TotalDebit,
		TotalCredit: result.TotalCredit,
		Issues:      result.Issues,
	})
}

// getDueDates godoc
// @Summary Resolve due dates for a journal entry
// @Description Resolves the due-date view of every line, fetching payment schedules where linked
// @Tags entries
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryDueDateSummaryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 502 {object} map[string]string "Accounting backend unavailable"
// @Router /entries/{entryID}/due-dates [get]
func (h *entryHandler) getDueDates(c *gin.Context) {
	entryID := c.Param("entryID")

	summary, err := h.entryService.ResolveDueDates(c.Request.Context(), entryID)
	if err != nil {
		respondWithError(c, err, "Failed to resolve due dates")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// registerEntryRoutes registers entry specific routes
func registerEntryRoutes(group *gin.RouterGroup, entryService portssvc.EntrySvcFacade) {
	handler := newEntryHandler(entryService)

	entries := group.Group("/entries")
	{
		entries.POST("", handler.createEntry)
		entries.GET("", handler.listEntries)
		entries.GET("/:entryID", handler.getEntry)
		entries.PATCH("/:entryID", handler.updateEntry)
		entries.POST("/:entryID/validate", handler.validateEntry)
		entries.GET("/:entryID/due-dates", handler.getDueDates)
	}
}
