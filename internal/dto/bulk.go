package dto

import (
	"github.com/finbooks/finbooks_backend/internal/core/domain"
)

// BulkTransitionRequest asks for one state change across a set of entries.
// Reason is mandatory for cancel, reset-to-draft and reverse; for approve
// and post it defaults to a generic audit string. Force overrides advisory
// precondition failures only.
type BulkTransitionRequest struct {
	EntryIDs []string `json:"entryIDs" binding:"required,min=1"`
	Reason   string   `json:"reason"`
	Force    bool     `json:"force"`
}

// SingleTransitionRequest carries the optional body of a single-entry
// transition. The entry itself is named in the URL path.
type SingleTransitionRequest struct {
	Reason string `json:"reason"`
	Force  bool   `json:"force"`
}

// BulkOperationResultResponse reports the partitioned outcome of a bulk
// transition. SucceededIDs and FailedEntries are disjoint and together
// cover every requested ID.
type BulkOperationResultResponse struct {
	TotalRequested int               `json:"totalRequested"`
	TotalSucceeded int               `json:"totalSucceeded"`
	TotalFailed    int               `json:"totalFailed"`
	SucceededIDs   []string          `json:"succeededIDs"`
	FailedEntries  map[string]string `json:"failedEntries"`
}

// ToBulkOperationResultResponse converts the domain result to its DTO.
func ToBulkOperationResultResponse(result *domain.BulkOperationResult) BulkOperationResultResponse {
	return BulkOperationResultResponse{
		TotalRequested: result.TotalRequested,
		TotalSucceeded: result.TotalSucceeded,
		TotalFailed:    result.TotalFailed,
		SucceededIDs:   result.SucceededIDs,
		FailedEntries:  result.FailedEntries,
	}
}
