package domain

// BulkOperationResult is the uniform outcome of a bulk state transition.
// The succeeded and failed ID collections are disjoint and together cover
// every requested ID, so TotalRequested == TotalSucceeded + TotalFailed
// always holds. Callers must branch on the per-entry buckets, never on the
// aggregate counts alone.
type BulkOperationResult struct {
	TotalRequested int `json:"totalRequested"`
	TotalSucceeded int `json:"totalSucceeded"`
	TotalFailed    int `json:"totalFailed"`

	SucceededIDs []string `json:"succeededIDs"`

	// FailedEntries maps each failed entry ID to a human-readable reason.
	FailedEntries map[string]string `json:"failedEntries"`
}

// NewBulkOperationResult returns an empty result with the map initialised.
func NewBulkOperationResult() *BulkOperationResult {
	return &BulkOperationResult{
		SucceededIDs:  make([]string, 0),
		FailedEntries: make(map[string]string),
	}
}

// AddSucceeded records a succeeded entry ID.
func (r *BulkOperationResult) AddSucceeded(entryID string) {
	r.SucceededIDs = append(r.SucceededIDs, entryID)
	r.TotalSucceeded++
	r.TotalRequested++
}

// AddFailed records a failed entry ID with its reason.
func (r *BulkOperationResult) AddFailed(entryID, reason string) {
	r.FailedEntries[entryID] = reason
	r.TotalFailed++
	r.TotalRequested++
}

// Merge folds another result into this one. Used to combine locally
// pre-filtered entries with the remote batch outcome.
func (r *BulkOperationResult) Merge(other *BulkOperationResult) {
	if other == nil {
		return
	}
	for _, id := range other.SucceededIDs {
		r.AddSucceeded(id)
	}
	for id, reason := range other.FailedEntries {
		r.AddFailed(id, reason)
	}
}
