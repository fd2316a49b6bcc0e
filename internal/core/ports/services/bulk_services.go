package services

import (
	"context"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/finbooks/finbooks_backend/internal/core/lifecycle"
	"github.com/finbooks/finbooks_backend/internal/dto"
)

// BulkTransitionSvc orchestrates one state change across a set of entries.
type BulkTransitionSvc interface {
	// ApplyTransition validates the request shape, evaluates each entry
	// against the state machine, forwards the eligible IDs to the remote
	// accounting API and returns the partitioned result. A non-nil error is
	// reserved for request-shape failures and remote transport failures;
	// per-entry failures live inside the result.
	ApplyTransition(ctx context.Context, transition lifecycle.Transition, req dto.BulkTransitionRequest, requestingUserID string) (*domain.BulkOperationResult, error)
}

// BulkSvcFacade combines all bulk-operation service interfaces
type BulkSvcFacade interface {
	BulkTransitionSvc
}
