package remote

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/finbooks/finbooks_backend/internal/core/lifecycle"
)

// AccountingAPIClient is the contract consumed for the remote accounting
// backend. Implementations translate each bulk endpoint's per-verb response
// shape into the uniform BulkOperationResult so the orchestrator never
// branches on endpoint-specific field names.
type AccountingAPIClient interface {
	// ApplyBulkTransition issues one batch request for the given transition
	// and returns the normalized outcome. A returned error means the call
	// itself failed (wrapped apperrors.ErrRemote); per-entry failures are
	// reported inside the result, not as an error.
	ApplyBulkTransition(ctx context.Context, transition lifecycle.Transition, entryIDs []string, reason string, force bool) (*domain.BulkOperationResult, error)

	// FetchPaymentSchedule retrieves the amortization schedule computed from
	// a payment-terms definition and an invoice date.
	FetchPaymentSchedule(ctx context.Context, paymentTermsID string, invoiceDate time.Time) ([]domain.PaymentScheduleItem, error)
}
