package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/finbooks/finbooks_backend/internal/apperrors"
	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/finbooks/finbooks_backend/internal/core/lifecycle"
	portsremote "github.com/finbooks/finbooks_backend/internal/core/ports/remote"
	"github.com/shopspring/decimal"
)

// endpointSpec describes one bulk endpoint: its path and the name of the
// field carrying the succeeded entries. Each endpoint names that field after
// its verb, so normalization is table-driven instead of branching in the
// orchestrator.
type endpointSpec struct {
	path        string
	resultField string
}

var bulkEndpoints = map[lifecycle.Transition]endpointSpec{
	lifecycle.TransitionApprove:      {path: "/bulk-approve", resultField: "approved_entries"},
	lifecycle.TransitionPost:         {path: "/bulk-post", resultField: "posted_entries"},
	lifecycle.TransitionCancel:       {path: "/bulk-cancel", resultField: "cancelled_entries"},
	lifecycle.TransitionResetToDraft: {path: "/bulk-reset-to-draft", resultField: "reset_entries"},
	lifecycle.TransitionReverse:      {path: "/bulk-reverse", resultField: "reversed_entries"},
}

// AccountingClient is the HTTP/JSON client for the remote accounting API.
type AccountingClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewAccountingClient creates a client for the accounting backend.
func NewAccountingClient(baseURL, authToken string, timeout time.Duration) *AccountingClient {
	return &AccountingClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ensure AccountingClient implements the remote port
var _ portsremote.AccountingAPIClient = (*AccountingClient)(nil)

type bulkRequestPayload struct {
	JournalEntryIDs []string `json:"journal_entry_ids"`
	Reason          string   `json:"reason,omitempty"`
	Force           bool     `json:"force,omitempty"`
}

type failedEntryPayload struct {
	EntryID string   `json:"entry_id"`
	Errors  []string `json:"errors"`
}

type bulkResponseEnvelope struct {
	TotalRequested int                  `json:"total_requested"`
	TotalProcessed int                  `json:"total_processed"`
	TotalFailed    int                  `json:"total_failed"`
	FailedEntries  []failedEntryPayload `json:"failed_entries"`
}

// succeededEntryPayload covers endpoints that return entry objects rather
// than bare IDs in their verb field.
type succeededEntryPayload struct {
	EntryID string `json:"entry_id"`
}

// ApplyBulkTransition implements portsremote.AccountingAPIClient.
func (c *AccountingClient) ApplyBulkTransition(ctx context.Context, transition lifecycle.Transition, entryIDs []string, reason string, force bool) (*domain.BulkOperationResult, error) {
	spec, ok := bulkEndpoints[transition]
	if !ok {
		return nil, fmt.Errorf("%w: no bulk endpoint for transition %q", apperrors.ErrInternal, transition)
	}

	body, err := json.Marshal(bulkRequestPayload{
		JournalEntryIDs: entryIDs,
		Reason:          reason,
		Force:           force,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode bulk request: %v", apperrors.ErrInternal, err)
	}

	raw, err := c.post(ctx, spec.path, body)
	if err != nil {
		return nil, err
	}

	return normalizeBulkResponse(raw, spec.resultField, entryIDs)
}

// normalizeBulkResponse maps a per-verb response shape onto the uniform
// BulkOperationResult. Requested IDs the backend reports in neither bucket
// are classified as failed so the partition always covers the request.
func normalizeBulkResponse(raw []byte, resultField string, requestedIDs []string) (*domain.BulkOperationResult, error) {
	var envelope bulkResponseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed bulk response: %v", apperrors.ErrRemote, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: malformed bulk response: %v", apperrors.ErrRemote, err)
	}

	succeededIDs, err := decodeSucceededField(fields[resultField])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed %s field: %v", apperrors.ErrRemote, resultField, err)
	}

	result := domain.NewBulkOperationResult()
	seen := make(map[string]struct{}, len(requestedIDs))

	for _, id := range succeededIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result.AddSucceeded(id)
	}
	for _, failed := range envelope.FailedEntries {
		if _, dup := seen[failed.EntryID]; dup {
			continue
		}
		seen[failed.EntryID] = struct{}{}
		reason := "rejected by accounting backend"
		if len(failed.Errors) > 0 {
			reason = strings.Join(failed.Errors, "; ")
		}
		result.AddFailed(failed.EntryID, reason)
	}
	for _, id := range requestedIDs {
		if _, ok := seen[id]; !ok {
			result.AddFailed(id, "no outcome reported by accounting backend")
		}
	}

	return result, nil
}

// decodeSucceededField accepts either a list of entry objects carrying
// entry_id or a bare list of ID strings.
func decodeSucceededField(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var objects []succeededEntryPayload
	if err := json.Unmarshal(raw, &objects); err == nil {
		ids := make([]string, 0, len(objects))
		allNamed := true
		for _, obj := range objects {
			if obj.EntryID == "" {
				allNamed = false
				break
			}
			ids = append(ids, obj.EntryID)
		}
		if allNamed {
			return ids, nil
		}
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

type schedulePayload struct {
	PaymentTermsID string `json:"payment_terms_id"`
	Schedule       []struct {
		DueDate string          `json:"due_date"`
		Amount  decimal.Decimal `json:"amount"`
	} `json:"schedule"`
}

// FetchPaymentSchedule implements portsremote.AccountingAPIClient.
func (c *AccountingClient) FetchPaymentSchedule(ctx context.Context, paymentTermsID string, invoiceDate time.Time) ([]domain.PaymentScheduleItem, error) {
	path := fmt.Sprintf("/payment-terms/%s/schedule?invoice_date=%s",
		url.PathEscape(paymentTermsID), invoiceDate.Format("2006-01-02"))

	raw, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var payload schedulePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed schedule response: %v", apperrors.ErrRemote, err)
	}

	items := make([]domain.PaymentScheduleItem, 0, len(payload.Schedule))
	for _, item := range payload.Schedule {
		dueDate, err := time.Parse("2006-01-02", item.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad due_date %q in schedule: %v", apperrors.ErrRemote, item.DueDate, err)
		}
		items = append(items, domain.PaymentScheduleItem{DueDate: dueDate, Amount: item.Amount})
	}
	return items, nil
}

func (c *AccountingClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *AccountingClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}
	return c.do(req)
}

func (c *AccountingClient) do(req *http.Request) ([]byte, error) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRemote, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", apperrors.ErrRemote, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(raw)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, fmt.Errorf("%w: %s %s returned %d: %s", apperrors.ErrRemote, req.Method, req.URL.Path, resp.StatusCode, snippet)
	}

	return raw, nil
}
