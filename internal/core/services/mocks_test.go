package services_test

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_backend/internal/core/domain"
	"github.com/finbooks/finbooks_backend/internal/core/lifecycle"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// fakeTx satisfies pgx.Tx so the mocked Begin can hand out a transaction
// handle; the mocked repository methods never touch it.
type fakeTx struct{}

func (fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return fakeTx{}, nil }
func (fakeTx) Commit(ctx context.Context) error          { return nil }
func (fakeTx) Rollback(ctx context.Context) error        { return nil }
func (fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (fakeTx) Conn() *pgx.Conn                                               { return nil }

// MockEntryRepository is a mock type for the EntryRepositoryWithTx interface
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) FindEntriesByIDs(ctx context.Context, entryIDs []string) (map[string]domain.JournalEntry, error) {
	args := m.Called(ctx, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) ListEntries(ctx context.Context, limit int, nextToken *string, status *domain.EntryStatus) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, limit, nextToken, status)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockEntryRepository) FindEntryIDsByReference(ctx context.Context, reference string) ([]string, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, reason string, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, entryID, status, reason, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockEntryRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateReversalLinksInTx(ctx context.Context, tx pgx.Tx, originalEntryID string, reversingEntryID string, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, originalEntryID, reversingEntryID, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockEntryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockEntryRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockEntryRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockAccountingClient is a mock type for the AccountingAPIClient interface
type MockAccountingClient struct {
	mock.Mock
}

func (m *MockAccountingClient) ApplyBulkTransition(ctx context.Context, transition lifecycle.Transition, entryIDs []string, reason string, force bool) (*domain.BulkOperationResult, error) {
	args := m.Called(ctx, transition, entryIDs, reason, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkOperationResult), args.Error(1)
}

func (m *MockAccountingClient) FetchPaymentSchedule(ctx context.Context, paymentTermsID string, invoiceDate time.Time) ([]domain.PaymentScheduleItem, error) {
	args := m.Called(ctx, paymentTermsID, invoiceDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentScheduleItem), args.Error(1)
}
