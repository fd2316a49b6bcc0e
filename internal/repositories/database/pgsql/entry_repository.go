package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/finbooks_backend/internal/apperrors"
	"github.com/finbooks/finbooks_backend/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_backend/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, entry_date, reference, description, entry_type, status, cancellation_reason, reversing_entry_id, original_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, debit_amount, credit_amount, third_party_id, cost_center_id, product_id, payment_terms_id, due_date, invoice_date, notes, created_at, created_by, last_updated_at, last_updated_by`

// PgxEntryRepository persists journal entries and their lines in PostgreSQL.
type PgxEntryRepository struct {
	BaseRepository
}

// NewPgxEntryRepository creates a new repository for journal-entry data.
func NewPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{BaseRepository{Pool: pool}}
}

// SaveEntry persists a new entry and its lines within a DB transaction.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	if err := r.SaveEntryInTx(ctx, tx, entry); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit transaction for entry %s: %w", entry.EntryID, err)
	}

	return nil
}

// SaveEntryInTx persists a new entry and its lines on an open transaction.
func (r *PgxEntryRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.EntryDate,
		entry.Reference,
		entry.Description,
		entry.EntryType,
		entry.Status,
		entry.CancellationReason,
		entry.ReversingEntryID,
		entry.OriginalEntryID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}

	if err := insertLines(ctx, tx, entry.Lines); err != nil {
		return fmt.Errorf("failed to insert lines for entry %s: %w", entry.EntryID, err)
	}

	return nil
}

// insertLines batches line inserts on an open transaction.
func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalEntryLine) error {
	if len(lines) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_entry_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	for _, line := range lines {
		batch.Queue(lineQuery,
			line.LineID,
			line.EntryID,
			line.AccountID,
			line.DebitAmount,
			line.CreditAmount,
			line.ThirdPartyID,
			line.CostCenterID,
			line.ProductID,
			line.PaymentTermsID,
			line.DueDate,
			line.InvoiceDate,
			line.Notes,
			line.CreatedAt,
			line.CreatedBy,
			line.LastUpdatedAt,
			line.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	return br.Close()
}

// UpdateEntry replaces the header fields and lines of a stored entry within
// a DB transaction.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	updateQuery := `
		UPDATE journal_entries
		SET entry_date = $2, reference = $3, description = $4, entry_type = $5, last_updated_at = $6, last_updated_by = $7
		WHERE entry_id = $1;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		entry.EntryID,
		entry.EntryDate,
		entry.Reference,
		entry.Description,
		entry.EntryType,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", entry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	// Lines are replaced wholesale; the service only permits this while the
	// entry is still a draft.
	if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
		return fmt.Errorf("failed to clear lines for entry %s: %w", entry.EntryID, err)
	}
	if err := insertLines(ctx, tx, entry.Lines); err != nil {
		return fmt.Errorf("failed to insert lines for entry %s: %w", entry.EntryID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit transaction for entry %s: %w", entry.EntryID, err)
	}

	return nil
}

// UpdateEntryStatus moves a stored entry to a new status.
func (r *PgxEntryRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, reason string, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2, cancellation_reason = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, entryID, status, reason, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to update status for entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateReversalLinksInTx records the two-way linkage between an original
// entry and its reversal on an open transaction. Callers run it in the same
// transaction that saves the mirror so the two can never land apart.
func (r *PgxEntryRepository) UpdateReversalLinksInTx(ctx context.Context, tx pgx.Tx, originalEntryID string, reversingEntryID string, updatedByUserID string, updatedAt time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET reversing_entry_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1;
	`, originalEntryID, reversingEntryID, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to link original entry %s: %w", originalEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET original_entry_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1;
	`, reversingEntryID, originalEntryID, updatedAt, updatedByUserID); err != nil {
		return fmt.Errorf("failed to link reversing entry %s: %w", reversingEntryID, err)
	}

	return nil
}

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	err := row.Scan(
		&entry.EntryID,
		&entry.EntryDate,
		&entry.Reference,
		&entry.Description,
		&entry.EntryType,
		&entry.Status,
		&entry.CancellationReason,
		&entry.ReversingEntryID,
		&entry.OriginalEntryID,
		&entry.CreatedAt,
		&entry.CreatedBy,
		&entry.LastUpdatedAt,
		&entry.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindEntryByID retrieves an entry and its lines by ID.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}

	lines, err := r.findLinesByEntryIDs(ctx, []string{entryID})
	if err != nil {
		return nil, err
	}
	entry.Lines = lines[entryID]
	if entry.Lines == nil {
		entry.Lines = []domain.JournalEntryLine{}
	}

	return entry, nil
}

// FindEntriesByIDs retrieves entries (with lines) keyed by entry ID.
// IDs with no stored entry are simply absent from the result.
func (r *PgxEntryRepository) FindEntriesByIDs(ctx context.Context, entryIDs []string) (map[string]domain.JournalEntry, error) {
	if len(entryIDs) == 0 {
		return map[string]domain.JournalEntry{}, nil
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by IDs: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]domain.JournalEntry, len(entryIDs))
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entry.Lines = []domain.JournalEntryLine{}
		entries[entry.EntryID] = *entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	lines, err := r.findLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		return nil, err
	}
	for entryID, entryLines := range lines {
		if entry, ok := entries[entryID]; ok {
			entry.Lines = entryLines
			entries[entryID] = entry
		}
	}

	return entries, nil
}

// findLinesByEntryIDs retrieves lines for multiple entries, grouped by
// entry ID.
func (r *PgxEntryRepository) findLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM journal_entry_lines
		WHERE entry_id = ANY($1)
		ORDER BY created_at, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[string][]domain.JournalEntryLine)
	for rows.Next() {
		var line domain.JournalEntryLine
		if err := rows.Scan(
			&line.LineID,
			&line.EntryID,
			&line.AccountID,
			&line.DebitAmount,
			&line.CreditAmount,
			&line.ThirdPartyID,
			&line.CostCenterID,
			&line.ProductID,
			&line.PaymentTermsID,
			&line.DueDate,
			&line.InvoiceDate,
			&line.Notes,
			&line.CreatedAt,
			&line.CreatedBy,
			&line.LastUpdatedAt,
			&line.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines[line.EntryID] = append(lines[line.EntryID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}

	return lines, nil
}

// ListEntries retrieves a page of entries ordered by entry date then
// creation time, newest first, using token-based pagination.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, limit int, nextToken *string, status *domain.EntryStatus) ([]domain.JournalEntry, *string, error) {
	args := []interface{}{}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE 1=1`

	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, entryDate)
		dateArg := len(args)
		args = append(args, createdAt)
		createdArg := len(args)
		query += fmt.Sprintf(" AND (entry_date, created_at) < ($%d, $%d)", dateArg, createdArg)
	}

	// Fetch one extra row to know whether another page exists.
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY entry_date DESC, created_at DESC LIMIT $%d;", len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		token = &t
	}

	return entries, token, nil
}

// FindEntryIDsByReference returns the IDs of entries sharing a reference.
func (r *PgxEntryRepository) FindEntryIDsByReference(ctx context.Context, reference string) ([]string, error) {
	query := `SELECT entry_id FROM journal_entries WHERE reference = $1 AND status <> $2;`
	rows, err := r.Pool.Query(ctx, query, reference, domain.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by reference: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entry ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry ID rows: %w", err)
	}

	return ids, nil
}
