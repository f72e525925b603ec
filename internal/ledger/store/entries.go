package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

const selectEntryColumns = `
	e.id, e.user_id, e.description, e.target, e.category_id, e.amount, e.date, e.created_at,
	e.currency_id, e.entry_type, e.source_id, e.secondary_source_id, e.conversion_rate,
	e.conversion_rate_to_fixed, e.archived
`

// scanEntry reads an entry row in selectEntryColumns order.
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var entryType string

	if err := s.Scan(
		&e.ID, &e.UserID, &e.Description, &e.Target, &e.CategoryID, &e.Amount, &e.Date, &e.CreatedAt,
		&e.CurrencyID, &entryType, &e.SourceID, &e.SecondarySourceID, &e.ConversionRate,
		&e.ConversionRateToFixed, &e.Archived,
	); err != nil {
		return nil, err
	}

	e.Type = ledger.EntryType(entryType)

	return &e, nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM entries e WHERE e.id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "entry", id)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM entries e WHERE e.user_id = $1`

	args := []any{filter.UserID}
	argIdx := 2

	if !filter.IncludeArchived {
		query += ` AND NOT e.archived`
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND e.entry_type = $%d", argIdx)

		args = append(args, string(*filter.Type))
		argIdx++
	}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND e.category_id = $%d", argIdx)

		args = append(args, *filter.CategoryID)
		argIdx++
	}

	if filter.SourceID != nil {
		query += fmt.Sprintf(" AND (e.source_id = $%d OR e.secondary_source_id = $%d)", argIdx, argIdx)

		args = append(args, *filter.SourceID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND e.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND e.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY e.date ASC, e.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", mapError(err, false))
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}

// LockSources loads and row-locks the given sources in id order. Missing ids
// are absent from the result.
func (wtx *writeTx) LockSources(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ledger.Source, error) {
	sources := make(map[uuid.UUID]*ledger.Source, len(ids))
	if len(ids) == 0 {
		return sources, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	query := `SELECT ` + selectSourceColumns + `
		FROM sources
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE`

	rows, err := wtx.tx.QueryContext(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("locking sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}

		sources[src.ID] = src
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source rows: %w", err)
	}

	return sources, nil
}

func (wtx *writeTx) LockEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM entries e WHERE e.id = $1 FOR UPDATE`

	e, err := scanEntry(wtx.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "entry", id)
	}

	return e, nil
}

func (wtx *writeTx) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO entries (
			user_id, description, target, category_id, amount, date, currency_id, entry_type,
			source_id, secondary_source_id, conversion_rate, conversion_rate_to_fixed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, archived
	`

	err := wtx.tx.QueryRowContext(ctx, query,
		e.UserID,
		e.Description,
		e.Target,
		e.CategoryID,
		e.Amount,
		e.Date,
		e.CurrencyID,
		string(e.Type),
		e.SourceID,
		e.SecondarySourceID,
		e.ConversionRate,
		e.ConversionRateToFixed,
	).Scan(&e.ID, &e.CreatedAt, &e.Archived)
	if err != nil {
		return fmt.Errorf("creating entry: %w", mapError(err, false))
	}

	return nil
}

func (wtx *writeTx) AdjustSourceAmount(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	res, err := wtx.tx.ExecContext(ctx, `UPDATE sources SET amount = amount + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("updating source amount: %w", mapError(err, false))
	}

	return expectAffected(res, "source", id)
}

func (wtx *writeTx) ArchiveEntry(ctx context.Context, id uuid.UUID) error {
	if err := execByID(ctx, wtx.tx, `UPDATE entries SET archived = TRUE WHERE id = $1`, "entry", id, false); err != nil {
		return fmt.Errorf("archiving entry: %w", err)
	}

	return nil
}

func (wtx *writeTx) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if err := execByID(ctx, wtx.tx, `DELETE FROM entries WHERE id = $1`, "entry", id, true); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	return nil
}
