package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

const selectSourceColumns = `id, user_id, name, currency_id, amount, archived`

func scanSource(s scanner) (*ledger.Source, error) {
	var src ledger.Source
	if err := s.Scan(&src.ID, &src.UserID, &src.Name, &src.CurrencyID, &src.Amount, &src.Archived); err != nil {
		return nil, err
	}

	return &src, nil
}

func (s *Store) GetSource(ctx context.Context, id uuid.UUID) (*ledger.Source, error) {
	query := `SELECT ` + selectSourceColumns + ` FROM sources WHERE id = $1`

	src, err := scanSource(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "source", id)
	}

	return src, nil
}

func (s *Store) ListSources(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Source, error) {
	query := `SELECT ` + selectSourceColumns + ` FROM sources WHERE user_id = $1`
	if !filter.IncludeArchived {
		query += ` AND NOT archived`
	}

	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []*ledger.Source

	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}

		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source rows: %w", err)
	}

	return sources, nil
}

func (s *Store) ArchiveSource(ctx context.Context, id uuid.UUID) error {
	if err := execByID(ctx, s.db, `UPDATE sources SET archived = TRUE WHERE id = $1`, "source", id, false); err != nil {
		return fmt.Errorf("archiving source: %w", err)
	}

	return nil
}

func (s *Store) DeleteSource(ctx context.Context, id uuid.UUID) error {
	if err := execByID(ctx, s.db, `DELETE FROM sources WHERE id = $1`, "source", id, true); err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}

	return nil
}
