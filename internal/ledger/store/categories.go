package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

const selectCategoryColumns = `id, user_id, name, archived`

func scanCategory(s scanner) (*ledger.Category, error) {
	var c ledger.Category
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Archived); err != nil {
		return nil, err
	}

	return &c, nil
}

func getCategory(ctx context.Context, q querier, id uuid.UUID, lock string) (*ledger.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE id = $1` + lock

	c, err := scanCategory(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "category", id)
	}

	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *ledger.Category) error {
	query := `
		INSERT INTO categories (user_id, name)
		VALUES ($1, $2)
		RETURNING id, archived
	`

	if err := s.db.QueryRowContext(ctx, query, c.UserID, c.Name).Scan(&c.ID, &c.Archived); err != nil {
		return fmt.Errorf("creating category: %w", mapError(err, false))
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*ledger.Category, error) {
	return getCategory(ctx, s.db, id, "")
}

func (s *Store) ListCategories(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE user_id = $1`
	if !filter.IncludeArchived {
		query += ` AND NOT archived`
	}

	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []*ledger.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return categories, nil
}

func (s *Store) ArchiveCategory(ctx context.Context, id uuid.UUID) error {
	if err := execByID(ctx, s.db, `UPDATE categories SET archived = TRUE WHERE id = $1`, "category", id, false); err != nil {
		return fmt.Errorf("archiving category: %w", err)
	}

	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := execByID(ctx, s.db, `DELETE FROM categories WHERE id = $1`, "category", id, true); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	return nil
}
