package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

const selectCurrencyColumns = `id, user_id, name, rate_to_fixed, archived`

func scanCurrency(s scanner) (*ledger.Currency, error) {
	var c ledger.Currency
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.RateToFixed, &c.Archived); err != nil {
		return nil, err
	}

	return &c, nil
}

func getCurrency(ctx context.Context, q querier, id uuid.UUID, lock string) (*ledger.Currency, error) {
	query := `SELECT ` + selectCurrencyColumns + ` FROM currencies WHERE id = $1` + lock

	c, err := scanCurrency(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "currency", id)
	}

	return c, nil
}

func (s *Store) CreateCurrency(ctx context.Context, c *ledger.Currency) error {
	query := `
		INSERT INTO currencies (user_id, name, rate_to_fixed)
		VALUES ($1, $2, $3)
		RETURNING id, archived
	`

	err := s.db.QueryRowContext(ctx, query, c.UserID, c.Name, c.RateToFixed).Scan(&c.ID, &c.Archived)
	if err != nil {
		return fmt.Errorf("creating currency: %w", mapError(err, false))
	}

	return nil
}

func (s *Store) GetCurrency(ctx context.Context, id uuid.UUID) (*ledger.Currency, error) {
	return getCurrency(ctx, s.db, id, "")
}

func (s *Store) UpdateCurrency(ctx context.Context, c *ledger.Currency) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE currencies SET name = $2, rate_to_fixed = $3 WHERE id = $1`,
		c.ID, c.Name, c.RateToFixed,
	)
	if err != nil {
		return fmt.Errorf("updating currency: %w", mapError(err, false))
	}

	return expectAffected(res, "currency", c.ID)
}

func (s *Store) ListCurrencies(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Currency, error) {
	query := `SELECT ` + selectCurrencyColumns + ` FROM currencies WHERE user_id = $1`
	if !filter.IncludeArchived {
		query += ` AND NOT archived`
	}

	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing currencies: %w", err)
	}
	defer rows.Close()

	var currencies []*ledger.Currency

	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning currency: %w", err)
		}

		currencies = append(currencies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating currency rows: %w", err)
	}

	return currencies, nil
}

func (s *Store) ArchiveCurrency(ctx context.Context, id uuid.UUID) error {
	if err := execByID(ctx, s.db, `UPDATE currencies SET archived = TRUE WHERE id = $1`, "currency", id, false); err != nil {
		return fmt.Errorf("archiving currency: %w", err)
	}

	return nil
}

// DeleteCurrency fails with ledger.ErrRestrictViolation while a source or an
// entry still uses the currency. A user's fixed currency reference is cleared.
func (s *Store) DeleteCurrency(ctx context.Context, id uuid.UUID) error {
	if err := execByID(ctx, s.db, `DELETE FROM currencies WHERE id = $1`, "currency", id, true); err != nil {
		return fmt.Errorf("deleting currency: %w", err)
	}

	return nil
}
