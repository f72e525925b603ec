package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

const selectUserColumns = `id, username, password, fixed_currency_id, enabled`

func scanUser(s scanner) (*ledger.User, error) {
	var u ledger.User
	if err := s.Scan(&u.ID, &u.Username, &u.Password, &u.FixedCurrencyID, &u.Enabled); err != nil {
		return nil, err
	}

	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *ledger.User) error {
	query := `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING id, fixed_currency_id, enabled
	`

	err := s.db.QueryRowContext(ctx, query, u.Username, u.Password).
		Scan(&u.ID, &u.FixedCurrencyID, &u.Enabled)
	if err != nil {
		return fmt.Errorf("creating user: %w", mapError(err, false))
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*ledger.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "user", id)
	}

	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*ledger.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE username = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, notFound(err, "user", username)
	}

	return u, nil
}

func (s *Store) SetUserEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	return expectAffected(res, "user", id)
}
