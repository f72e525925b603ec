package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DeleteUser removes a user and everything the user owns. Children go first
// so that no restrict constraint between them fires.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	steps := []struct {
		what  string
		query string
	}{
		{"deleting entries", `DELETE FROM entries WHERE user_id = $1`},
		{"deleting sources", `DELETE FROM sources WHERE user_id = $1`},
		{"deleting categories", `DELETE FROM categories WHERE user_id = $1`},
		{"clearing fixed currency", `UPDATE users SET fixed_currency_id = NULL WHERE id = $1`},
		{"deleting currencies", `DELETE FROM currencies WHERE user_id = $1`},
	}

	for _, step := range steps {
		if _, err := dbTx.ExecContext(ctx, step.query, id); err != nil {
			return fmt.Errorf("%s: %w", step.what, mapError(err, true))
		}
	}

	res, err := dbTx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", mapError(err, true))
	}

	if err := expectAffected(res, "user", id); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// expectAffected turns an update or delete that touched no row into ErrNotFound.
func expectAffected(res sql.Result, kind string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ledger.ErrNotFound)
	}

	return nil
}

func notFound(err error, kind string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", kind, id, ledger.ErrNotFound)
	}

	return fmt.Errorf("getting %s: %w", kind, err)
}

// execByID runs a single-row update or delete keyed by id.
func execByID(ctx context.Context, q querier, query, kind string, id uuid.UUID, onDelete bool) error {
	res, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return mapError(err, onDelete)
	}

	return expectAffected(res, kind, id)
}
