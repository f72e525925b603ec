package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

// forShare keeps a referenced row from being archived or deleted until the
// transaction reading it ends.
const forShare = ` FOR SHARE`

type writeTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (ledger.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &writeTx{tx: dbTx}, nil
}

func (wtx *writeTx) Commit() error   { return wtx.tx.Commit() }
func (wtx *writeTx) Rollback() error { return wtx.tx.Rollback() }

func (wtx *writeTx) GetCurrency(ctx context.Context, id uuid.UUID) (*ledger.Currency, error) {
	return getCurrency(ctx, wtx.tx, id, forShare)
}

func (wtx *writeTx) GetCategory(ctx context.Context, id uuid.UUID) (*ledger.Category, error) {
	return getCategory(ctx, wtx.tx, id, forShare)
}

// SetFixedCurrency sets or clears the user's fixed currency. Ownership is
// checked by the service; the foreign key only guarantees existence.
func (wtx *writeTx) SetFixedCurrency(ctx context.Context, userID uuid.UUID, currencyID *uuid.UUID) error {
	res, err := wtx.tx.ExecContext(ctx, `UPDATE users SET fixed_currency_id = $2 WHERE id = $1`, userID, currencyID)
	if err != nil {
		return fmt.Errorf("setting fixed currency: %w", mapError(err, false))
	}

	return expectAffected(res, "user", userID)
}

func (wtx *writeTx) CreateSource(ctx context.Context, src *ledger.Source) error {
	query := `
		INSERT INTO sources (user_id, name, currency_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, amount, archived
	`

	err := wtx.tx.QueryRowContext(ctx, query, src.UserID, src.Name, src.CurrencyID, src.Amount).
		Scan(&src.ID, &src.Amount, &src.Archived)
	if err != nil {
		return fmt.Errorf("creating source: %w", mapError(err, false))
	}

	return nil
}
