package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

// PostgreSQL SQLSTATE codes the store translates.
const (
	codeStringTooLong       = "22001"
	codeInvalidText         = "22P02"
	codeRestrictViolation   = "23001"
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

// mapError translates a PostgreSQL integrity error into the matching ledger
// error. A foreign key error raised by a delete means the row is still
// referenced; raised by an insert or update it means the target is missing.
func mapError(err error, onDelete bool) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var kind error

	switch pgErr.Code {
	case codeUniqueViolation:
		kind = ledger.ErrUniqueViolation
	case codeForeignKeyViolation:
		kind = ledger.ErrForeignKeyViolation
		if onDelete {
			kind = ledger.ErrRestrictViolation
		}
	case codeRestrictViolation:
		kind = ledger.ErrRestrictViolation
	case codeNotNullViolation:
		kind = ledger.ErrNullViolation
	case codeCheckViolation, codeInvalidText, codeStringTooLong:
		kind = ledger.ErrCheckViolation
	default:
		return err
	}

	detail := pgErr.Message
	if pgErr.ConstraintName != "" {
		detail = fmt.Sprintf("%s (%s)", pgErr.Message, pgErr.ConstraintName)
	}

	return fmt.Errorf("%w: %s", kind, detail)
}
