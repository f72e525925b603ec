package ledger

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrUniqueViolation is returned for a duplicate username or a duplicate
	// (user, name) pair among currencies, categories and sources.
	ErrUniqueViolation = errors.New("unique violation")

	// ErrForeignKeyViolation is returned when a reference points to a row that
	// does not exist or is owned by a different user.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrRestrictViolation is returned when deleting a row that is still
	// referenced.
	ErrRestrictViolation = errors.New("restrict violation")

	ErrNullViolation  = errors.New("null constraint violation")
	ErrCheckViolation = errors.New("check violation")

	// ErrArchived is returned when a new reference targets an archived row.
	ErrArchived = errors.New("archived")
)
