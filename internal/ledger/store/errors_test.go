package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		onDelete bool
		want     error
	}{
		{name: "Unique", code: codeUniqueViolation, want: ledger.ErrUniqueViolation},
		{name: "ForeignKeyOnInsert", code: codeForeignKeyViolation, want: ledger.ErrForeignKeyViolation},
		{name: "ForeignKeyOnDelete", code: codeForeignKeyViolation, onDelete: true, want: ledger.ErrRestrictViolation},
		{name: "Restrict", code: codeRestrictViolation, want: ledger.ErrRestrictViolation},
		{name: "NotNull", code: codeNotNullViolation, want: ledger.ErrNullViolation},
		{name: "Check", code: codeCheckViolation, want: ledger.ErrCheckViolation},
		{name: "InvalidEnumText", code: codeInvalidText, want: ledger.ErrCheckViolation},
		{name: "StringTooLong", code: codeStringTooLong, want: ledger.ErrCheckViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tt.code, Message: "boom", ConstraintName: "some_constraint"}

			err := mapError(fmt.Errorf("exec: %w", pgErr), tt.onDelete)

			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "some_constraint")
		})
	}
}

func TestMapError_PassesOtherErrorsThrough(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, mapError(plain, false))

	pgErr := &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
	err := mapError(pgErr, false)
	assert.False(t, ledger.IsIntegrityError(err))

	var got *pgconn.PgError
	assert.True(t, errors.As(err, &got))
}
