package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType classifies an entry. The set is closed and mirrors the entry_t
// enum in the database.
type EntryType string

const (
	EntrySpend   EntryType = "spend"
	EntryIncome  EntryType = "income"
	EntryLend    EntryType = "lend"
	EntryBorrow  EntryType = "borrow"
	EntryConvert EntryType = "convert"
)

// EntryTypes lists every valid entry type in enum order.
var EntryTypes = []EntryType{EntrySpend, EntryIncome, EntryLend, EntryBorrow, EntryConvert}

func (t EntryType) Valid() bool {
	switch t {
	case EntrySpend, EntryIncome, EntryLend, EntryBorrow, EntryConvert:
		return true
	}

	return false
}

// User owns every other entity. Password holds the hashed credential.
type User struct {
	ID              uuid.UUID
	Username        string
	Password        string
	FixedCurrencyID *uuid.UUID
	Enabled         bool
}

// Currency carries the factor that converts one unit of it into the
// user's fixed currency.
type Currency struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	RateToFixed float64
	Archived    bool
}

type Category struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Name     string
	Archived bool
}

// Source is a place money is held in, denominated in one currency.
// Amount is the running balance maintained by entry writes.
type Source struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	CurrencyID uuid.UUID
	Amount     decimal.Decimal
	Archived   bool
}

// Entry is an immutable record of money moving in or out of a source.
// ConversionRateToFixed is snapshotted when the entry is created.
type Entry struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	Description           string
	Target                *string
	CategoryID            uuid.UUID
	Amount                decimal.Decimal
	Date                  time.Time
	CreatedAt             time.Time
	CurrencyID            uuid.UUID
	Type                  EntryType
	SourceID              uuid.UUID
	SecondarySourceID     *uuid.UUID
	ConversionRate        *float64
	ConversionRateToFixed float64
	Archived              bool
}

// ListFilter selects currencies, categories or sources of one user.
type ListFilter struct {
	UserID          uuid.UUID
	IncludeArchived bool
}

// EntryFilter selects entries of one user. Nil fields are not applied.
type EntryFilter struct {
	UserID          uuid.UUID
	Type            *EntryType
	CategoryID      *uuid.UUID
	SourceID        *uuid.UUID
	StartDate       *time.Time
	EndDate         *time.Time
	IncludeArchived bool
}
