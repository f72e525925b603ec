package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// amountScale is the number of fractional digits kept by the numeric amount columns.
const amountScale = 4

type CreateEntryParams struct {
	UserID            uuid.UUID
	Description       string
	Target            *string
	CategoryID        uuid.UUID
	Amount            decimal.Decimal
	Date              time.Time
	Type              EntryType
	SourceID          uuid.UUID
	SecondarySourceID *uuid.UUID
	ConversionRate    *float64

	// CurrencyID defaults to the currency of the primary source.
	CurrencyID *uuid.UUID
	// ConversionRateToFixed defaults to the entry currency's current rate.
	ConversionRateToFixed *float64
}

// CreateEntry records an entry and applies it to its source balances in a
// single transaction.
func (s *Service) CreateEntry(ctx context.Context, params CreateEntryParams) (*Entry, error) {
	entries, err := s.CreateEntries(ctx, []CreateEntryParams{params})
	if err != nil {
		return nil, err
	}

	return entries[0], nil
}

// CreateEntries records a batch of entries atomically: either every entry is
// stored and applied to its sources, or none is.
func (s *Service) CreateEntries(ctx context.Context, params []CreateEntryParams) ([]*Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	params = slices.Clone(params)
	for i := range params {
		if err := validateEntryParams(&params[i]); err != nil {
			return nil, batchError(len(params), i, err)
		}
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin entry tx: %w", err)
	}
	defer tx.Rollback()

	sources, err := tx.LockSources(ctx, sourceIDs(params))
	if err != nil {
		return nil, fmt.Errorf("locking sources: %w", err)
	}

	refs := &entryRefs{
		tx:         tx,
		sources:    sources,
		currencies: make(map[uuid.UUID]*Currency),
		categories: make(map[uuid.UUID]*Category),
	}

	entries := make([]*Entry, 0, len(params))

	for i, p := range params {
		e, err := refs.build(ctx, p)
		if err != nil {
			return nil, batchError(len(params), i, err)
		}

		if err := tx.CreateEntry(ctx, e); err != nil {
			return nil, batchError(len(params), i, err)
		}

		if err := applyEffect(ctx, tx, sources, balanceEffect(e)); err != nil {
			return nil, batchError(len(params), i, err)
		}

		entries = append(entries, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit entries: %w", err)
	}

	return entries, nil
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

// ArchiveEntry soft-deletes an entry and takes its effect back out of the
// source balances. Archiving an archived entry is a no-op.
func (s *Service) ArchiveEntry(ctx context.Context, id uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	e, err := tx.LockEntry(ctx, id)
	if err != nil {
		return err
	}

	if e.Archived {
		return nil
	}

	if err := revertEffect(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.ArchiveEntry(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}

	return nil
}

// DeleteEntry removes an entry. An active entry's effect is taken out of the
// source balances first.
func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback()

	e, err := tx.LockEntry(ctx, id)
	if err != nil {
		return err
	}

	if !e.Archived {
		if err := revertEffect(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.DeleteEntry(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	return nil
}

func revertEffect(ctx context.Context, tx Tx, e *Entry) error {
	ids := []uuid.UUID{e.SourceID}
	if e.SecondarySourceID != nil {
		ids = append(ids, *e.SecondarySourceID)
	}

	sources, err := tx.LockSources(ctx, sortIDs(ids))
	if err != nil {
		return fmt.Errorf("locking sources: %w", err)
	}

	effect := balanceEffect(e)
	for i := range effect {
		effect[i].Delta = effect[i].Delta.Neg()
	}

	return applyEffect(ctx, tx, sources, effect)
}

// adjustment is a change to one source balance.
type adjustment struct {
	SourceID uuid.UUID
	Delta    decimal.Decimal
}

// balanceEffect returns how applying e changes source balances. Outflows
// (spend, lend, the sending side of convert) decrease the primary source;
// inflows (income, borrow) increase it. The receiving side of a convert gets
// amount × conversion rate.
func balanceEffect(e *Entry) []adjustment {
	switch e.Type {
	case EntrySpend, EntryLend:
		return []adjustment{{SourceID: e.SourceID, Delta: e.Amount.Neg()}}
	case EntryIncome, EntryBorrow:
		return []adjustment{{SourceID: e.SourceID, Delta: e.Amount}}
	case EntryConvert:
		effect := []adjustment{{SourceID: e.SourceID, Delta: e.Amount.Neg()}}
		if e.SecondarySourceID != nil && e.ConversionRate != nil {
			converted := e.Amount.Mul(decimal.NewFromFloat(*e.ConversionRate)).Round(amountScale)
			effect = append(effect, adjustment{SourceID: *e.SecondarySourceID, Delta: converted})
		}

		return effect
	}

	return nil
}

func applyEffect(ctx context.Context, tx Tx, sources map[uuid.UUID]*Source, effect []adjustment) error {
	for _, adj := range effect {
		if err := tx.AdjustSourceAmount(ctx, adj.SourceID, adj.Delta); err != nil {
			return fmt.Errorf("adjusting source %s: %w", adj.SourceID, err)
		}

		if src, ok := sources[adj.SourceID]; ok {
			src.Amount = src.Amount.Add(adj.Delta)
		}
	}

	return nil
}

// validateEntryParams checks everything that does not need the database.
func validateEntryParams(p *CreateEntryParams) error {
	p.Description = strings.TrimSpace(p.Description)
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrNullViolation)
	}

	if !p.Type.Valid() {
		return fmt.Errorf("%w: invalid entry type %q", ErrCheckViolation, p.Type)
	}

	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrCheckViolation, p.Amount)
	}

	if err := validAmount("amount", p.Amount); err != nil {
		return err
	}

	if p.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrNullViolation)
	}

	if p.Target != nil {
		target := strings.TrimSpace(*p.Target)
		if target == "" {
			p.Target = nil
		} else {
			p.Target = &target
		}
	}

	if p.Type == EntryConvert {
		if p.SecondarySourceID == nil {
			return fmt.Errorf("%w: convert entry requires a secondary source", ErrNullViolation)
		}

		if p.ConversionRate == nil {
			return fmt.Errorf("%w: convert entry requires a conversion rate", ErrNullViolation)
		}

		if *p.SecondarySourceID == p.SourceID {
			return fmt.Errorf("%w: convert entry must move money between two different sources", ErrCheckViolation)
		}

		if err := validRate("conversion rate", *p.ConversionRate); err != nil {
			return err
		}
	} else if p.SecondarySourceID != nil {
		return fmt.Errorf("%w: only convert entries have a secondary source", ErrCheckViolation)
	}

	if p.ConversionRateToFixed != nil {
		if err := validRate("conversion rate to fixed", *p.ConversionRateToFixed); err != nil {
			return err
		}
	}

	return nil
}

// entryRefs resolves and checks the rows an entry refers to, caching lookups
// across a batch.
type entryRefs struct {
	tx         Tx
	sources    map[uuid.UUID]*Source
	currencies map[uuid.UUID]*Currency
	categories map[uuid.UUID]*Category
}

func (r *entryRefs) build(ctx context.Context, p CreateEntryParams) (*Entry, error) {
	src, err := r.source(p.UserID, p.SourceID)
	if err != nil {
		return nil, err
	}

	if p.SecondarySourceID != nil {
		if _, err := r.source(p.UserID, *p.SecondarySourceID); err != nil {
			return nil, err
		}
	}

	category, err := r.category(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}

	if err := checkOwned("category", category.ID, category.UserID, p.UserID, category.Archived); err != nil {
		return nil, err
	}

	currencyID := src.CurrencyID
	if p.CurrencyID != nil {
		currencyID = *p.CurrencyID
	}

	currency, err := r.currency(ctx, currencyID)
	if err != nil {
		return nil, err
	}

	if err := checkOwned("currency", currency.ID, currency.UserID, p.UserID, currency.Archived); err != nil {
		return nil, err
	}

	if currency.ID != src.CurrencyID {
		return nil, fmt.Errorf("%w: entry currency %s differs from currency %s of source %s",
			ErrCheckViolation, currency.ID, src.CurrencyID, src.ID)
	}

	rateToFixed := currency.RateToFixed
	if p.ConversionRateToFixed != nil {
		rateToFixed = *p.ConversionRateToFixed
	}

	return &Entry{
		UserID:                p.UserID,
		Description:           p.Description,
		Target:                p.Target,
		CategoryID:            p.CategoryID,
		Amount:                p.Amount,
		Date:                  p.Date,
		CurrencyID:            currency.ID,
		Type:                  p.Type,
		SourceID:              p.SourceID,
		SecondarySourceID:     p.SecondarySourceID,
		ConversionRate:        p.ConversionRate,
		ConversionRateToFixed: rateToFixed,
	}, nil
}

func (r *entryRefs) source(userID, id uuid.UUID) (*Source, error) {
	src, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: source %s does not exist", ErrForeignKeyViolation, id)
	}

	if err := checkOwned("source", src.ID, src.UserID, userID, src.Archived); err != nil {
		return nil, err
	}

	return src, nil
}

func (r *entryRefs) category(ctx context.Context, id uuid.UUID) (*Category, error) {
	if c, ok := r.categories[id]; ok {
		return c, nil
	}

	c, err := r.tx.GetCategory(ctx, id)
	if err != nil {
		return nil, referenceError("category", id, err)
	}

	r.categories[id] = c

	return c, nil
}

func (r *entryRefs) currency(ctx context.Context, id uuid.UUID) (*Currency, error) {
	if c, ok := r.currencies[id]; ok {
		return c, nil
	}

	c, err := r.tx.GetCurrency(ctx, id)
	if err != nil {
		return nil, referenceError("currency", id, err)
	}

	r.currencies[id] = c

	return c, nil
}

// sourceIDs returns the distinct sources referenced by a batch, sorted so
// that locks are always taken in the same order.
func sourceIDs(params []CreateEntryParams) []uuid.UUID {
	var ids []uuid.UUID

	for _, p := range params {
		ids = append(ids, p.SourceID)
		if p.SecondarySourceID != nil {
			ids = append(ids, *p.SecondarySourceID)
		}
	}

	return sortIDs(ids)
}

func sortIDs(ids []uuid.UUID) []uuid.UUID {
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	return slices.Compact(ids)
}

func batchError(size, i int, err error) error {
	if size == 1 {
		return err
	}

	return fmt.Errorf("entry %d: %w", i+1, err)
}

// IsIntegrityError reports whether err is one of the constraint violations a
// caller can fix by changing its input.
func IsIntegrityError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrUniqueViolation, ErrForeignKeyViolation, ErrRestrictViolation,
		ErrNullViolation, ErrCheckViolation, ErrArchived,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
