package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledger/internal/encoding"
	"github.com/MrJamesThe3rd/ledger/internal/importer/record"
	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=importer

// Ledger is the part of the ledger service an import needs.
type Ledger interface {
	ListCategories(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Category, error)
	ListSources(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Source, error)
	CreateEntries(ctx context.Context, params []ledger.CreateEntryParams) ([]*ledger.Entry, error)
}

var ErrNoRecords = errors.New("no entries found in file")

// Options control one import. Category, Source and Type fill in rows that
// leave them blank; bank exports never carry category or source.
type Options struct {
	UserID   uuid.UUID
	Format   Format
	Category string
	Source   string
	Type     ledger.EntryType
	// DryRun parses and resolves without writing.
	DryRun bool
}

type Result struct {
	Format  Format
	Charset string
	Params  []ledger.CreateEntryParams
	Entries []*ledger.Entry
}

type Service struct {
	ledger Ledger
}

func NewService(l Ledger) *Service {
	return &Service{ledger: l}
}

// Import reads a CSV export and records every row as an entry of
// opts.UserID. Either all rows are stored or none is.
func (s *Service) Import(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	decoded, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	content, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	format := opts.Format
	if format == "" || format == FormatAuto {
		format = detectFormat(content)
	}

	parser, err := parserFor(format)
	if err != nil {
		return nil, err
	}

	records, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s csv: %w", format, err)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	params, err := s.resolve(ctx, opts, records)
	if err != nil {
		return nil, err
	}

	res := &Result{Format: format, Charset: decoded.Charset, Params: params}
	if opts.DryRun {
		return res, nil
	}

	res.Entries, err = s.ledger.CreateEntries(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("creating entries: %w", err)
	}

	return res, nil
}

// resolve maps category and source names to the user's active rows.
func (s *Service) resolve(ctx context.Context, opts Options, records []record.Record) ([]ledger.CreateEntryParams, error) {
	filter := ledger.ListFilter{UserID: opts.UserID}

	categories, err := s.ledger.ListCategories(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	sources, err := s.ledger.ListSources(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	categoryIDs := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		categoryIDs[c.Name] = c.ID
	}

	sourceIDs := make(map[string]uuid.UUID, len(sources))
	for _, src := range sources {
		sourceIDs[src.Name] = src.ID
	}

	params := make([]ledger.CreateEntryParams, 0, len(records))

	for _, rec := range records {
		p := ledger.CreateEntryParams{
			UserID:         opts.UserID,
			Description:    rec.Description,
			Target:         rec.Target,
			Amount:         rec.Amount,
			Date:           rec.Date,
			Type:           or(rec.Type, opts.Type),
			ConversionRate: rec.ConversionRate,
		}

		if p.CategoryID, err = lookup(categoryIDs, "category", or(rec.Category, opts.Category)); err != nil {
			return nil, fmt.Errorf("line %d: %w", rec.Line, err)
		}

		if p.SourceID, err = lookup(sourceIDs, "source", or(rec.Source, opts.Source)); err != nil {
			return nil, fmt.Errorf("line %d: %w", rec.Line, err)
		}

		if rec.SecondarySource != "" {
			id, err := lookup(sourceIDs, "secondary source", rec.SecondarySource)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", rec.Line, err)
			}

			p.SecondarySourceID = &id
		}

		params = append(params, p)
	}

	return params, nil
}

func lookup(ids map[string]uuid.UUID, kind, name string) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", ledger.ErrNullViolation, kind)
	}

	id, ok := ids[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: unknown %s %q", ledger.ErrForeignKeyViolation, kind, name)
	}

	return id, nil
}

func or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}

	return v
}
