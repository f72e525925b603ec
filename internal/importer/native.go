package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledger/internal/importer/record"
	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

// Columns of the native ledger CSV format.
const (
	colDate            = "date"
	colDescription     = "description"
	colCategory        = "category"
	colAmount          = "amount"
	colType            = "type"
	colSource          = "source"
	colSecondarySource = "secondary_source"
	colConversionRate  = "conversion_rate"
	colTarget          = "target"

	ledgerDateLayout = time.DateOnly
)

var requiredLedgerCols = []string{colDate, colDescription, colAmount}

var ErrMissingHeader = errors.New("missing ledger header")

// LedgerParser reads the native export: a comma separated file whose header
// names the columns above. Category, type and source may be left out and
// filled in from import options; the other optional columns carry convert
// entries and targets.
type LedgerParser struct{}

func NewLedgerParser() *LedgerParser {
	return &LedgerParser{}
}

func (p *LedgerParser) Parse(r io.Reader) ([]record.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, lines, err := record.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	cols := record.NewColumns(header)
	if !cols.Has(requiredLedgerCols...) {
		return nil, fmt.Errorf("%w: need columns %s", ErrMissingHeader, strings.Join(requiredLedgerCols, ", "))
	}

	records := make([]record.Record, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rec, err := parseLedgerRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lines[i+1], err)
		}

		rec.Line = lines[i+1]
		records = append(records, rec)
	}

	return records, nil
}

func parseLedgerRow(cols record.Columns, row []string) (record.Record, error) {
	rec := record.Record{
		Description:     cols.Cell(row, colDescription),
		Type:            ledger.EntryType(strings.ToLower(cols.Cell(row, colType))),
		Category:        cols.Cell(row, colCategory),
		Source:          cols.Cell(row, colSource),
		SecondarySource: cols.Cell(row, colSecondarySource),
	}

	date, err := time.Parse(ledgerDateLayout, cols.Cell(row, colDate))
	if err != nil {
		return rec, fmt.Errorf("invalid date %q", cols.Cell(row, colDate))
	}

	rec.Date = date

	rec.Amount, err = decimal.NewFromString(cols.Cell(row, colAmount))
	if err != nil {
		return rec, fmt.Errorf("invalid amount %q", cols.Cell(row, colAmount))
	}

	if s := cols.Cell(row, colConversionRate); s != "" {
		rate, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return rec, fmt.Errorf("invalid conversion rate %q", s)
		}

		rec.ConversionRate = &rate
	}

	if s := cols.Cell(row, colTarget); s != "" {
		rec.Target = &s
	}

	return rec, nil
}
