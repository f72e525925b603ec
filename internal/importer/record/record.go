// Package record holds the format-neutral rows produced by the CSV parsers
// and the cell helpers they share.
package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

// Record is one parsed CSV row. Category and source are still names; the
// importer resolves them against the user's rows.
type Record struct {
	Line            int
	Date            time.Time
	Description     string
	Type            ledger.EntryType
	Amount          decimal.Decimal
	Category        string
	Source          string
	SecondarySource string
	ConversionRate  *float64
	Target          *string
}

// Columns maps trimmed header names to their index in a row.
type Columns map[string]int

func NewColumns(header []string) Columns {
	cols := make(Columns, len(header))

	for i, cell := range header {
		name := strings.TrimSpace(cell)
		if name != "" {
			cols[name] = i
		}
	}

	return cols
}

// Has reports whether every name is present.
func (c Columns) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := c[name]; !ok {
			return false
		}
	}

	return true
}

// Cell returns the trimmed value of the named column, or "" when the column
// is absent or the row is short.
func (c Columns) Cell(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// ParseEuropeanAmount parses "1.234,56" style amounts.
func ParseEuropeanAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(s, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return decimal.NewFromString(strings.TrimSpace(clean))
}

// ReadAll reads every row along with the file line it starts on. Blank lines
// are skipped by the csv reader, so row indices and lines can differ.
func ReadAll(r *csv.Reader) ([][]string, []int, error) {
	var (
		rows  [][]string
		lines []int
	)

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, lines, nil
		}

		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := r.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
}
