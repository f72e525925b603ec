// Package cgd reads account, statement and card CSV exports from Caixa Geral
// de Depósitos. Debits become spend entries and credits income entries.
package cgd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledger/internal/importer/record"
	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

const dateLayout = "02-01-2006"

var ErrUnknownLayout = errors.New("no matching CGD format found: expected the header of a conta, extrato or cartão export")

// layout names the header cells of one export. A layout has either a signed
// amount column or an unsigned debit/credit pair.
type layout struct {
	name   string
	date   string
	desc   string
	signed string
	debit  string
	credit string
}

// layouts are matched in order. The card export goes first: its "Data"
// column is the only one that differs from the account exports.
var layouts = []layout{
	{name: "cartão", date: "Data", desc: "Descrição", debit: "Débito", credit: "Crédito"},
	{name: "extrato", date: "Data mov.", desc: "Descrição", signed: "Movimento"},
	{name: "conta", date: "Data mov.", desc: "Descrição", signed: "Montante"},
}

func (l layout) header() []string {
	if l.signed != "" {
		return []string{l.date, l.desc, l.signed}
	}

	return []string{l.date, l.desc, l.debit, l.credit}
}

// amount returns the absolute amount of row and whether it is money out or
// in. Rows with no amount, or a zero one, report false.
func (l layout) amount(cols record.Columns, row []string) (decimal.Decimal, ledger.EntryType, bool) {
	if l.signed != "" {
		d, ok := nonZero(cols.Cell(row, l.signed))
		switch {
		case !ok:
			return decimal.Zero, "", false
		case d.IsNegative():
			return d.Neg(), ledger.EntrySpend, true
		default:
			return d, ledger.EntryIncome, true
		}
	}

	if d, ok := nonZero(cols.Cell(row, l.debit)); ok {
		return d.Abs(), ledger.EntrySpend, true
	}

	if d, ok := nonZero(cols.Cell(row, l.credit)); ok {
		return d.Abs(), ledger.EntryIncome, true
	}

	return decimal.Zero, "", false
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads UTF-8 CSV. Preamble lines before the header and footer rows
// without a date are skipped. Category and source are left empty.
func (p *Parser) Parse(r io.Reader) ([]record.Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, lines, err := record.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		cols := record.NewColumns(row)

		for _, l := range layouts {
			if cols.Has(l.header()...) {
				return parseRows(l, cols, rows[i+1:], lines[i+1:])
			}
		}
	}

	return nil, ErrUnknownLayout
}

func parseRows(l layout, cols record.Columns, rows [][]string, lines []int) ([]record.Record, error) {
	var records []record.Record

	for i, row := range rows {
		date, err := time.Parse(dateLayout, cols.Cell(row, l.date))
		if err != nil {
			continue
		}

		desc := cols.Cell(row, l.desc)
		if desc == "" {
			return nil, fmt.Errorf("line %d: missing description", lines[i])
		}

		amount, entryType, ok := l.amount(cols, row)
		if !ok {
			continue
		}

		records = append(records, record.Record{
			Line:        lines[i],
			Date:        date,
			Description: desc,
			Type:        entryType,
			Amount:      amount,
		})
	}

	return records, nil
}

func nonZero(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	d, err := record.ParseEuropeanAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}
