// Package importer turns CSV exports into ledger entries.
package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/ledger/internal/importer/cgd"
	"github.com/MrJamesThe3rd/ledger/internal/importer/record"
)

type Format string

const (
	FormatAuto   Format = "auto"
	FormatLedger Format = "ledger"
	FormatCGD    Format = "cgd"
)

var Formats = []Format{FormatAuto, FormatLedger, FormatCGD}

type Parser interface {
	Parse(r io.Reader) ([]record.Record, error)
}

func parserFor(format Format) (Parser, error) {
	switch format {
	case FormatLedger:
		return NewLedgerParser(), nil
	case FormatCGD:
		return cgd.NewParser(), nil
	}

	return nil, fmt.Errorf("unknown import format: %s", format)
}

// detectFormat picks the native format when the first non-blank line is a
// ledger header and falls back to the bank export otherwise.
func detectFormat(content []byte) Format {
	sc := bufio.NewScanner(bytes.NewReader(content))

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		header := strings.Split(line, ",")
		for i := range header {
			header[i] = strings.ToLower(strings.Trim(strings.TrimSpace(header[i]), `"`))
		}

		if record.NewColumns(header).Has(requiredLedgerCols...) {
			return FormatLedger
		}

		return FormatCGD
	}

	return FormatCGD
}
