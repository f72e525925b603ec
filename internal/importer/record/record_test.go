package record_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledger/internal/importer/record"
)

func TestParseEuropeanAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1.234,56", want: "1234.56"},
		{in: "-588,74", want: "-588.74"},
		{in: "10,00", want: "10"},
		{in: " 8.608,52 ", want: "8608.52"},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := record.ParseEuropeanAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestColumns(t *testing.T) {
	cols := record.NewColumns([]string{" Data mov. ", "", "Descrição", "Montante"})

	assert.True(t, cols.Has("Data mov.", "Descrição"))
	assert.False(t, cols.Has("Débito"))

	row := []string{"30-01-2026", "x", " PAGAMENTO "}
	assert.Equal(t, "PAGAMENTO", cols.Cell(row, "Descrição"))
	assert.Empty(t, cols.Cell(row, "Montante"), "short row")
	assert.Empty(t, cols.Cell(row, "Saldo"), "missing column")
}
