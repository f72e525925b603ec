package cgd_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledger/internal/importer/cgd"
	"github.com/MrJamesThe3rd/ledger/internal/importer/record"
	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func assertRecord(t *testing.T, got record.Record, wantDate time.Time, wantDesc, wantAmount string, wantType ledger.EntryType) {
	t.Helper()

	assert.Equal(t, wantDate, got.Date)
	assert.Equal(t, wantDesc, got.Description)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString(wantAmount)), "amount is %s", got.Amount)
	assert.Equal(t, wantType, got.Type)
	assert.Empty(t, got.Category)
	assert.Empty(t, got.Source)
}

func TestParser_Conta(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE
NIF;"=""123"""

Dados da conta
Conta;0000 - EUR - Conta Extracto
Saldo contabilístico;1.000,00 EUR

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	records, err := cgd.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assertRecord(t, records[0], date(2026, 1, 30), "INSTITUTO GESTAO FINA", "588.74", ledger.EntrySpend)
	assertRecord(t, records[1], date(2026, 1, 9), "TFI Wise", "8608.52", ledger.EntryIncome)
	assert.Equal(t, 10, records[0].Line)
}

func TestParser_Extrato(t *testing.T) {
	csv := `Consultar extrato - 15-02-2026 : 0829015676030
Conta ;0829015676030 - EUR - Conta Extracto
Saldo contabilístico final ;41.393,66

Data mov. ;Data valor ;Origem ;Descrição ;Movimento ;Estorno ;Saldo contabilístico após movimento ;
13-02-2026;13-02-2026;"=""0003""";PAGAMENTO TSU ;-608,13;  ;41.393,66;
04-02-2026;04-02-2026;SIBS ;TFI Wise ;4.324,06;  ;51.302,85;
`

	records, err := cgd.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assertRecord(t, records[0], date(2026, 2, 13), "PAGAMENTO TSU", "608.13", ledger.EntrySpend)
	assertRecord(t, records[1], date(2026, 2, 4), "TFI Wise", "4324.06", ledger.EntryIncome)
}

func TestParser_Cartao(t *testing.T) {
	csv := `Consultar saldos e movimentos de cartões - 15-02-2026
Conta cartão ;4163 **** **** 8016 - EUR - Business Débito

Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PA GONDOMAR         GONDOMAR ;64,00 ; ;
31-12-2025 ;29-12-2025 ;REFUND AMAZON ; ;25,00 ;
 ; ; ; ;Página 1/2 ;
`

	records, err := cgd.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assertRecord(t, records[0], date(2025, 12, 16), "PA GONDOMAR         GONDOMAR", "64", ledger.EntrySpend)
	assertRecord(t, records[1], date(2025, 12, 31), "REFUND AMAZON", "25", ledger.EntryIncome)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Random;MetaData
Montante;Descrição;Data mov.;Ignored
-1.234.567,89;BIG TRANSFER;30-01-2026;XXX
`

	records, err := cgd.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assertRecord(t, records[0], date(2026, 1, 30), "BIG TRANSFER", "1234567.89", ledger.EntrySpend)
}

func TestParser_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{name: "EmptyFile", csv: "", wantErr: "no matching CGD format"},
		{name: "UnknownHeader", csv: "date,description,amount\n", wantErr: "no matching CGD format"},
		{name: "CardHeaderWithoutCredit", csv: "Data;Descrição;Débito\n16-12-2025;PA;64,00\n", wantErr: "no matching CGD format"},
		{name: "MissingDescription", csv: "Data mov.;Descrição;Montante\n30-01-2026;;-10,00\n", wantErr: "line 2: missing description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cgd.NewParser().Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_SkipsRowsWithoutEntries(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;TEST;-10,00
31-01-2026;ZERO;0,00
Totais;;;;
`

	records, err := cgd.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TEST", records[0].Description)
}
