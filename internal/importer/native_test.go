package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledger/internal/importer"
	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

func TestLedgerParser_Parse(t *testing.T) {
	csv := `Date, Description, Category, Amount, Type, Source, Secondary_Source, Conversion_Rate, Target
2024-03-01,Paycheck,Salary,100,income,Cash,,,ACME

2024-03-02,"Exchange, airport",Transfers,50.5,Convert,Cash,Bank,0.9,
`

	records, err := importer.NewLedgerParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Paycheck", first.Description)
	assert.Equal(t, "Salary", first.Category)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, ledger.EntryIncome, first.Type)
	assert.Equal(t, "Cash", first.Source)
	assert.Empty(t, first.SecondarySource)
	assert.Nil(t, first.ConversionRate)
	require.NotNil(t, first.Target)
	assert.Equal(t, "ACME", *first.Target)

	second := records[1]
	assert.Equal(t, 4, second.Line)
	assert.Equal(t, "Exchange, airport", second.Description)
	assert.Equal(t, ledger.EntryConvert, second.Type)
	assert.Equal(t, "Bank", second.SecondarySource)
	require.NotNil(t, second.ConversionRate)
	assert.InDelta(t, 0.9, *second.ConversionRate, 1e-9)
	assert.Nil(t, second.Target)
}

func TestLedgerParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{name: "Empty", csv: "", wantErr: "missing ledger header"},
		{name: "NoAmountColumn", csv: "date,description\n2024-03-01,x\n", wantErr: "missing ledger header"},
		{name: "BadDate", csv: "date,description,amount\n01-03-2024,x,1\n", wantErr: `line 2: invalid date "01-03-2024"`},
		{name: "ExtraFields", csv: "date,description,amount\n2024-03-01,x,1,50\n", wantErr: ""},
		{name: "WordAmount", csv: "date,description,amount\n2024-03-01,x,ten\n", wantErr: `line 2: invalid amount "ten"`},
		{name: "BadRate", csv: "date,description,amount,conversion_rate\n2024-03-01,x,1,fast\n", wantErr: `line 2: invalid conversion rate "fast"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.NewLedgerParser().Parse(strings.NewReader(tt.csv))
			if tt.wantErr == "" {
				// Extra trailing fields are ignored.
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
