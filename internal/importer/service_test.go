package importer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/ledger/internal/encoding"
	"github.com/MrJamesThe3rd/ledger/internal/importer"
	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

type fixture struct {
	userID    uuid.UUID
	salary    *ledger.Category
	groceries *ledger.Category
	cash      *ledger.Source
	bank      *ledger.Source
}

func newFixture() *fixture {
	userID := uuid.New()

	return &fixture{
		userID:    userID,
		salary:    &ledger.Category{ID: uuid.New(), UserID: userID, Name: "Salary"},
		groceries: &ledger.Category{ID: uuid.New(), UserID: userID, Name: "Groceries"},
		cash:      &ledger.Source{ID: uuid.New(), UserID: userID, Name: "Cash"},
		bank:      &ledger.Source{ID: uuid.New(), UserID: userID, Name: "Bank"},
	}
}

func (f *fixture) expectLists(m *importer.MockLedger) {
	filter := ledger.ListFilter{UserID: f.userID}

	m.EXPECT().ListCategories(gomock.Any(), filter).Return([]*ledger.Category{f.salary, f.groceries}, nil)
	m.EXPECT().ListSources(gomock.Any(), filter).Return([]*ledger.Source{f.cash, f.bank}, nil)
}

func newImportService(t *testing.T) (*importer.Service, *importer.MockLedger) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := importer.NewMockLedger(ctrl)

	return importer.NewService(m), m
}

func TestService_Import_LedgerFormat(t *testing.T) {
	svc, m := newImportService(t)
	f := newFixture()
	f.expectLists(m)

	csv := `date,description,category,amount,type,source,secondary_source,conversion_rate
2024-03-01,Paycheck,Salary,100,income,Cash,,
2024-03-02,Exchange,Salary,40,convert,Cash,Bank,0.9
`

	m.EXPECT().
		CreateEntries(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, params []ledger.CreateEntryParams) ([]*ledger.Entry, error) {
			assert.Equal(t, f.userID, params[0].UserID)
			assert.Equal(t, f.salary.ID, params[0].CategoryID)
			assert.Equal(t, f.cash.ID, params[0].SourceID)
			assert.Equal(t, ledger.EntryIncome, params[0].Type)
			assert.Nil(t, params[0].SecondarySourceID)

			require.NotNil(t, params[1].SecondarySourceID)
			assert.Equal(t, f.bank.ID, *params[1].SecondarySourceID)
			require.NotNil(t, params[1].ConversionRate)

			return []*ledger.Entry{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		})

	res, err := svc.Import(context.Background(), strings.NewReader(csv), importer.Options{UserID: f.userID})
	require.NoError(t, err)

	assert.Equal(t, importer.FormatLedger, res.Format)
	assert.Equal(t, encoding.CharsetUTF8, res.Charset)
	assert.Len(t, res.Entries, 2)
}

func TestService_Import_BankExportUsesDefaults(t *testing.T) {
	svc, m := newImportService(t)
	f := newFixture()
	f.expectLists(m)

	utf8CSV := "Data mov.;Descrição;Montante\n30-01-2026;CAFÉ CENTRAL;-10,00\n"
	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	m.EXPECT().
		CreateEntries(gomock.Any(), gomock.Len(1)).
		DoAndReturn(func(_ context.Context, params []ledger.CreateEntryParams) ([]*ledger.Entry, error) {
			p := params[0]
			assert.Equal(t, "CAFÉ CENTRAL", p.Description)
			assert.Equal(t, ledger.EntrySpend, p.Type)
			assert.Equal(t, f.groceries.ID, p.CategoryID)
			assert.Equal(t, f.bank.ID, p.SourceID)

			return []*ledger.Entry{{ID: uuid.New()}}, nil
		})

	res, err := svc.Import(context.Background(), bytes.NewReader(latin1), importer.Options{
		UserID:   f.userID,
		Category: "Groceries",
		Source:   "Bank",
	})
	require.NoError(t, err)

	assert.Equal(t, importer.FormatCGD, res.Format)
	assert.NotEqual(t, encoding.CharsetUTF8, res.Charset)
}

func TestService_Import_DryRun(t *testing.T) {
	svc, m := newImportService(t)
	f := newFixture()
	f.expectLists(m)

	csv := "date,description,amount\n2024-03-01,Lunch,12.5\n"

	res, err := svc.Import(context.Background(), strings.NewReader(csv), importer.Options{
		UserID:   f.userID,
		Format:   importer.FormatLedger,
		Category: "Groceries",
		Source:   "Cash",
		Type:     ledger.EntrySpend,
		DryRun:   true,
	})
	require.NoError(t, err)

	require.Len(t, res.Params, 1)
	assert.Equal(t, ledger.EntrySpend, res.Params[0].Type)
	assert.Empty(t, res.Entries)
}

func TestService_Import_Errors(t *testing.T) {
	type testCase struct {
		name      string
		csv       string
		opts      func(f *fixture) importer.Options
		setupMock func(f *fixture, m *importer.MockLedger)
		wantErr   error
		wantMsg   string
	}

	tests := []testCase{
		{
			name: "UnknownCategory",
			csv:  "date,description,category,amount,type,source\n2024-03-01,x,Rent,1,spend,Cash\n",
			setupMock: func(f *fixture, m *importer.MockLedger) {
				f.expectLists(m)
			},
			wantErr: ledger.ErrForeignKeyViolation,
			wantMsg: `line 2: foreign key violation: unknown category "Rent"`,
		},
		{
			name: "UnknownSecondarySource",
			csv:  "date,description,category,amount,type,source,secondary_source\n2024-03-01,x,Salary,1,convert,Cash,Vault\n",
			setupMock: func(f *fixture, m *importer.MockLedger) {
				f.expectLists(m)
			},
			wantErr: ledger.ErrForeignKeyViolation,
		},
		{
			name: "MissingSource",
			csv:  "date,description,category,amount,type\n2024-03-01,x,Salary,1,spend\n",
			setupMock: func(f *fixture, m *importer.MockLedger) {
				f.expectLists(m)
			},
			wantErr: ledger.ErrNullViolation,
		},
		{
			name:    "HeaderOnly",
			csv:     "date,description,amount\n",
			wantErr: importer.ErrNoRecords,
		},
		{
			name: "UnknownFormat",
			csv:  "date,description,amount\n",
			opts: func(f *fixture) importer.Options {
				return importer.Options{UserID: f.userID, Format: "ofx"}
			},
			wantMsg: "unknown import format: ofx",
		},
		{
			name: "CreateFails",
			csv:  "date,description,category,amount,type,source\n2024-03-01,x,Salary,1,spend,Cash\n",
			setupMock: func(f *fixture, m *importer.MockLedger) {
				f.expectLists(m)
				m.EXPECT().CreateEntries(gomock.Any(), gomock.Any()).Return(nil, ledger.ErrArchived)
			},
			wantErr: ledger.ErrArchived,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newImportService(t)
			f := newFixture()

			if tt.setupMock != nil {
				tt.setupMock(f, m)
			}

			opts := importer.Options{UserID: f.userID}
			if tt.opts != nil {
				opts = tt.opts(f)
			}

			res, err := svc.Import(context.Background(), strings.NewReader(tt.csv), opts)
			require.Error(t, err)
			assert.Nil(t, res)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}
