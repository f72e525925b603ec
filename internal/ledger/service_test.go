package ledger_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

func newService(t *testing.T) (*ledger.Service, *ledger.MockRepository, *ledger.MockPasswordHasher) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)
	hasher := ledger.NewMockPasswordHasher(ctrl)

	return ledger.NewService(repo, hasher), repo, hasher
}

func TestService_CreateUser(t *testing.T) {
	type testCase struct {
		name      string
		username  string
		password  string
		setupMock func(repo *ledger.MockRepository, hasher *ledger.MockPasswordHasher)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			username: "  alice ",
			password: "s3cret",
			setupMock: func(repo *ledger.MockRepository, hasher *ledger.MockPasswordHasher) {
				hasher.EXPECT().Hash("s3cret").Return("hashed", nil)
				repo.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *ledger.User) error {
						assert.Equal(t, "alice", u.Username)
						assert.Equal(t, "hashed", u.Password)
						assert.False(t, u.Enabled)
						assert.Nil(t, u.FixedCurrencyID)
						u.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:     "DuplicateUsername",
			username: "alice",
			password: "s3cret",
			setupMock: func(repo *ledger.MockRepository, hasher *ledger.MockPasswordHasher) {
				hasher.EXPECT().Hash("s3cret").Return("hashed", nil)
				repo.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(ledger.ErrUniqueViolation)
			},
			wantErr: ledger.ErrUniqueViolation,
		},
		{
			name:     "EmptyUsername",
			username: "   ",
			password: "s3cret",
			wantErr:  ledger.ErrNullViolation,
		},
		{
			name:     "EmptyPassword",
			username: "alice",
			wantErr:  ledger.ErrNullViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, hasher := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(repo, hasher)
			}

			got, err := svc.CreateUser(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func newTxService(t *testing.T) (*ledger.Service, *ledger.MockTx) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)
	tx := ledger.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	return ledger.NewService(repo, ledger.NewMockPasswordHasher(ctrl)), tx
}

func TestService_SetFixedCurrency(t *testing.T) {
	userID := uuid.New()
	otherUserID := uuid.New()
	currencyID := uuid.New()

	type testCase struct {
		name       string
		currencyID *uuid.UUID
		setupMock  func(tx *ledger.MockTx)
		wantErr    error
	}

	tests := []testCase{
		{
			name:       "OwnCurrency",
			currencyID: &currencyID,
			setupMock: func(tx *ledger.MockTx) {
				tx.EXPECT().GetCurrency(gomock.Any(), currencyID).
					Return(&ledger.Currency{ID: currencyID, UserID: userID}, nil)
				tx.EXPECT().SetFixedCurrency(gomock.Any(), userID, &currencyID).Return(nil)
				tx.EXPECT().Commit().Return(nil)
			},
		},
		{
			name:       "OtherUsersCurrency",
			currencyID: &currencyID,
			setupMock: func(tx *ledger.MockTx) {
				tx.EXPECT().GetCurrency(gomock.Any(), currencyID).
					Return(&ledger.Currency{ID: currencyID, UserID: otherUserID}, nil)
			},
			wantErr: ledger.ErrForeignKeyViolation,
		},
		{
			name:       "ArchivedCurrency",
			currencyID: &currencyID,
			setupMock: func(tx *ledger.MockTx) {
				tx.EXPECT().GetCurrency(gomock.Any(), currencyID).
					Return(&ledger.Currency{ID: currencyID, UserID: userID, Archived: true}, nil)
			},
			wantErr: ledger.ErrArchived,
		},
		{
			name:       "MissingCurrency",
			currencyID: &currencyID,
			setupMock: func(tx *ledger.MockTx) {
				tx.EXPECT().GetCurrency(gomock.Any(), currencyID).Return(nil, ledger.ErrNotFound)
			},
			wantErr: ledger.ErrForeignKeyViolation,
		},
		{
			name: "Clear",
			setupMock: func(tx *ledger.MockTx) {
				tx.EXPECT().SetFixedCurrency(gomock.Any(), userID, nil).Return(nil)
				tx.EXPECT().Commit().Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tx := newTxService(t)
			tt.setupMock(tx)

			err := svc.SetFixedCurrency(context.Background(), userID, tt.currencyID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_CreateCurrency_RateValidation(t *testing.T) {
	rates := map[string]float64{
		"Zero":     0,
		"Negative": -1.5,
		"NaN":      math.NaN(),
		"Inf":      math.Inf(1),
	}

	for name, rate := range rates {
		t.Run(name, func(t *testing.T) {
			svc, _, _ := newService(t)

			got, err := svc.CreateCurrency(context.Background(), ledger.CreateCurrencyParams{
				UserID:      uuid.New(),
				Name:        "USD",
				RateToFixed: rate,
			})

			assert.ErrorIs(t, err, ledger.ErrCheckViolation)
			assert.Nil(t, got)
		})
	}
}

func TestService_CreateCurrency(t *testing.T) {
	svc, repo, _ := newService(t)
	userID := uuid.New()

	repo.EXPECT().
		CreateCurrency(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *ledger.Currency) error {
			assert.Equal(t, userID, c.UserID)
			assert.Equal(t, "USD", c.Name)
			assert.InDelta(t, 1.0, c.RateToFixed, 1e-9)
			c.ID = uuid.New()

			return nil
		})

	got, err := svc.CreateCurrency(context.Background(), ledger.CreateCurrencyParams{
		UserID:      userID,
		Name:        "USD",
		RateToFixed: 1.0,
	})
	require.NoError(t, err)
	assert.False(t, got.Archived)
}

func TestService_UpdateCurrency(t *testing.T) {
	svc, repo, _ := newService(t)
	id := uuid.New()

	repo.EXPECT().GetCurrency(gomock.Any(), id).
		Return(&ledger.Currency{ID: id, Name: "EUR", RateToFixed: 1.1}, nil)
	repo.EXPECT().
		UpdateCurrency(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *ledger.Currency) error {
			assert.Equal(t, "Euro", c.Name)
			assert.InDelta(t, 1.08, c.RateToFixed, 1e-9)

			return nil
		})

	got, err := svc.UpdateCurrency(context.Background(), id, "Euro", 1.08)
	require.NoError(t, err)
	assert.Equal(t, "Euro", got.Name)
}

func TestService_CreateSource(t *testing.T) {
	userID := uuid.New()
	currencyID := uuid.New()

	type testCase struct {
		name      string
		currency  *ledger.Currency
		lookupErr error
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			currency: &ledger.Currency{ID: currencyID, UserID: userID},
		},
		{
			name:     "OtherUsersCurrency",
			currency: &ledger.Currency{ID: currencyID, UserID: uuid.New()},
			wantErr:  ledger.ErrForeignKeyViolation,
		},
		{
			name:     "ArchivedCurrency",
			currency: &ledger.Currency{ID: currencyID, UserID: userID, Archived: true},
			wantErr:  ledger.ErrArchived,
		},
		{
			name:      "LookupFails",
			lookupErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tx := newTxService(t)

			tx.EXPECT().GetCurrency(gomock.Any(), currencyID).Return(tt.currency, tt.lookupErr)

			if tt.wantErr == nil && tt.lookupErr == nil {
				tx.EXPECT().
					CreateSource(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, src *ledger.Source) error {
						assert.True(t, src.Amount.Equal(decimal.NewFromInt(25)))
						src.ID = uuid.New()

						return nil
					})
				tx.EXPECT().Commit().Return(nil)
			}

			got, err := svc.CreateSource(context.Background(), ledger.CreateSourceParams{
				UserID:     userID,
				Name:       "Cash",
				CurrencyID: currencyID,
				Amount:     decimal.NewFromInt(25),
			})

			switch {
			case tt.lookupErr != nil:
				assert.ErrorIs(t, err, tt.lookupErr)
				assert.False(t, ledger.IsIntegrityError(err))
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				assert.Equal(t, "Cash", got.Name)
			}
		})
	}
}

func TestService_CreateSource_OpeningAmountScale(t *testing.T) {
	svc, _, _ := newService(t)

	got, err := svc.CreateSource(context.Background(), ledger.CreateSourceParams{
		UserID:     uuid.New(),
		Name:       "Cash",
		CurrencyID: uuid.New(),
		Amount:     decimal.RequireFromString("10.00005"),
	})

	assert.ErrorIs(t, err, ledger.ErrCheckViolation)
	assert.Nil(t, got)
}

func TestService_DeletePassesRestrictViolationThrough(t *testing.T) {
	svc, repo, _ := newService(t)
	id := uuid.New()

	repo.EXPECT().DeleteCurrency(gomock.Any(), id).Return(ledger.ErrRestrictViolation)
	repo.EXPECT().DeleteCategory(gomock.Any(), id).Return(ledger.ErrRestrictViolation)
	repo.EXPECT().DeleteSource(gomock.Any(), id).Return(ledger.ErrRestrictViolation)

	ctx := context.Background()
	assert.ErrorIs(t, svc.DeleteCurrency(ctx, id), ledger.ErrRestrictViolation)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, id), ledger.ErrRestrictViolation)
	assert.ErrorIs(t, svc.DeleteSource(ctx, id), ledger.ErrRestrictViolation)
}
