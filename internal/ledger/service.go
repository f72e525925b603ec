package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxNameLength matches the varchar(1023) columns of the schema.
const maxNameLength = 1023

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	SetUserEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateCurrency(ctx context.Context, c *Currency) error
	GetCurrency(ctx context.Context, id uuid.UUID) (*Currency, error)
	UpdateCurrency(ctx context.Context, c *Currency) error
	ListCurrencies(ctx context.Context, filter ListFilter) ([]*Currency, error)
	ArchiveCurrency(ctx context.Context, id uuid.UUID) error
	DeleteCurrency(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, filter ListFilter) ([]*Category, error)
	ArchiveCategory(ctx context.Context, id uuid.UUID) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	GetSource(ctx context.Context, id uuid.UUID) (*Source, error)
	ListSources(ctx context.Context, filter ListFilter) ([]*Source, error)
	ArchiveSource(ctx context.Context, id uuid.UUID) error
	DeleteSource(ctx context.Context, id uuid.UUID) error

	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx is a write transaction for every write that references other rows.
// Currencies and categories read through it are share-locked, and sources and
// entries returned by the Lock methods are row-locked, until Commit or
// Rollback.
type Tx interface {
	GetCurrency(ctx context.Context, id uuid.UUID) (*Currency, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	SetFixedCurrency(ctx context.Context, userID uuid.UUID, currencyID *uuid.UUID) error
	CreateSource(ctx context.Context, src *Source) error
	LockSources(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Source, error)
	LockEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	CreateEntry(ctx context.Context, e *Entry) error
	AdjustSourceAmount(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	ArchiveEntry(ctx context.Context, id uuid.UUID) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	Commit() error
	Rollback() error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
}

func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// CreateUser stores a new, disabled user without a fixed currency.
func (s *Service) CreateUser(ctx context.Context, username, password string) (*User, error) {
	username, err := validName("username", username)
	if err != nil {
		return nil, err
	}

	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrNullViolation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{Username: username, Password: hash}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
}

func (s *Service) SetUserEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	return s.repo.SetUserEnabled(ctx, id, enabled)
}

// SetFixedCurrency points the user's reporting currency at one of their own
// active currencies. A nil currencyID clears it.
func (s *Service) SetFixedCurrency(ctx context.Context, userID uuid.UUID, currencyID *uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin fixed currency tx: %w", err)
	}
	defer tx.Rollback()

	if currencyID != nil {
		c, err := tx.GetCurrency(ctx, *currencyID)
		if err != nil {
			return referenceError("currency", *currencyID, err)
		}

		if err := checkOwned("currency", c.ID, c.UserID, userID, c.Archived); err != nil {
			return err
		}
	}

	if err := tx.SetFixedCurrency(ctx, userID, currencyID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fixed currency: %w", err)
	}

	return nil
}

// DeleteUser removes the user and everything the user owns.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteUser(ctx, id)
}

type CreateCurrencyParams struct {
	UserID      uuid.UUID
	Name        string
	RateToFixed float64
}

func (s *Service) CreateCurrency(ctx context.Context, params CreateCurrencyParams) (*Currency, error) {
	name, err := validName("currency name", params.Name)
	if err != nil {
		return nil, err
	}

	if err := validRate("rate to fixed", params.RateToFixed); err != nil {
		return nil, err
	}

	c := &Currency{
		UserID:      params.UserID,
		Name:        name,
		RateToFixed: params.RateToFixed,
	}
	if err := s.repo.CreateCurrency(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// UpdateCurrency renames a currency and replaces its rate. Existing entries
// keep the rate they were created with.
func (s *Service) UpdateCurrency(ctx context.Context, id uuid.UUID, name string, rateToFixed float64) (*Currency, error) {
	name, err := validName("currency name", name)
	if err != nil {
		return nil, err
	}

	if err := validRate("rate to fixed", rateToFixed); err != nil {
		return nil, err
	}

	c, err := s.repo.GetCurrency(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Name = name
	c.RateToFixed = rateToFixed

	if err := s.repo.UpdateCurrency(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetCurrency(ctx context.Context, id uuid.UUID) (*Currency, error) {
	return s.repo.GetCurrency(ctx, id)
}

func (s *Service) ListCurrencies(ctx context.Context, filter ListFilter) ([]*Currency, error) {
	return s.repo.ListCurrencies(ctx, filter)
}

func (s *Service) ArchiveCurrency(ctx context.Context, id uuid.UUID) error {
	return s.repo.ArchiveCurrency(ctx, id)
}

func (s *Service) DeleteCurrency(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCurrency(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, userID uuid.UUID, name string) (*Category, error) {
	name, err := validName("category name", name)
	if err != nil {
		return nil, err
	}

	c := &Category{UserID: userID, Name: name}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context, filter ListFilter) ([]*Category, error) {
	return s.repo.ListCategories(ctx, filter)
}

func (s *Service) ArchiveCategory(ctx context.Context, id uuid.UUID) error {
	return s.repo.ArchiveCategory(ctx, id)
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCategory(ctx, id)
}

type CreateSourceParams struct {
	UserID     uuid.UUID
	Name       string
	CurrencyID uuid.UUID
	Amount     decimal.Decimal
}

// CreateSource opens a source with params.Amount as its opening balance.
// The currency must be an active currency of the same user.
func (s *Service) CreateSource(ctx context.Context, params CreateSourceParams) (*Source, error) {
	name, err := validName("source name", params.Name)
	if err != nil {
		return nil, err
	}

	if err := validAmount("opening amount", params.Amount); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin source tx: %w", err)
	}
	defer tx.Rollback()

	c, err := tx.GetCurrency(ctx, params.CurrencyID)
	if err != nil {
		return nil, referenceError("currency", params.CurrencyID, err)
	}

	if err := checkOwned("currency", c.ID, c.UserID, params.UserID, c.Archived); err != nil {
		return nil, err
	}

	src := &Source{
		UserID:     params.UserID,
		Name:       name,
		CurrencyID: params.CurrencyID,
		Amount:     params.Amount,
	}
	if err := tx.CreateSource(ctx, src); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit source: %w", err)
	}

	return src, nil
}

func (s *Service) GetSource(ctx context.Context, id uuid.UUID) (*Source, error) {
	return s.repo.GetSource(ctx, id)
}

func (s *Service) ListSources(ctx context.Context, filter ListFilter) ([]*Source, error) {
	return s.repo.ListSources(ctx, filter)
}

// ArchiveSource hides a source from new entries. Its balance is left as is.
func (s *Service) ArchiveSource(ctx context.Context, id uuid.UUID) error {
	return s.repo.ArchiveSource(ctx, id)
}

func (s *Service) DeleteSource(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSource(ctx, id)
}

func validName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s is required", ErrNullViolation, field)
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: %s longer than %d characters", ErrCheckViolation, field, maxNameLength)
	}

	return name, nil
}

func validRate(field string, rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return fmt.Errorf("%w: %s must be a finite positive number, got %v", ErrCheckViolation, field, rate)
	}

	return nil
}

// validAmount rejects amounts the numeric columns would round.
func validAmount(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(amountScale)) {
		return fmt.Errorf("%w: %s %s has more than %d decimal places", ErrCheckViolation, field, d, amountScale)
	}

	return nil
}

// checkOwned verifies a referenced row belongs to userID and is still active.
func checkOwned(kind string, id, owner, userID uuid.UUID, archived bool) error {
	if owner != userID {
		return fmt.Errorf("%w: %s %s does not belong to user %s", ErrForeignKeyViolation, kind, id, userID)
	}

	if archived {
		return fmt.Errorf("%w: %s %s", ErrArchived, kind, id)
	}

	return nil
}

// referenceError turns a failed lookup of a referenced row into a foreign key
// violation. Other errors pass through.
func referenceError(kind string, id uuid.UUID, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s %s does not exist", ErrForeignKeyViolation, kind, id)
	}

	return fmt.Errorf("loading %s %s: %w", kind, id, err)
}
