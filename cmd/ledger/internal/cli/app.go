package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledger/internal/database"
	"github.com/MrJamesThe3rd/ledger/internal/importer"
	"github.com/MrJamesThe3rd/ledger/internal/ledger"
	"github.com/MrJamesThe3rd/ledger/internal/ledger/store"
	"github.com/MrJamesThe3rd/ledger/internal/password"
)

var errNoUser = errors.New("--user is required")

type app struct {
	db       *sql.DB
	ledger   *ledger.Service
	importer *importer.Service
}

// run connects to the database and calls fn with a context bounded by
// DB_TIMEOUT.
func run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.DB.Timeout)
	defer cancel()

	db, err := database.New(ctx, cfg.ConnectionString(), database.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	slog.Debug("connected to database", "host", cfg.DB.Host, "name", cfg.DB.Name)

	ledgerSvc := ledger.NewService(store.New(db), password.NewHasher(cfg.Password.Iterations))

	return fn(ctx, &app{
		db:       db,
		ledger:   ledgerSvc,
		importer: importer.NewService(ledgerSvc),
	})
}

// currentUser resolves --user.
func (a *app) currentUser(ctx context.Context) (*ledger.User, error) {
	if username == "" {
		return nil, errNoUser
	}

	u, err := a.ledger.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}

	return u, nil
}

func (a *app) currency(ctx context.Context, userID uuid.UUID, name string) (*ledger.Currency, error) {
	items, err := a.ledger.ListCurrencies(ctx, ledger.ListFilter{UserID: userID, IncludeArchived: true})
	if err != nil {
		return nil, err
	}

	return byName(items, "currency", name, func(c *ledger.Currency) string { return c.Name })
}

func (a *app) category(ctx context.Context, userID uuid.UUID, name string) (*ledger.Category, error) {
	items, err := a.ledger.ListCategories(ctx, ledger.ListFilter{UserID: userID, IncludeArchived: true})
	if err != nil {
		return nil, err
	}

	return byName(items, "category", name, func(c *ledger.Category) string { return c.Name })
}

func (a *app) source(ctx context.Context, userID uuid.UUID, name string) (*ledger.Source, error) {
	items, err := a.ledger.ListSources(ctx, ledger.ListFilter{UserID: userID, IncludeArchived: true})
	if err != nil {
		return nil, err
	}

	return byName(items, "source", name, func(s *ledger.Source) string { return s.Name })
}

// entry loads an entry of the given user by id.
func (a *app) entry(ctx context.Context, userID uuid.UUID, rawID string) (*ledger.Entry, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid entry id %q: %w", rawID, err)
	}

	e, err := a.ledger.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if e.UserID != userID {
		return nil, fmt.Errorf("entry %s: %w", id, ledger.ErrNotFound)
	}

	return e, nil
}

func byName[T any](items []T, kind, name string, nameOf func(T) string) (T, error) {
	for _, item := range items {
		if nameOf(item) == name {
			return item, nil
		}
	}

	var zero T

	return zero, fmt.Errorf("%s %q: %w", kind, name, ledger.ErrNotFound)
}
