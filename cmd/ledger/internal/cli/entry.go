package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledger/internal/importer"
	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

var entryFlags struct {
	entryType       string
	amount          string
	description     string
	category        string
	source          string
	secondarySource string
	rate            float64
	rateToFixed     float64
	target          string
	date            string
	from            string
	to              string
}

var importFlags struct {
	format    string
	category  string
	source    string
	entryType string
	dryRun    bool
}

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Record and inspect entries",
}

var entryCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record an entry and apply it to its sources",
	Long: `Record a spend, income, lend, borrow or convert entry.

A convert entry moves --amount out of --source and amount × --rate into
--secondary-source.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(entryFlags.amount)
		if err != nil {
			return fmt.Errorf("invalid --amount %q: %w", entryFlags.amount, err)
		}

		date := time.Now().UTC().Truncate(24 * time.Hour)
		if entryFlags.date != "" {
			if date, err = parseDate("--date", entryFlags.date); err != nil {
				return err
			}
		}

		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			category, err := a.category(ctx, u.ID, entryFlags.category)
			if err != nil {
				return err
			}

			src, err := a.source(ctx, u.ID, entryFlags.source)
			if err != nil {
				return err
			}

			params := ledger.CreateEntryParams{
				UserID:      u.ID,
				Description: entryFlags.description,
				CategoryID:  category.ID,
				Amount:      amount,
				Date:        date,
				Type:        ledger.EntryType(entryFlags.entryType),
				SourceID:    src.ID,
			}

			if entryFlags.target != "" {
				params.Target = &entryFlags.target
			}

			if entryFlags.secondarySource != "" {
				secondary, err := a.source(ctx, u.ID, entryFlags.secondarySource)
				if err != nil {
					return err
				}

				params.SecondarySourceID = &secondary.ID
			}

			if cmd.Flags().Changed("rate") {
				params.ConversionRate = &entryFlags.rate
			}

			if cmd.Flags().Changed("rate-to-fixed") {
				params.ConversionRateToFixed = &entryFlags.rateToFixed
			}

			e, err := a.ledger.CreateEntry(ctx, params)
			if err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "recorded %s %s on %s (%s)", e.Type, e.Amount, formatDate(e.Date), e.ID)

			return nil
		})
	},
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries by date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			filter, err := a.entryFilter(ctx, u.ID)
			if err != nil {
				return err
			}

			entries, err := a.ledger.ListEntries(ctx, filter)
			if err != nil {
				return err
			}

			names, err := a.names(ctx, u.ID)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(entries))
			archived := make(map[int]bool)

			for i, e := range entries {
				account := nameOf(names, e.SourceID)
				if e.SecondarySourceID != nil {
					account += " → " + nameOf(names, *e.SecondarySourceID)
				}

				rows = append(rows, []string{
					e.ID.String(),
					formatDate(e.Date),
					string(e.Type),
					e.Description,
					nameOf(names, e.CategoryID),
					account,
					e.Amount.String() + " " + nameOf(names, e.CurrencyID),
				})
				archived[i] = e.Archived
			}

			printTable(cmd.OutOrStdout(),
				[]string{"ID", "Date", "Type", "Description", "Category", "Source", "Amount"},
				rows, archived)

			slog.Debug("listed entries", "count", len(entries))

			return nil
		})
	},
}

var entryArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive an entry and take it out of its source balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			e, err := a.entry(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.ArchiveEntry(ctx, e.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "archived entry %s", e.ID)

			return nil
		})
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			e, err := a.entry(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.DeleteEntry(ctx, e.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "deleted entry %s", e.ID)

			return nil
		})
	},
}

var entryImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import entries from a CSV export",
	Long: `Import entries from a ledger CSV export or a CGD bank export.

Every row is recorded, or none is. Bank exports carry no category or source,
so --category and --source are used for them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			res, err := a.importer.Import(ctx, f, importer.Options{
				UserID:   u.ID,
				Format:   importer.Format(importFlags.format),
				Category: importFlags.category,
				Source:   importFlags.source,
				Type:     ledger.EntryType(importFlags.entryType),
				DryRun:   importFlags.dryRun,
			})
			if err != nil {
				return err
			}

			slog.Info("import parsed", "file", args[0], "format", res.Format, "charset", res.Charset, "rows", len(res.Params))

			if importFlags.dryRun {
				printDone(cmd.OutOrStdout(), "%d entries would be imported", len(res.Params))
				return nil
			}

			printDone(cmd.OutOrStdout(), "imported %d entries", len(res.Entries))

			return nil
		})
	},
}

func (a *app) entryFilter(ctx context.Context, userID uuid.UUID) (ledger.EntryFilter, error) {
	filter := ledger.EntryFilter{UserID: userID, IncludeArchived: listArchived}

	if entryFlags.entryType != "" {
		t := ledger.EntryType(entryFlags.entryType)
		if !t.Valid() {
			return filter, fmt.Errorf("%w: invalid entry type %q", ledger.ErrCheckViolation, t)
		}

		filter.Type = &t
	}

	if entryFlags.category != "" {
		c, err := a.category(ctx, userID, entryFlags.category)
		if err != nil {
			return filter, err
		}

		filter.CategoryID = &c.ID
	}

	if entryFlags.source != "" {
		src, err := a.source(ctx, userID, entryFlags.source)
		if err != nil {
			return filter, err
		}

		filter.SourceID = &src.ID
	}

	if entryFlags.from != "" {
		from, err := parseDate("--from", entryFlags.from)
		if err != nil {
			return filter, err
		}

		filter.StartDate = &from
	}

	if entryFlags.to != "" {
		to, err := parseDate("--to", entryFlags.to)
		if err != nil {
			return filter, err
		}

		filter.EndDate = &to
	}

	return filter, nil
}

// names maps the ids of the user's currencies, categories and sources to
// their names for display.
func (a *app) names(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	names, err := a.currencyNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := ledger.ListFilter{UserID: userID, IncludeArchived: true}

	categories, err := a.ledger.ListCategories(ctx, all)
	if err != nil {
		return nil, err
	}

	for _, c := range categories {
		names[c.ID] = c.Name
	}

	sources, err := a.ledger.ListSources(ctx, all)
	if err != nil {
		return nil, err
	}

	for _, src := range sources {
		names[src.ID] = src.Name
	}

	return names, nil
}

func parseDate(flag, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, want YYYY-MM-DD", flag, s)
	}

	return t, nil
}

func init() {
	f := entryCreateCmd.Flags()
	f.StringVar(&entryFlags.entryType, "type", "", "spend, income, lend, borrow or convert")
	f.StringVar(&entryFlags.amount, "amount", "", "positive amount in the source currency")
	f.StringVar(&entryFlags.description, "description", "", "what the entry is")
	f.StringVar(&entryFlags.category, "category", "", "category name")
	f.StringVar(&entryFlags.source, "source", "", "source the amount moves out of or into")
	f.StringVar(&entryFlags.secondarySource, "secondary-source", "", "receiving source of a convert")
	f.Float64Var(&entryFlags.rate, "rate", 0, "conversion rate of a convert")
	f.Float64Var(&entryFlags.rateToFixed, "rate-to-fixed", 0, "rate to the fixed currency (default: the currency's current rate)")
	f.StringVar(&entryFlags.target, "target", "", "counterparty")
	f.StringVar(&entryFlags.date, "date", "", "entry date, YYYY-MM-DD (default today)")

	for _, name := range []string{"type", "amount", "description", "category", "source"} {
		_ = entryCreateCmd.MarkFlagRequired(name)
	}

	lf := entryListCmd.Flags()
	lf.StringVar(&entryFlags.entryType, "type", "", "only entries of this type")
	lf.StringVar(&entryFlags.category, "category", "", "only entries in this category")
	lf.StringVar(&entryFlags.source, "source", "", "only entries touching this source")
	lf.StringVar(&entryFlags.from, "from", "", "first date, YYYY-MM-DD")
	lf.StringVar(&entryFlags.to, "to", "", "last date, YYYY-MM-DD")
	lf.BoolVar(&listArchived, "all", false, "include archived entries")

	imf := entryImportCmd.Flags()
	imf.StringVar(&importFlags.format, "format", string(importer.FormatAuto), "ledger, cgd or auto")
	imf.StringVar(&importFlags.category, "category", "", "category for rows without one")
	imf.StringVar(&importFlags.source, "source", "", "source for rows without one")
	imf.StringVar(&importFlags.entryType, "type", "", "entry type for rows without one")
	imf.BoolVar(&importFlags.dryRun, "dry-run", false, "parse and check without recording")

	entryCmd.AddCommand(entryCreateCmd, entryListCmd, entryArchiveCmd, entryDeleteCmd, entryImportCmd)
}
