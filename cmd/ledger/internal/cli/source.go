package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

var (
	sourceCurrency string
	sourceAmount   string
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage money sources (wallets, accounts, cards)",
}

var sourceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a source holding one currency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(sourceAmount)
		if err != nil {
			return fmt.Errorf("invalid --amount %q: %w", sourceAmount, err)
		}

		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			c, err := a.currency(ctx, u.ID, sourceCurrency)
			if err != nil {
				return err
			}

			src, err := a.ledger.CreateSource(ctx, ledger.CreateSourceParams{
				UserID:     u.ID,
				Name:       args[0],
				CurrencyID: c.ID,
				Amount:     amount,
			})
			if err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "created source %s (%s) with %s %s", src.Name, src.ID, src.Amount, c.Name)

			return nil
		})
	},
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sources and their balances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			items, err := a.ledger.ListSources(ctx, ledger.ListFilter{UserID: u.ID, IncludeArchived: listArchived})
			if err != nil {
				return err
			}

			currencies, err := a.currencyNames(ctx, u.ID)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(items))
			archived := make(map[int]bool)

			for i, src := range items {
				rows = append(rows, []string{
					src.Name,
					src.Amount.String(),
					nameOf(currencies, src.CurrencyID),
					yesNo(src.Archived),
				})
				archived[i] = src.Archived
			}

			printTable(cmd.OutOrStdout(), []string{"Name", "Balance", "Currency", "Archived"}, rows, archived)

			return nil
		})
	},
}

var sourceArchiveCmd = &cobra.Command{
	Use:   "archive <name>",
	Short: "Archive a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			src, err := a.source(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.ArchiveSource(ctx, src.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "archived source %s", src.Name)

			return nil
		})
	},
}

var sourceDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a source no entry uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			src, err := a.source(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.DeleteSource(ctx, src.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "deleted source %s", src.Name)

			return nil
		})
	},
}

// currencyNames maps every currency of the user, archived ones included, to
// its name.
func (a *app) currencyNames(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	items, err := a.ledger.ListCurrencies(ctx, ledger.ListFilter{UserID: userID, IncludeArchived: true})
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(items))
	for _, c := range items {
		names[c.ID] = c.Name
	}

	return names, nil
}

func init() {
	sourceCreateCmd.Flags().StringVar(&sourceCurrency, "currency", "", "currency the source holds")
	sourceCreateCmd.Flags().StringVar(&sourceAmount, "amount", "0", "opening balance")
	_ = sourceCreateCmd.MarkFlagRequired("currency")
	sourceListCmd.Flags().BoolVar(&listArchived, "all", false, "include archived sources")

	sourceCmd.AddCommand(sourceCreateCmd, sourceListCmd, sourceArchiveCmd, sourceDeleteCmd)
}
