package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

var (
	currencyRate    float64
	currencyNewName string
	listArchived    bool
)

var currencyCmd = &cobra.Command{
	Use:   "currency",
	Short: "Manage currencies",
}

var currencyCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a currency with its rate to the fixed currency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			c, err := a.ledger.CreateCurrency(ctx, ledger.CreateCurrencyParams{
				UserID:      u.ID,
				Name:        args[0],
				RateToFixed: currencyRate,
			})
			if err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "created currency %s (%s)", c.Name, c.ID)

			return nil
		})
	},
}

var currencyUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Rename a currency or change its rate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rateSet := cmd.Flags().Changed("rate")
		if currencyNewName == "" && !rateSet {
			return errors.New("nothing to update: give --name or --rate")
		}

		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			c, err := a.currency(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			name, rate := c.Name, c.RateToFixed
			if currencyNewName != "" {
				name = currencyNewName
			}

			if rateSet {
				rate = currencyRate
			}

			c, err = a.ledger.UpdateCurrency(ctx, c.ID, name, rate)
			if err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "updated currency %s, rate %s", c.Name, formatRate(c.RateToFixed))

			return nil
		})
	},
}

var currencyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List currencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			items, err := a.ledger.ListCurrencies(ctx, ledger.ListFilter{UserID: u.ID, IncludeArchived: listArchived})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(items))
			archived := make(map[int]bool)

			for i, c := range items {
				fixed := ""
				if u.FixedCurrencyID != nil && *u.FixedCurrencyID == c.ID {
					fixed = "*"
				}

				rows = append(rows, []string{c.Name, formatRate(c.RateToFixed), fixed, yesNo(c.Archived)})
				archived[i] = c.Archived
			}

			printTable(cmd.OutOrStdout(), []string{"Name", "Rate to fixed", "Fixed", "Archived"}, rows, archived)

			return nil
		})
	},
}

var currencyArchiveCmd = &cobra.Command{
	Use:   "archive <name>",
	Short: "Archive a currency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			c, err := a.currency(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.ArchiveCurrency(ctx, c.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "archived currency %s", c.Name)

			return nil
		})
	},
}

var currencyDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a currency no source or entry uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			c, err := a.currency(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.DeleteCurrency(ctx, c.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "deleted currency %s", c.Name)

			return nil
		})
	},
}

func init() {
	currencyCreateCmd.Flags().Float64Var(&currencyRate, "rate", 1, "rate to the fixed currency")
	currencyUpdateCmd.Flags().Float64Var(&currencyRate, "rate", 1, "new rate to the fixed currency")
	currencyUpdateCmd.Flags().StringVar(&currencyNewName, "name", "", "new name")
	currencyListCmd.Flags().BoolVar(&listArchived, "all", false, "include archived currencies")

	currencyCmd.AddCommand(currencyCreateCmd, currencyUpdateCmd, currencyListCmd, currencyArchiveCmd, currencyDeleteCmd)
}
