package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var categoryCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			c, err := a.ledger.CreateCategory(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "created category %s (%s)", c.Name, c.ID)

			return nil
		})
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			items, err := a.ledger.ListCategories(ctx, ledger.ListFilter{UserID: u.ID, IncludeArchived: listArchived})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(items))
			archived := make(map[int]bool)

			for i, c := range items {
				rows = append(rows, []string{c.Name, yesNo(c.Archived)})
				archived[i] = c.Archived
			}

			printTable(cmd.OutOrStdout(), []string{"Name", "Archived"}, rows, archived)

			return nil
		})
	},
}

var categoryArchiveCmd = &cobra.Command{
	Use:   "archive <name>",
	Short: "Archive a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			c, err := a.category(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.ArchiveCategory(ctx, c.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "archived category %s", c.Name)

			return nil
		})
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a category no entry uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}

			c, err := a.category(ctx, u.ID, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.DeleteCategory(ctx, c.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "deleted category %s", c.Name)

			return nil
		})
	},
}

func init() {
	categoryListCmd.Flags().BoolVar(&listArchived, "all", false, "include archived categories")

	categoryCmd.AddCommand(categoryCreateCmd, categoryListCmd, categoryArchiveCmd, categoryDeleteCmd)
}
