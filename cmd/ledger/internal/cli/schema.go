package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledger/internal/database"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the database schema",
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create missing tables, types and indices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			if err := database.EnsureSchema(ctx, a.db); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "schema is up to date")

			return nil
		})
	},
}

func init() {
	schemaCmd.AddCommand(schemaApplyCmd)
}
