// Package cli implements the ledger command line.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledger/internal/config"
	"github.com/MrJamesThe3rd/ledger/internal/ledger"
)

// Exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitIntegrity = 2
)

var (
	envFile  string
	debug    bool
	username string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Multi-currency personal finance ledger",
	Long: `ledger manages users, currencies, categories, money sources and
entries stored in PostgreSQL.

Rows are addressed by name within the user given with --user.

Example:
  ledger schema apply
  ledger user create alice
  ledger currency create USD --user alice --rate 1
  ledger source create Cash --user alice --currency USD
  ledger entry create --user alice --type income --amount 100 \
      --description Paycheck --category Salary --source Cash`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(); err != nil {
			return err
		}

		var err error

		cfg, err = config.Load()
		if err != nil {
			return err
		}

		level := cfg.Level()
		if debug {
			level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		return nil
	},
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	slog.Error("command failed", "error", err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if ledger.IsIntegrityError(err) {
		return exitIntegrity
	}

	return exitError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "user owning the rows")

	rootCmd.AddCommand(schemaCmd, userCmd, currencyCmd, categoryCmd, sourceCmd, entryCmd)
}

func loadEnv() error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}

		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	return nil
}
