package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	userPassword string
	clearFixed   bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a disabled user",
	Long: `Create a user. New users start disabled and without a fixed currency.

The password is prompted for when --password is not given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw := userPassword
		if pw == "" {
			var err error
			if pw, err = promptPassword(); err != nil {
				return err
			}
		}

		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.ledger.CreateUser(ctx, args[0], pw)
			if err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "created user %s (%s)", u.Username, u.ID)

			return nil
		})
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show <username>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.ledger.GetUserByUsername(ctx, args[0])
			if err != nil {
				return err
			}

			fixed := "-"
			if u.FixedCurrencyID != nil {
				c, err := a.ledger.GetCurrency(ctx, *u.FixedCurrencyID)
				if err != nil {
					return err
				}

				fixed = c.Name
			}

			printTable(cmd.OutOrStdout(),
				[]string{"ID", "Username", "Enabled", "Fixed currency"},
				[][]string{{u.ID.String(), u.Username, yesNo(u.Enabled), fixed}},
				nil,
			)

			return nil
		})
	},
}

func setEnabledCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				u, err := a.ledger.GetUserByUsername(ctx, args[0])
				if err != nil {
					return err
				}

				if err := a.ledger.SetUserEnabled(ctx, u.ID, enabled); err != nil {
					return err
				}

				printDone(cmd.OutOrStdout(), "user %s %sd", u.Username, use)

				return nil
			})
		},
	}
}

var userFixedCurrencyCmd = &cobra.Command{
	Use:   "fixed-currency <username> [currency]",
	Short: "Set or clear the currency balances are reported in",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && !clearFixed {
			return errors.New("give a currency name or --clear")
		}

		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.ledger.GetUserByUsername(ctx, args[0])
			if err != nil {
				return err
			}

			if clearFixed {
				if err := a.ledger.SetFixedCurrency(ctx, u.ID, nil); err != nil {
					return err
				}

				printDone(cmd.OutOrStdout(), "cleared fixed currency of %s", u.Username)

				return nil
			}

			c, err := a.currency(ctx, u.ID, args[1])
			if err != nil {
				return err
			}

			if err := a.ledger.SetFixedCurrency(ctx, u.ID, &c.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "fixed currency of %s is now %s", u.Username, c.Name)

			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user and everything the user owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			u, err := a.ledger.GetUserByUsername(ctx, args[0])
			if err != nil {
				return err
			}

			if err := a.ledger.DeleteUser(ctx, u.ID); err != nil {
				return err
			}

			printDone(cmd.OutOrStdout(), "deleted user %s", u.Username)

			return nil
		})
	},
}

func promptPassword() (string, error) {
	var pw, confirm string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&pw).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}

					return nil
				}),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm),
		),
	)

	if err := form.Run(); err != nil {
		return "", err
	}

	if pw != confirm {
		return "", errors.New("passwords do not match")
	}

	return pw, nil
}

func init() {
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "password (prompted when omitted)")
	userFixedCurrencyCmd.Flags().BoolVar(&clearFixed, "clear", false, "clear the fixed currency")

	userCmd.AddCommand(
		userCreateCmd,
		userShowCmd,
		setEnabledCmd("enable", "Enable a user", true),
		setEnabledCmd("disable", "Disable a user", false),
		userFixedCurrencyCmd,
		userDeleteCmd,
	)
}
