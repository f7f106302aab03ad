package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/sketchnotes"
	"github.com/aretw0/sketchnotes/pkg/core"
	"github.com/aretw0/sketchnotes/pkg/view"
)

func (c *cli) signupCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "signup <email> <password>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(app *sketchnotes.App) error {
				flow := view.NewSignup(app.Deps())
				flow.Draft = view.SignupDraft{Email: args[0], Password: args[1], Role: core.Role(role)}
				res, err := flow.Submit(cmd.Context())
				if errors.Is(err, core.ErrDuplicateEmail) {
					return errors.New(res.Message)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", string(core.RoleUser), "Account role: user|admin")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and remember the identity for later commands",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(app *sketchnotes.App) error {
				home, err := app.Session.Login(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (home: %s)\n", args[0], home)
				return nil
			})
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(app *sketchnotes.App) error {
				if _, err := app.Session.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(app *sketchnotes.App) error {
				id, ok, err := app.Session.Current(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
					return nil
				}
				return render(cmd.OutOrStdout(), c.cfg.GetString("format"), id, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s\t%s\n", id.Email, id.Role)
					return err
				})
			})
		},
	}
}

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect registered accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered accounts (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(app *sketchnotes.App) error {
				if _, err := app.Session.Require(cmd.Context(), core.RoleAdmin); err != nil {
					return err
				}
				accounts, err := app.Accounts.List(cmd.Context())
				if err != nil {
					return err
				}
				for i := range accounts {
					accounts[i].Password = ""
				}
				return render(cmd.OutOrStdout(), c.cfg.GetString("format"), accounts, func(w io.Writer) error {
					fmt.Fprintln(w, "EMAIL\tROLE")
					for _, a := range accounts {
						fmt.Fprintf(w, "%s\t%s\n", a.Email, a.Role)
					}
					return nil
				})
			})
		},
	})
	return cmd
}
