package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/sketchnotes"
	"github.com/aretw0/sketchnotes/pkg/adapters/lifecycle"
	"github.com/aretw0/sketchnotes/pkg/catalog"
	"github.com/aretw0/sketchnotes/pkg/core"
	"github.com/aretw0/sketchnotes/pkg/view"
)

func (c *cli) notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Browse and manage drawing notes",
	}
	cmd.AddCommand(
		c.notesListCmd(),
		c.notesAddCmd(),
		c.notesEditCmd(),
		c.notesToggleCmd(),
		c.notesDeleteCmd(),
		c.notesWatchCmd(),
	)
	return cmd
}

func (c *cli) notesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog (any logged-in identity)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(app *sketchnotes.App) error {
				page := view.NewUser(app.Deps())
				if err := page.Mount(cmd.Context()); err != nil {
					return err
				}
				notes := page.Notes()
				return render(cmd.OutOrStdout(), c.cfg.GetString("format"), notes, notesTable(notes, page.EmptyMessage()))
			})
		},
	}
}

func (c *cli) notesAddCmd() *cobra.Command {
	var description, image string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a note (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAdmin(cmd.Context(), func(page *view.Admin) error {
				page.ToggleForm()
				fields := map[view.Field]string{
					view.FieldTitle:       args[0],
					view.FieldDescription: description,
					view.FieldImage:       image,
				}
				for field, value := range fields {
					if err := page.SetField(field, value); err != nil {
						return err
					}
				}
				note, err := page.Submit(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note added: %s\n", note.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Note description (required)")
	cmd.Flags().StringVar(&image, "image", "", "Image URL")
	return cmd
}

func (c *cli) notesEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Overwrite fields of a note (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAdmin(cmd.Context(), func(page *view.Admin) error {
				if err := page.Edit(args[0]); err != nil {
					return err
				}
				for _, field := range []view.Field{view.FieldTitle, view.FieldDescription, view.FieldImage} {
					if !cmd.Flags().Changed(string(field)) {
						continue
					}
					value, _ := cmd.Flags().GetString(string(field))
					if err := page.SetField(field, value); err != nil {
						return err
					}
				}
				note, err := page.Submit(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %s\n", note.ID)
				return nil
			})
		},
	}
	cmd.Flags().String(string(view.FieldTitle), "", "New title")
	cmd.Flags().String(string(view.FieldDescription), "", "New description")
	cmd.Flags().String(string(view.FieldImage), "", "New image URL (empty to clear)")
	return cmd
}

func (c *cli) notesToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the done flag of a note (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAdmin(cmd.Context(), func(page *view.Admin) error {
				note, err := page.ToggleDone(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note %s done=%v\n", note.ID, note.Done)
				return nil
			})
		},
	}
}

func (c *cli) notesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note after confirmation (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAdmin(cmd.Context(), func(page *view.Admin) error {
				confirm := catalog.Always
				if !yes {
					confirm = prompter(c.in, cmd.OutOrStdout())
				}
				err := page.Delete(cmd.Context(), args[0], confirm)
				if errors.Is(err, core.ErrDeletionNotConfirmed) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (c *cli) notesWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print changes to the catalog as other writers make them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.withApp(func(app *sketchnotes.App) error {
				if _, err := app.Session.RequireAny(ctx); err != nil {
					return err
				}
				events, err := app.Notes.Watch(ctx)
				if err != nil {
					return err
				}
				src := lifecycle.NewSource(events, core.KeyNotes)
				if err := src.Start(ctx); err != nil {
					return err
				}
				for e := range src.Events() {
					fmt.Fprintln(cmd.OutOrStdout(), e.String())
				}
				return nil
			})
		},
	}
}

// withAdmin mounts the admin page, which turns away non-admin identities.
func (c *cli) withAdmin(ctx context.Context, fn func(page *view.Admin) error) error {
	return c.withApp(func(app *sketchnotes.App) error {
		page := view.NewAdmin(app.Deps())
		if err := page.Mount(ctx); err != nil {
			return err
		}
		return fn(page)
	})
}

// prompter asks on out and reads a y/N answer from in.
func prompter(in io.Reader, out io.Writer) catalog.Confirmer {
	return catalog.ConfirmFunc(func(_ context.Context, prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, _ := bufio.NewReader(in).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
}
