package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/sketchnotes"
)

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the storage adapter and its state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(app *sketchnotes.App) error {
				state := app.State()
				return render(cmd.OutOrStdout(), c.cfg.GetString("format"), state, func(w io.Writer) error {
					fmt.Fprintf(w, "adapter\t%v\n", state["adapter"])
					fmt.Fprintf(w, "location\t%v\n", state["location"])
					return nil
				})
			})
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sketchnotes",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sketchnotes version %s\n", strings.TrimSpace(sketchnotes.Version))
		},
	}
}
