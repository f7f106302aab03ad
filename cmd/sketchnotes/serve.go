package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/sketchnotes"
	"github.com/aretw0/sketchnotes/pkg/web"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pages as JSON endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.withApp(func(app *sketchnotes.App) error {
				c.logger.Info("serving", "data", app.Location())
				return web.New(app.Deps()).Run(ctx, c.cfg.GetString("addr"))
			})
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	return cmd
}
