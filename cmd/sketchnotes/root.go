package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/sketchnotes"
)

// cli holds the command tree and its configuration sources.
type cli struct {
	root   *cobra.Command
	cfg    *viper.Viper
	in     io.Reader
	logger *slog.Logger
}

func newCLI(in io.Reader) *cli {
	c := &cli{cfg: viper.New(), in: in, logger: slog.Default()}

	c.root = &cobra.Command{
		Use:   "sketchnotes",
		Short: "A drawing-note catalog with admin and user roles",
		Long: `sketchnotes keeps a catalog of drawing notes, the registered accounts and the
current login in one data directory. The CLI acts as a single browser profile:
"login" stores the identity that later commands are checked against.

Configuration sources (in order of precedence):
  1. Command line flags
  2. Environment variables (SKETCHNOTES_DATA, SKETCHNOTES_ADAPTER, ...)
  3. sketchnotes.yaml in the current directory, or SKETCHNOTES_CONFIG`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			level := slog.LevelInfo
			if c.cfg.GetBool("verbose") {
				level = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(c.logger)
			return nil
		},
	}

	flags := c.root.PersistentFlags()
	flags.StringP("data", "d", "", "Data directory or sqlite file (default: nearest data root, else the working directory)")
	flags.String("adapter", sketchnotes.AdapterFS, "Storage adapter: fs|sqlite|memory")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.Bool("read-only", false, "Reject every write")
	flags.Bool("dev-safety", true, "Sandbox the data directory when run via go run")
	flags.StringP("format", "f", "table", "Output format: table|json|yaml")

	c.setupConfig()
	c.root.AddCommand(
		c.signupCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.notesCmd(),
		c.usersCmd(),
		c.serveCmd(),
		c.infoCmd(),
		c.versionCmd(),
	)
	return c
}

func (c *cli) setupConfig() {
	if configFile := os.Getenv("SKETCHNOTES_CONFIG"); configFile != "" {
		c.cfg.SetConfigFile(configFile)
	} else {
		c.cfg.SetConfigName("sketchnotes")
		c.cfg.SetConfigType("yaml")
		c.cfg.AddConfigPath(".")
	}

	c.cfg.SetEnvPrefix("SKETCHNOTES")
	c.cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.cfg.AutomaticEnv()

	// The config file is optional.
	_ = c.cfg.ReadInConfig()
}

// open builds the app from the resolved configuration.
func (c *cli) open() (*sketchnotes.App, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	data, err := sketchnotes.DataDir(c.cfg.GetString("data"), cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to locate data: %w", err)
	}
	c.logger.Debug("data location", "path", data)

	app, err := sketchnotes.New(data,
		sketchnotes.WithAdapter(c.cfg.GetString("adapter")),
		sketchnotes.WithReadOnly(c.cfg.GetBool("read-only")),
		sketchnotes.WithDevSafety(c.cfg.GetBool("dev-safety")),
		sketchnotes.WithLogger(c.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open data: %w", err)
	}
	return app, nil
}

// withApp opens the app for the duration of fn.
func (c *cli) withApp(fn func(app *sketchnotes.App) error) error {
	app, err := c.open()
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
