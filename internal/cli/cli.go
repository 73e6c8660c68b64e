// Package cli is the command-line entry point. With no subcommand it starts
// the terminal browser; subcommands give headless access to the same
// catalog, favorites and view logic.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-catalog/internal/clipboard"
	"github.com/dpshade/prompt-catalog/internal/config"
	"github.com/dpshade/prompt-catalog/internal/errors"
	"github.com/dpshade/prompt-catalog/internal/logging"
	"github.com/dpshade/prompt-catalog/internal/service"
	"github.com/dpshade/prompt-catalog/internal/ui"
	"github.com/dpshade/prompt-catalog/internal/viewstate"
)

// annotationNoService marks commands that run without loading the catalog
const annotationNoService = "no-service"

// CLI holds global flag values and the objects built from them
type CLI struct {
	version string
	out     io.Writer
	errOut  io.Writer

	configPath string
	catalog    string
	verbose    bool
	startRoute string

	cfg     *config.Config
	logger  *zap.Logger
	service *service.Service

	// clipboard is resolved lazily; tests replace it
	clipboard clipboard.Writer
}

// NewCLI creates a new CLI instance writing to out and errOut
func NewCLI(version string, out, errOut io.Writer) *CLI {
	return &CLI{version: version, out: out, errOut: errOut, logger: zap.NewNop()}
}

// RootCommand builds the command tree
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "prompt-catalog",
		Short: "Browse a catalog of prompt templates",
		Long: `prompt-catalog browses a JSON catalog of prompt templates grouped by category.

Run without arguments to start the interactive browser; --route opens it on
a link such as '#/category/kod' or '#/prompt/r1'. Favorites persist
locally in the configured backend (file, sqlite, redis or memory).`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoService] == "true" {
				return nil
			}
			return c.setup(cmd.Context(), cmd == cmd.Root())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (default: <dir>/config.yaml)")
	root.PersistentFlags().StringVar(&c.catalog, "catalog", "", "Catalog source path or URL (overrides config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.Flags().StringVar(&c.startRoute, "route", "", "Route to open the browser on, e.g. '#/category/kod'")

	root.AddCommand(
		c.listCommand(),
		c.categoriesCommand(),
		c.showCommand(),
		c.routeCommand(),
		c.favoritesCommand(),
		c.copyCommand(),
		c.serveCommand(),
		c.versionCommand(),
	)
	return root
}

// setup loads configuration, builds the logger and loads the catalog
func (c *CLI) setup(ctx context.Context, tuiMode bool) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return errors.InvalidInputError("Invalid configuration").WithDetails(err.Error())
	}
	if c.catalog != "" {
		cfg.Catalog.Source = c.catalog
	}
	c.cfg = cfg

	logger, err := logging.New(cfg.Logging, tuiMode, c.verbose)
	if err != nil {
		return errors.InvalidInputError("Invalid logging configuration").WithDetails(err.Error())
	}
	c.logger = logger

	svc, err := service.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	c.service = svc
	return nil
}

func (c *CLI) teardown() {
	if c.service != nil {
		if err := c.service.Close(); err != nil {
			c.logger.Warn("failed to close service", zap.Error(err))
		}
	}
	_ = c.logger.Sync()
}

func (c *CLI) clipboardWriter() clipboard.Writer {
	if c.clipboard == nil {
		c.clipboard = clipboard.Detect(os.Stderr, c.logger)
	}
	return c.clipboard
}

// tuiController builds the browser's controller, positioned on --route
func (c *CLI) tuiController() *viewstate.Controller {
	ctrl := c.service.NewController()
	if c.startRoute != "" {
		ctrl.Navigate(c.startRoute)
	}
	return ctrl
}

func (c *CLI) runTUI(ctx context.Context) error {
	return ui.Run(ctx, c.tuiController(), ui.Options{
		Clipboard:     c.clipboardWriter(),
		ToastDuration: c.cfg.ToastDuration(),
		Logger:        c.logger,
	})
}

// Execute runs the command tree and returns the process exit code
func (c *CLI) Execute(ctx context.Context, args []string) int {
	root := c.RootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	defer c.teardown()
	if err != nil {
		// cobra's own failures are usage errors: unknown command, bad flags, arg counts
		if !errors.IsAppError(err) {
			err = errors.InvalidInputError(err.Error())
		}
		handler := errors.NewCLIErrorHandler(c.verbose, c.logger)
		fmt.Fprintln(c.errOut, handler.HandleError(err))
		return 1
	}
	return 0
}
