package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dpshade/prompt-catalog/internal/api"
	"github.com/dpshade/prompt-catalog/internal/clipboard"
	"github.com/dpshade/prompt-catalog/internal/errors"
	"github.com/dpshade/prompt-catalog/internal/models"
	"github.com/dpshade/prompt-catalog/internal/renderer"
	"github.com/dpshade/prompt-catalog/internal/route"
)

func (c *CLI) listCommand() *cobra.Command {
	var (
		category      string
		search        string
		favoritesOnly bool
		format        string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List records, optionally filtered",
		Example: `  prompt-catalog list
  prompt-catalog list --category marketing --search email
  prompt-catalog list --favorites --format ids`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			routeString := ""
			if category != "" {
				routeString = route.Category(category).String()
			}
			v := c.service.Resolve(routeString, search, favoritesOnly)
			return c.formatRecords(v.Records, v.Favorites, format)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category slug")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search text")
	cmd.Flags().BoolVar(&favoritesOnly, "favorites", false, "Only favorites")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, table, ids, json")
	return cmd
}

func (c *CLI) categoriesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.formatCategories(c.service.Catalog().Categories(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func (c *CLI) showCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"get"},
		Short:   "Show one record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.service.Record(args[0])
			if err != nil {
				return err
			}
			return c.formatRecord(rec, c.service.Favorites().Has(rec.ID), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, markdown, raw, json")
	return cmd
}

func (c *CLI) routeCommand() *cobra.Command {
	var (
		search        string
		favoritesOnly bool
		format        string
	)
	cmd := &cobra.Command{
		Use:   "route <route>",
		Short: "Resolve a route string such as #/category/marketing or #/prompt/r1",
		Long: `Resolve a route string the same way the browser does on startup and print
the resulting view. An empty string or "" is the home grid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			routeString := ""
			if len(args) == 1 {
				routeString = args[0]
			}
			return c.formatView(c.service.Resolve(routeString, search, favoritesOnly), format)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search text")
	cmd.Flags().BoolVar(&favoritesOnly, "favorites", false, "Only favorites")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func (c *CLI) favoritesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fav",
		Aliases: []string{"favorites"},
		Short:   "List or toggle favorites",
	}

	var format string
	list := &cobra.Command{
		Use:   "list",
		Short: "List favorite records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := c.service.Resolve("", "", true)
			return c.formatRecords(v.Records, v.Favorites, format)
		},
	}
	list.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, table, ids, json")

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Add or remove a record from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := c.service.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if on {
				fmt.Fprintf(c.out, "★ %s added to favorites\n", args[0])
			} else {
				fmt.Fprintf(c.out, "☆ %s removed from favorites\n", args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(list, toggle)
	return cmd
}

func (c *CLI) copyCommand() *cobra.Command {
	var variables, asJSON bool
	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a prompt, its variables template or its JSON message to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if variables && asJSON {
				return errors.InvalidInputError("--variables and --json are mutually exclusive")
			}
			rec, err := c.service.Record(args[0])
			if err != nil {
				return err
			}
			text, success, err := copyPayload(rec, variables, asJSON)
			if err != nil {
				return err
			}

			msg, err := clipboard.CopyWithFallback(c.clipboardWriter(), text, success)
			if err != nil {
				return copyFailure(err)
			}
			fmt.Fprintln(c.out, msg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&variables, "variables", false, "Copy the name= variables template")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Copy as a JSON chat message array")
	return cmd
}

// copyFailure reports a failed copy as CLIPBOARD_UNAVAILABLE, keeping an
// AppError the writer already produced instead of wrapping it twice
func copyFailure(err error) *errors.AppError {
	if errors.HasCode(err, errors.ErrCodeClipboardUnavailable) {
		return errors.GetAppError(err).WithDetails(clipboard.GetInstallInstructions())
	}
	return errors.ClipboardError(err).WithDetails(clipboard.GetInstallInstructions())
}

// copyPayload selects what copy puts on the clipboard
func copyPayload(rec *models.Record, variables, asJSON bool) (string, string, error) {
	r := renderer.NewRenderer(rec)
	switch {
	case variables:
		return r.VariablesTemplate(), "Variables copied", nil
	case asJSON:
		text, err := r.RenderJSON()
		if err != nil {
			return "", "", errors.InternalError("Failed to render JSON").WithDetails(err.Error())
		}
		return text, "JSON copied", nil
	default:
		return r.RenderText(), "Prompt copied", nil
	}
}

func (c *CLI) serveCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and a shared view state over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (overrides config)")
	return cmd
}

func (c *CLI) serve(parent context.Context) error {
	srv, err := api.NewServer(api.Config{
		Catalog:        c.service.Catalog(),
		Favorites:      c.service.Favorites(),
		Logger:         c.logger,
		Port:           c.cfg.Server.Port,
		Version:        c.version,
		IncludeDetails: c.verbose,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down", zap.NamedError("reason", context.Cause(gctx)))
		return nil
	})

	if err := g.Wait(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "HTTP server failed")
	}
	return nil
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoService: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "prompt-catalog version %s\n", c.version)
		},
	}
}
