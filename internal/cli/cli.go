// Package cli implements the natalchart command-line interface.
package cli

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/natalchart/pkg/buildinfo"
	"github.com/matzehuels/natalchart/pkg/cache"
	"github.com/matzehuels/natalchart/pkg/config"
	"github.com/matzehuels/natalchart/pkg/httputil"
	"github.com/matzehuels/natalchart/pkg/icons"
	"github.com/matzehuels/natalchart/pkg/integrations"
	"github.com/matzehuels/natalchart/pkg/integrations/natalcharts"
	"github.com/matzehuels/natalchart/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
	loaded     bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "natalchart draws natal chart wheels",
		Long:         `natalchart fetches a natal chart for a moment and place and draws it as a radial wheel: twelve houses, planet glyphs and colour-coded aspect lines.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/natalchart/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.locateCommand())
	root.AddCommand(c.oddsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file once. A level set in the file only
// raises verbosity; --verbose always wins.
func (c *CLI) loadConfig() error {
	if c.loaded {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.loaded = true
	if level, err := log.ParseLevel(strings.ToLower(cfg.Log.Level)); err == nil && level < c.Logger.GetLevel() {
		c.Logger.SetLevel(level)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Icons from the configured
// directory load in the background; render passes wait for them.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	client := natalcharts.NewClient(ch, c.cfg.API.BaseURL)
	client.SetHTTPClient(newHTTPClient(c.cfg.API))
	client.SetRetryPolicy(httputil.Policy{
		Attempts: c.cfg.API.Attempts,
		Delay:    httputil.DefaultPolicy.Delay,
		MaxDelay: httputil.DefaultPolicy.MaxDelay,
	})

	logger := loggerFromContext(ctx)
	runner := pipeline.NewRunner(client, ch, nil, logger)
	if dir := c.cfg.Render.IconDir; dir != "" {
		reg := icons.NewRegistry()
		if err := reg.DeclareDir(dir); err != nil {
			logger.Warn("icons unavailable", "dir", dir, "err", err)
		} else {
			runner.SetIcons(reg, dir)
			go func() {
				if err := reg.Preload(ctx); err != nil {
					logger.Warn("some icons failed to load", "err", err)
				}
			}()
		}
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := cache.Open(ctx, c.cfg.CacheOptions())
	if err != nil {
		loggerFromContext(ctx).Warn("cache unavailable, continuing without it", "err", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

func newHTTPClient(api config.API) *http.Client {
	h := integrations.NewHTTPClient()
	if api.Timeout > 0 {
		h.Timeout = api.Timeout
	}
	return h
}
