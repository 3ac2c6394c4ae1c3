package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/natalchart/pkg/server"
	"github.com/matzehuels/natalchart/pkg/store"
)

// serveCommand creates the serve command, which exposes the render pipeline
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chart HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	history, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	logger := loggerFromContext(ctx)

	srv := server.New(server.Config{
		Addr:         c.cfg.Server.Addr,
		ReadTimeout:  c.cfg.Server.ReadTimeout,
		WriteTimeout: c.cfg.Server.WriteTimeout,
		Logger:       logger,
		Runner:       runner,
		Store:        history,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	logger.Info("listening", "addr", c.cfg.Server.Addr)

	select {
	case err := <-errCh:
		c.closeStore(logger, history)
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	c.closeStore(logger, history)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// openStore connects to MongoDB when a URI is configured and keeps history
// in memory otherwise.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	sc := c.cfg.Store
	if sc.MongoURI == "" {
		loggerFromContext(ctx).Debug("render history kept in memory")
		return store.NewMemoryStore(), nil
	}
	s, err := store.NewMongoStore(ctx, sc.MongoURI, sc.Database, sc.Collection)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("render history in mongodb", "database", sc.Database, "collection", sc.Collection)
	return s, nil
}

func (c *CLI) closeStore(logger *log.Logger, s store.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		logger.Warn("close render history", "err", err)
	}
}
