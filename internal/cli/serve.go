package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/internal/api"
	"github.com/depscope/depscope/pkg/explorer"
	"github.com/depscope/depscope/pkg/filter"
	"github.com/depscope/depscope/pkg/generate"
	"github.com/depscope/depscope/pkg/store"
)

// serveCommand creates the HTTP API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		registry string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve exposes the exploration session over HTTP: actions are posted to
/actions, the current graph is read from /graph, and snapshots are managed
under /snapshots. Snapshots persist to MongoDB when configured, otherwise
they live in memory for the lifetime of the process.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			backend := c.newBackend(cmd, noCache)
			defer backend.Close()

			source, err := c.newSource(registry, backend, c.config.TTL())
			if err != nil {
				return err
			}

			gen := generate.New(source)
			controller := explorer.New(gen, filter.New(), explorer.NopView{}, explorer.Options{
				Logger: logger,
			})

			var snapshots store.Store
			if c.config.Mongo.URI != "" {
				connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				snapshots, err = store.NewMongoStore(connectCtx, store.MongoConfig{
					URI:        c.config.Mongo.URI,
					Database:   c.config.Mongo.Database,
					Collection: c.config.Mongo.Collection,
				})
				cancel()
				if err != nil {
					return err
				}
				logger.Info("snapshot store connected", "backend", "mongodb")
			} else {
				snapshots = store.NewMemoryStore()
				logger.Info("snapshot store in memory; configure mongo.uri to persist")
			}
			defer snapshots.Close(context.Background())

			if addr == "" {
				addr = c.config.Server.Addr
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewServer(controller, gen.Graph(), snapshots, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr, "registry", source.Name())
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVarP(&registry, "registry", "r", "", "package registry: npm, pypi, or crates (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")

	return cmd
}
