package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lineagelab/idhist/internal/server"
	"github.com/lineagelab/idhist/pkg/cache"
	"github.com/lineagelab/idhist/pkg/pipeline"
	"github.com/lineagelab/idhist/pkg/store"
	"github.com/lineagelab/idhist/pkg/store/mongostore"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the idhist HTTP API",
		Long: `Run the idhist HTTP API.

The server exposes trees, layouts, and rendered artifacts over REST. A
record store (configured under [store] in the config file) backs the tree
endpoints; without one, only file-free endpoints like /healthz respond.

The cache backend follows the [cache] config section: the file cache by
default, or redis for multi-instance deployments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = c.Config.Server.Addr
	}

	cacheBackend, err := c.serverCache(ctx)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	var recordStore store.Store
	if c.Config.Store.URI != "" {
		st, err := mongostore.New(ctx, mongostore.Config{
			URI:        c.Config.Store.URI,
			Database:   c.Config.Store.Database,
			Collection: c.Config.Store.Collection,
		})
		if err != nil {
			return fmt.Errorf("connect record store: %w", err)
		}
		defer func() { _ = st.Close(context.Background()) }()
		recordStore = st
		c.Logger.Info("connected record store", "database", c.Config.Store.Database)
	} else {
		c.Logger.Warn("no record store configured, tree endpoints disabled")
	}

	runner := pipeline.NewRunner(cacheBackend, nil, c.Logger)
	defer runner.Close()

	srv, err := server.New(server.Config{
		Runner: runner,
		Store:  recordStore,
		Logger: c.Logger,
	})
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	// ListenAndServe drains in-flight requests and returns nil when ctx is
	// cancelled, so Ctrl-C exits cleanly.
	return srv.ListenAndServe(ctx, addr)
}

// serverCache builds the cache backend selected in the config.
func (c *CLI) serverCache(ctx context.Context) (cache.Cache, error) {
	if c.Config.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.Redis.Addr,
			Password: c.Config.Cache.Redis.Password,
			DB:       c.Config.Cache.Redis.DB,
		})
	}
	return c.newCache(false)
}
