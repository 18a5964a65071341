package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lzmap/lzmap/internal/httpapi"
	"github.com/lzmap/lzmap/pkg/cache"
	"github.com/lzmap/lzmap/pkg/pipeline"
)

// serveCommand creates the serve command, which exposes the pipeline over
// HTTP for assessment portals.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diagram HTTP API",
		Long: `Serve exposes the pipeline as a stateless HTTP API:

  POST /v1/diagram   records + preset in, draw.io XML out
  POST /v1/graph     records + preset in, flat node/edge JSON out
  GET  /healthz      liveness

With --redis, rendered artifacts are cached in Redis so replicas share one
cache; otherwise the file cache is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cch, err := serveCache(cmd.Context(), noCache, redisURL)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(cch, nil, c.Logger)
			defer runner.Close()

			srv := httpapi.New(addr, runner, c.Logger)
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis address for a shared artifact cache (e.g. localhost:6379)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// serveCache picks the cache backend for serve mode.
func serveCache(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, redisAddr)
	}
	return newCache(false)
}
