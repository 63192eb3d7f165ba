package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkoenig/boxtree/internal/api"
)

// defaultAddr is the default listen address for the HTTP API.
const defaultAddr = "127.0.0.1:8080"

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		cacheURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

The serve command exposes the layout pipeline over HTTP:

  POST /api/v1/layout   compute box geometry for inline nodes
  POST /api/v1/render   run the full pipeline and return artifacts
  GET  /api/v1/meta     list supported engines and formats
  GET  /healthz         liveness check

The server shares the local result cache with the CLI commands; pass
--cache-url (or set cache_url in the config file) to use a shared Redis
or MongoDB cache instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == defaultAddr && c.Config.Addr != "" {
				addr = c.Config.Addr
			}
			if cacheURL != "" {
				c.Config.CacheURL = cacheURL
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			server := api.NewServer(runner, c.Logger, addr)
			return server.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&cacheURL, "cache-url", "", "shared cache backend (redis:// or mongodb://), default local file cache")

	return cmd
}
