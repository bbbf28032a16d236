package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/molview/internal/server"
	"github.com/matzehuels/molview/pkg/observability"
)

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve stores uploaded molecules and renders them over HTTP.

The listen address, store and cache come from molview.toml or MOLVIEW_*
environment variables; --addr and --metrics override the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Server.Metrics = metrics
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			// Renders use the stored table so API edits take effect.
			if runner.Elements, err = st.Elements(ctx); err != nil {
				return err
			}

			var opts []server.Option
			if cfg.Server.Metrics {
				prom := observability.NewPrometheus("")
				prom.Install()
				defer observability.Reset()
				opts = append(opts, server.WithMetrics(prom))
			}

			c.Logger.Info("starting server",
				"addr", cfg.Server.Addr,
				"store", cfg.Store.Backend,
				"cache", cfg.Cache.Backend,
				"metrics", cfg.Server.Metrics)
			return server.New(st, runner, c.Logger, *cfg, opts...).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	return cmd
}
