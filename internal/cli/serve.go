package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellplace/internal/server"
	"github.com/matzehuels/cellplace/pkg/observability"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxBody int64
		ef      engineFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the placement API over HTTP",
		Long: `Serve the placement API over HTTP.

  POST /v1/place             netlist text in, layout JSON out
  GET  /v1/runs              recent runs
  GET  /v1/runs/{id}         one run
  GET  /v1/runs/{id}/render  stored layout as svg, png, dot, json or txt
  GET  /healthz              liveness

The cache and run store come from the config file, so several servers can
share a Redis cache and a MongoDB run history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ef.apply(cmd.Flags(), &cfg.Engine)
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			logger := loggerFromContext(ctx)
			observability.SetHTTPHooks(observability.NewLogHooks(logger))

			srv := server.New(runner, logger, server.Options{
				Engine:       cfg.Engine.Options(),
				Timeout:      cfg.Engine.Timeout.Duration,
				MaxBodyBytes: maxBody,
			})
			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(cfg.Server.Addr)))
			printDetail("cache: %s · store: %s", cfg.Cache.Backend, cfg.Store.Backend)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "largest accepted netlist in bytes")
	ef.register(cmd.Flags())

	return cmd
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
