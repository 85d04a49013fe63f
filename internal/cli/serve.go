package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rshade/dartfocus/internal/cache"
	"github.com/rshade/dartfocus/internal/server"
)

func newServeCmd(app *appState) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Serve the disclosure tool endpoints and cache admin surface over HTTP,\nwith Prometheus metrics on /metrics. Expired entries are swept in the\nbackground at cache.sweep_interval.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, engine, err := buildService(app)
			if err != nil {
				return err
			}
			if engine != nil {
				defer func() { _ = engine.Close() }()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if engine != nil && app.cfg.Cache.SweepInterval.Std() > 0 {
				sweeper := cache.NewSweeper(engine, app.cfg.Cache.SweepInterval.Std(), app.logger)
				sweeper.Start(ctx)
				defer sweeper.Stop()
			}

			if listen == "" {
				listen = app.cfg.Server.Listen
			}

			srv := server.New(svc, app.logger)
			return srv.ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8970)")
	return cmd
}
