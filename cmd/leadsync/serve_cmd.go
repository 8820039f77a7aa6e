package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadsync/internal/core"
	"github.com/JonMunkholm/leadsync/internal/history"
	"github.com/JonMunkholm/leadsync/internal/logging"
	"github.com/JonMunkholm/leadsync/internal/tracker"
	"github.com/JonMunkholm/leadsync/internal/web"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			slog.Info("configuration loaded",
				"addr", cfg.Server.Addr(),
				"hierarchy", cfg.Sync.Hierarchy,
				"max_concurrent_runs", cfg.Sync.MaxConcurrentRuns,
				"require_api_key", cfg.Security.RequireAPIKey,
				"history", cfg.Database.Enabled(),
			)

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			trackerMetrics := tracker.NewMetrics(reg)

			deps := web.Deps{
				Trackers: func(apiKey string) core.Tracker {
					return tracker.NewClient(tracker.Config{
						Endpoint: cfg.Tracker.Endpoint,
						APIKey:   apiKey,
						Timeout:  cfg.Tracker.Timeout,
					}, tracker.WithMetrics(trackerMetrics))
				},
				RunMetrics: core.NewRunMetrics(reg),
				Gatherer:   reg,
			}

			if cfg.Database.Enabled() {
				pool, err := history.Connect(cmd.Context(), cfg.Database)
				if err != nil {
					return err
				}
				defer pool.Close()

				store := history.New(pool)
				if err := store.EnsureSchema(cmd.Context()); err != nil {
					return err
				}
				deps.History = store
			}

			server := web.NewServer(cfg, deps)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
	return cmd
}
