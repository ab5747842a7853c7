package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/orbit/internal/config"
	"github.com/UnknownOlympus/orbit/internal/flyover"
	"github.com/UnknownOlympus/orbit/internal/geolocation"
	"github.com/UnknownOlympus/orbit/internal/ipecho"
	"github.com/UnknownOlympus/orbit/internal/metrics"
	"github.com/UnknownOlympus/orbit/internal/models"
	"github.com/UnknownOlympus/orbit/internal/report"
	"github.com/UnknownOlympus/orbit/internal/server"
	"github.com/UnknownOlympus/orbit/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// app holds everything a command needs to run lookups.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	loc     *time.Location
	tracker *tracker.Tracker
	close   func()
}

func newApp(cfg *config.Config, reg prometheus.Registerer) (*app, error) {
	logger := setupLogger(cfg.Env)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	provider, err := geolocation.NewProvider(geolocation.ProviderConfig{
		Type:    geolocation.ProviderType(cfg.Geolocation.Provider),
		BaseURL: cfg.Geolocation.URL,
		APIKey:  cfg.Geolocation.APIKey,
		DBPath:  cfg.Geolocation.DBPath,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create geolocation provider: %w", err)
	}

	logger.Debug("Geolocation provider initialized", "type", cfg.Geolocation.Provider)

	trk := tracker.NewTracker(
		logger,
		ipecho.NewResolver(cfg.IPEcho.URL, cfg.Timeout, logger),
		provider,
		flyover.NewPredictor(cfg.FlyOver.URL, cfg.Timeout, logger),
		metrics.NewMetrics(reg),
		tracker.RetryConfig{
			Attempts: cfg.Retry.Attempts,
			MinDelay: cfg.Retry.MinDelay,
			MaxDelay: cfg.Retry.MaxDelay,
		},
	)

	closeFn := func() {}
	if closer, ok := provider.(io.Closer); ok {
		closeFn = func() {
			if err := closer.Close(); err != nil {
				logger.Error("failed to close geolocation provider", "error", err)
			}
		}
	}

	return &app{cfg: cfg, log: logger, loc: loc, tracker: trk, close: closeFn}, nil
}

func loadApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	return newApp(cfg, prometheus.NewRegistry())
}

func printPasses(out io.Writer, passes []models.Pass, loc *time.Location) error {
	if len(passes) == 0 {
		return nil
	}

	_, err := fmt.Fprintln(out, report.Render(passes, loc))
	return err
}

func newNextCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next ISS passes, awaiting the lookup result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer application.close()

			ctx := cmd.Context()
			passes, err := application.tracker.NextPassesAsync(ctx).Await(ctx)
			if err != nil {
				return err
			}

			return printPasses(cmd.OutOrStdout(), passes, application.loc)
		},
	}
}

func newNextCallbackCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "next-callback",
		Short: "Print the next ISS passes, receiving the lookup result through a callback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer application.close()

			var (
				result []models.Pass
				resErr error
			)
			done := make(chan struct{})
			application.tracker.NextPassesCallback(cmd.Context(), func(passes []models.Pass, err error) {
				result, resErr = passes, err
				close(done)
			})
			<-done

			if resErr != nil {
				return resErr
			}

			return printPasses(cmd.OutOrStdout(), result, application.loc)
		},
	}
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve next-pass lookups, health checks and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustLoad(*configPath)

			// Create a separate registry for metrics.
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			application, err := newApp(cfg, reg)
			if err != nil {
				return err
			}
			defer application.close()

			return runServer(cmd.Context(), application, reg)
		},
	}
}

func runServer(ctx context.Context, application *app, reg *prometheus.Registry) error {
	application.log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	srv := server.New(application.log, application.tracker, reg, application.loc, application.cfg.Port)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	application.log.InfoContext(ctx, "Application stopped gracefully.")
	return nil
}
