package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/app"
	"github.com/zkaiera/last30days-skill/internal/config"
	"github.com/zkaiera/last30days-skill/internal/metrics"
	chiTransport "github.com/zkaiera/last30days-skill/internal/transport/chi"
	"github.com/zkaiera/last30days-skill/internal/version"
)

func newServeCmd(debug *bool) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve research over HTTP",
		Long: `Start the HTTP API:
  POST /v1/research   run one research pass and return the report as JSON
  GET  /health        provider and cache health
  GET  /metrics       Prometheus metrics

Configuration is read from config/<ENV>.yaml (ENV defaults to local).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), port, *debug)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Override http.port from the config")

	return cmd
}

func runServe(ctx context.Context, port int, debug bool) error {
	env := config.GetEnv()
	cfg, err := config.LoadOrEnv(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port > 0 {
		cfg.HTTP.Port = port
	}

	logger, err := newCLILogger(env, cfg, debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting last30days API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	metrics.RegisterHTTPMetrics()

	a, err := app.New(ctx, cfg, logger, app.Options{ProbeBird: true})
	if err != nil {
		return err
	}
	defer a.Close()

	server := chiTransport.NewServer(a.Runner, a.Health, logger)
	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
