package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/threadlens/threadlens"
	"github.com/threadlens/threadlens/infrastructure/api"
	"github.com/threadlens/threadlens/internal/config"
	"github.com/threadlens/threadlens/internal/log"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  OPENAI_API_KEY               Shared LLM credential; without it the server
                               runs in passthrough mode and returns prompts
  ALLOWED_ORIGINS              Comma-separated CORS origins (default: *)
  PROMPT_TEMPLATE              Path to a custom prompt template YAML file

  LLM_*                        LLM endpoint configuration
    BASE_URL                   Base URL (e.g., https://api.openai.com/v1)
    MODEL                      Chat model (default: gpt-4o)
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 1)
    TEMPERATURE                Sampling temperature (default: 0.3)

  REDDIT_*                     Reddit fetch configuration
    FETCH_TIMEOUT              Timeout in seconds (default: 15)
    USER_AGENT                 Override the outgoing User-Agent header

  RATE_LIMIT_*                 Per-client quotas
    WINDOW_SECONDS             Sliding window length (default: 60)
    MAX                        Analysis and share requests per window (default: 10)
    SCAN_MAX                   Subreddit scans per window (default: 5)

  CACHE_*                      Result and share retention
    TTL_SECONDS                Analysis cache TTL (default: 3600)
    MAX_ENTRIES                Analysis cache capacity (default: 100)
    SHARE_TTL_SECONDS          Share link TTL (default: 86400)
    SHARE_MAX_ENTRIES          Share store capacity (default: 500)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Apply command line overrides (flags take precedence over env vars)
	cfg = applyServeOverrides(cfg, host, port)

	logger := log.Configure(cfg)
	slogger := logger.Slog()

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting threadlens", attrs...)

	client, err := threadlens.New(
		threadlens.WithAppConfig(cfg),
		threadlens.WithLogger(slogger),
	)
	if err != nil {
		return fmt.Errorf("create threadlens client: %w", err)
	}

	apiServer := api.NewAPIServer(client, cfg.AllowedOrigins())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slogger.Info("starting server", slog.String("addr", cfg.Addr()))
		if err := apiServer.ListenAndServe(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return client.RunSweeper(gctx, cfg.SweepInterval())
	})

	group.Go(func() error {
		<-gctx.Done()
		slogger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), api.ShutdownTimeout)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
