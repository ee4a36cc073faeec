package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webinsights/webinsights/internal/ailink"
	"github.com/webinsights/webinsights/internal/config"
	"github.com/webinsights/webinsights/internal/core/engine"
	"github.com/webinsights/webinsights/internal/core/store"
	errwrap "github.com/webinsights/webinsights/internal/errors"
	"github.com/webinsights/webinsights/internal/extract"
	"github.com/webinsights/webinsights/internal/metrics"
	"github.com/webinsights/webinsights/internal/observability"
	"github.com/webinsights/webinsights/internal/server"
	"github.com/webinsights/webinsights/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start the HTTP gateway with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (restart recommended for most changes)

The server will cleanly shut down the HTTP server, close the store
connection, and flush logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration load failed")
		}

		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		observability.InitServerLogger("webinsights", cfg.Logging.Level)

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics("webinsights", cfg.Metrics.Port); err != nil {
				observability.ServerLogger.Error("Failed to initialize metrics",
					zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}

		observability.ServerLogger.Info("Initializing gateway",
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.String("store_addr", cfg.Store.Addr),
			zap.Int("rate_limit", cfg.RateLimit.Limit),
			zap.Duration("rate_window", cfg.RateLimit.Window),
			zap.Duration("session_ttl", cfg.Session.TTL))

		// Shared store: rate counters and sessions
		st := store.New(store.Options{
			Addr:        cfg.Store.Addr,
			Password:    cfg.Store.Password,
			DB:          cfg.Store.DB,
			DialTimeout: cfg.Store.DialTimeout,
		})

		extractor := extract.NewClient()
		extractor.Timeout = cfg.Extract.Timeout
		extractor.UserAgent = cfg.Extract.UserAgent

		orchestrator := &engine.Orchestrator{
			Extractor: extractor,
			Analyzer:  ailink.NewService(cfg.AILink),
			Sessions:  store.NewSessions(st, cfg.Session.TTL),
		}

		limiter := &engine.RateLimiter{
			Store:  st,
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		}

		health := handlers.NewHealthManager(versionInfo.Version)
		health.RegisterChecker("store", st)
		if cfg.Metrics.Enabled {
			health.RegisterChecker("telemetry", telemetryHealthChecker{})
		}

		srv := server.New(server.Options{
			Host:       cfg.Server.Host,
			Port:       cfg.Server.Port,
			AuthSecret: cfg.Auth.Token,
			Limiter:    limiter,
			API:        handlers.NewAPI(orchestrator),
			Health:     health,
		})

		metrics.SetServerStartTime(time.Now().Unix())

		shutdownTimeout := cfg.Server.ShutdownTimeout

		// Graceful shutdown handlers run LIFO: HTTP server first, then the
		// store, then the final log flush.
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing logger...")
			if err := observability.ServerLogger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Closing store connection...")
			if err := st.Close(); err != nil {
				observability.ServerLogger.Warn("Store close returned error",
					zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		// Config reload (SIGHUP). Wired collaborators keep their settings;
		// the handler only re-validates so operators see bad edits early.
		signals.OnReload(func(ctx context.Context) error {
			observability.ServerLogger.Info("Received SIGHUP: validating configuration")

			if _, err := config.Load(cfgFile); err != nil {
				observability.ServerLogger.Error("Config validation failed",
					zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			observability.ServerLogger.Info("Configuration valid; restart to apply changes")
			return nil
		})

		// Double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			observability.ServerLogger.Info("Starting HTTP server...",
				zap.String("host", cfg.Server.Host),
				zap.Int("port", cfg.Server.Port))
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8000, "server port")
}
