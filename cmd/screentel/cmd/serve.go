package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/screentel/screentel/internal/history"
	"github.com/screentel/screentel/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis server",
	Long: `Start an HTTP server exposing the screenshot analysis pipeline.

The server provides the following endpoints:
  POST /api/analyze  - Analyze an uploaded screenshot
  GET  /api/operators - List the configured carrier names
  GET  /records      - List stored analysis results (when history is enabled)
  GET  /ws/analyze   - WebSocket analysis endpoint
  GET  /health       - Health check
  GET  /metrics      - Prometheus metrics

Examples:
  screentel serve
  screentel serve --port 8080
  screentel serve --host 0.0.0.0 --port 3000 --history`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", cfg.Server.Port)
		}

		srv, err := server.NewServer(server.Config{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			CORSOrigin:     cfg.Server.CORSOrigin,
			MaxUploadMB:    int64(cfg.Server.MaxUploadMB),
			TimeoutSec:     cfg.Server.TimeoutSec,
			UploadsDir:     cfg.Server.UploadsDir,
			SaveUploads:    cfg.Server.SaveUploads,
			HistoryLimit:   cfg.History.Limit,
			PipelineConfig: cfg.ToPipelineConfig(),
			Engine:         buildEngine(cfg),
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}
		defer func() { _ = srv.Close() }()

		if cfg.History.Enabled {
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			srv.WithHistory(store)
			slog.Info("analysis history enabled", "path", cfg.History.Path)
		}

		if enabled, _ := cmd.Flags().GetBool("rate-limit"); enabled {
			perMinute, _ := cmd.Flags().GetInt("requests-per-minute")
			perHour, _ := cmd.Flags().GetInt("requests-per-hour")
			uploadMBDay, _ := cmd.Flags().GetInt64("max-upload-mb-per-day")
			srv.WithRateLimiter(server.NewRateLimiter(perMinute, perHour, uploadMBDay*1024*1024))
			slog.Info("rate limiting enabled",
				"requests_per_minute", perMinute,
				"requests_per_hour", perHour,
				"max_upload_mb_per_day", uploadMBDay)
		}

		mux := http.NewServeMux()
		srv.SetupRoutes(mux)

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Duration(cfg.Server.TimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.Server.TimeoutSec) * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("starting HTTP server", "addr", addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-sigCh:
			slog.Info("shutting down", "signal", sig.String())
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "host address to bind to")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origin")
	serveCmd.Flags().Int("max-upload-size", 16, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 60, "request processing timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "graceful shutdown timeout in seconds")
	serveCmd.Flags().Bool("history", false, "store analysis results in the history database")
	serveCmd.Flags().Bool("rate-limit", false, "enable per-client rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 60, "allowed requests per client per minute")
	serveCmd.Flags().Int("requests-per-hour", 600, "allowed requests per client per hour")
	serveCmd.Flags().Int64("max-upload-mb-per-day", 512, "allowed upload volume per client per day in MB")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.cors_origin", serveCmd.Flags().Lookup("cors-origin"))
	_ = viper.BindPFlag("server.max_upload_mb", serveCmd.Flags().Lookup("max-upload-size"))
	_ = viper.BindPFlag("server.timeout_sec", serveCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("server.shutdown_timeout", serveCmd.Flags().Lookup("shutdown-timeout"))
	_ = viper.BindPFlag("history.enabled", serveCmd.Flags().Lookup("history"))
}
