// Package main provides the entry point for the audio-to-video API server.
package main

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

	"github.com/maauso/audio-to-video-api/internal/bootstrap"
	"github.com/maauso/audio-to-video-api/internal/config"
	"github.com/maauso/audio-to-video-api/internal/server"
)

// shutdownGrace is how long in-flight encodes get to finish on SIGTERM.
const shutdownGrace = 2 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting audio-to-video API",
		slog.Int("port", cfg.Port),
		slog.String("output_dir", cfg.OutputDir),
		slog.Int("video_fps", cfg.VideoFPS),
		slog.String("video_codec", cfg.VideoCodec),
		slog.String("audio_codec", cfg.AudioCodec),
		slog.Int64("max_upload_bytes", cfg.MaxUploadBytes),
		slog.Duration("compose_timeout", cfg.ComposeTimeout),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
	)
	logger.Debug("configuration", slog.String("config", cfg.String()))

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	handlers := server.NewHandlers(deps.VideoService, logger,
		server.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.NewRouter(handlers, logger, server.DefaultConfig()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,  // Large multipart uploads
		WriteTimeout:      30 * time.Minute, // Encoding runs inside the request
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	logger.Info("shutting down server", slog.Duration("grace", shutdownGrace))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
