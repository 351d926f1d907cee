// Package bootstrap provides dependency initialization for the audio-to-video API.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/audio-to-video-api/internal/composition"
	"github.com/maauso/audio-to-video-api/internal/config"
	"github.com/maauso/audio-to-video-api/internal/media"
	"github.com/maauso/audio-to-video-api/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	VideoService *composition.Service
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	compositor := media.NewFFmpegCompositor(cfg.FFmpegPath, cfg.FFprobePath)
	repo := composition.NewMemoryRepository(composition.DefaultHistoryLimit)

	svc, err := composition.NewService(
		repo,
		store,
		compositor,
		cfg.OutputDir,
		logger,
		composition.WithProber(compositor),
		composition.WithEncoding(cfg.VideoFPS, cfg.VideoCodec, cfg.AudioCodec),
		composition.WithComposeTimeout(cfg.ComposeTimeout),
		composition.WithPublish(cfg.S3Enabled()),
	)
	if err != nil {
		return nil, fmt.Errorf("create composition service: %w", err)
	}
	logger.Info("output directory ready",
		slog.String("output_dir", svc.OutputDir()),
	)

	return &Dependencies{
		VideoService: svc,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(ctx, cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
			slog.String("temp_dir", s3Store.TempDir()),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", localStore.TempDir()),
	)
	return localStore, nil
}
