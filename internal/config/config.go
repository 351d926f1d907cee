// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidConfig is returned when a loaded value is out of range.
	ErrInvalidConfig = errors.New("config: invalid value")
	// ErrS3Incomplete is returned when only one of S3_BUCKET and S3_REGION is set.
	ErrS3Incomplete = errors.New("config: S3_BUCKET and S3_REGION must be set together")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port           int   `env:"PORT, default=8000" json:"port" validate:"min=1,max=65535"`
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES, default=209715200" json:"max_upload_bytes" validate:"min=1"`

	// Storage settings
	OutputDir string `env:"OUTPUT_DIR, default=videos" json:"output_dir" validate:"required"`
	TempDir   string `env:"TEMP_DIR" json:"temp_dir"` // Empty means OS temp dir

	// Encoding settings
	FFmpegPath     string        `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	FFprobePath    string        `env:"FFPROBE_PATH, default=ffprobe" json:"ffprobe_path"`
	VideoFPS       int           `env:"VIDEO_FPS, default=24" json:"video_fps" validate:"min=1,max=120"`
	VideoCodec     string        `env:"VIDEO_CODEC, default=libx264" json:"video_codec" validate:"required"`
	AudioCodec     string        `env:"AUDIO_CODEC, default=aac" json:"audio_codec" validate:"required"`
	ComposeTimeout time.Duration `env:"COMPOSE_TIMEOUT, default=0s" json:"compose_timeout"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"` // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates the result.
func Load() (*Config, error) {
	return load(context.Background(), envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q rule", ErrInvalidConfig, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.ComposeTimeout < 0 {
		return fmt.Errorf("%w: COMPOSE_TIMEOUT must not be negative", ErrInvalidConfig)
	}
	if (c.S3Bucket == "") != (c.S3Region == "") {
		return ErrS3Incomplete
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, OutputDir: %s, TempDir: %s, VideoFPS: %d, VideoCodec: %s, AudioCodec: %s, MaxUploadBytes: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.OutputDir,
		c.TempDir,
		c.VideoFPS,
		c.VideoCodec,
		c.AudioCodec,
		c.MaxUploadBytes,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
