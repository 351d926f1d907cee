package composition

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/maauso/audio-to-video-api/internal/media"
	"github.com/maauso/audio-to-video-api/internal/requestid"
	"github.com/maauso/audio-to-video-api/internal/storage"
)

// Result is the outcome of a successful composition.
type Result struct {
	// ID identifies the composition and names the output file.
	ID string
	// FilePath is the absolute path of the produced MP4.
	FilePath string
	// VideoURL is set when the video was also published to S3.
	VideoURL string
	// Duration is the probed video duration in seconds, zero when not probed.
	Duration float64
}

// Service runs the validate, stage, compose, cleanup pipeline.
type Service struct {
	repo       Repository
	store      storage.Storage
	compositor media.Compositor
	prober     media.Prober
	logger     *slog.Logger

	outputDir      string
	fps            int
	videoCodec     string
	audioCodec     string
	composeTimeout time.Duration
	publish        bool
}

// Option is a function that configures a Service.
type Option func(*Service)

// WithProber enables probing the produced video so its duration and frame
// rate are recorded on the composition.
func WithProber(p media.Prober) Option {
	return func(s *Service) {
		s.prober = p
	}
}

// WithEncoding overrides frame rate and codecs. Zero values keep the defaults.
func WithEncoding(fps int, videoCodec, audioCodec string) Option {
	return func(s *Service) {
		if fps > 0 {
			s.fps = fps
		}
		if videoCodec != "" {
			s.videoCodec = videoCodec
		}
		if audioCodec != "" {
			s.audioCodec = audioCodec
		}
	}
}

// WithComposeTimeout bounds each compositor call. Zero means no timeout.
func WithComposeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.composeTimeout = d
		}
	}
}

// WithPublish uploads every produced video through storage.UploadToS3.
func WithPublish(enabled bool) Option {
	return func(s *Service) {
		s.publish = enabled
	}
}

// NewService creates a new Service writing videos under outputDir.
// The output directory is created if it does not exist.
func NewService(
	repo Repository,
	store storage.Storage,
	compositor media.Compositor,
	outputDir string,
	logger *slog.Logger,
	opts ...Option,
) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	s := &Service{
		repo:       repo,
		store:      store,
		compositor: compositor,
		logger:     logger,
		outputDir:  absDir,
		fps:        media.DefaultFPS,
		videoCodec: media.DefaultVideoCodec,
		audioCodec: media.DefaultAudioCodec,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OutputDir returns the absolute directory videos are written to.
func (s *Service) OutputDir() string {
	return s.outputDir
}

// Create validates both uploads, stages them, composes the video and
// removes the staged files whatever the outcome.
//
// Returned errors are *ValidationError, *CompositionError or
// *InfrastructureError.
func (s *Service) Create(ctx context.Context, audio, image Asset) (*Result, error) {
	if err := ValidateAudio(audio.ContentType); err != nil {
		return nil, err
	}
	if err := ValidateImage(image.ContentType); err != nil {
		return nil, err
	}

	c := New()
	c.AudioFilename = audio.Filename
	c.ImageFilename = image.Filename
	c.ImageContentType = image.ContentType
	s.record(ctx, c)

	logger := s.logger.With(slog.String("composition_id", c.ID))
	if rid := requestid.FromContext(ctx); rid != "" {
		logger = logger.With(slog.String("request_id", rid))
	}
	logger.Info("composition accepted",
		slog.String("audio_filename", audio.Filename),
		slog.Int64("audio_size", audio.Size),
		slog.String("image_filename", image.Filename),
		slog.String("image_content_type", image.ContentType),
		slog.Int64("image_size", image.Size),
	)

	var staged []string
	defer func() {
		// Cleanup must outlive a cancelled request
		if err := s.store.CleanupTemp(context.WithoutCancel(ctx), staged); err != nil {
			logger.Warn("failed to clean up staged files",
				slog.String("error", err.Error()),
			)
		}
	}()

	_ = c.TransitionTo(StatusStaging)
	s.record(ctx, c)

	audioPath, err := s.store.SaveTemp(ctx, string(AssetAudio), audioSuffix, audio.Data)
	if err != nil {
		return nil, s.fail(ctx, logger, c, &InfrastructureError{ID: c.ID, Op: "stage audio", Err: err})
	}
	staged = append(staged, audioPath)

	imagePath, err := s.store.SaveTemp(ctx, string(AssetImage), imageSuffix, image.Data)
	if err != nil {
		return nil, s.fail(ctx, logger, c, &InfrastructureError{ID: c.ID, Op: "stage image", Err: err})
	}
	staged = append(staged, imagePath)

	logger.Debug("uploads staged",
		slog.String("audio_path", audioPath),
		slog.String("image_path", imagePath),
	)

	outputPath := filepath.Join(s.outputDir, c.ID+".mp4")

	_ = c.TransitionTo(StatusComposing)
	s.record(ctx, c)

	composeCtx := ctx
	if s.composeTimeout > 0 {
		var cancel context.CancelFunc
		composeCtx, cancel = context.WithTimeout(ctx, s.composeTimeout)
		defer cancel()
	}

	start := time.Now()
	err = s.compositor.ComposeStill(composeCtx, media.ComposeRequest{
		AudioPath:  audioPath,
		ImagePath:  imagePath,
		OutputPath: outputPath,
		FPS:        s.fps,
		VideoCodec: s.videoCodec,
		AudioCodec: s.audioCodec,
	})
	if err != nil {
		return nil, s.fail(ctx, logger, c, &CompositionError{ID: c.ID, Err: err})
	}

	logger.Info("video composed",
		slog.String("output_path", outputPath),
		slog.Duration("elapsed", time.Since(start)),
	)

	var duration float64
	if s.prober != nil {
		info, err := s.prober.ProbeVideo(ctx, outputPath)
		if err != nil {
			logger.Warn("failed to probe output video",
				slog.String("error", err.Error()),
			)
		} else {
			c.SetMediaInfo(info.Duration, info.FPS)
			duration = info.Duration
		}
	}

	var videoURL string
	if s.publish {
		videoURL, err = s.upload(ctx, c.ID, outputPath)
		if err != nil {
			return nil, s.fail(ctx, logger, c, &InfrastructureError{ID: c.ID, Op: "publish video", Err: err})
		}
		logger.Info("video published", slog.String("video_url", videoURL))
	}

	_ = c.Complete(outputPath, videoURL)
	s.record(ctx, c)

	return &Result{
		ID:       c.ID,
		FilePath: outputPath,
		VideoURL: videoURL,
		Duration: duration,
	}, nil
}

// Get retrieves a composition record by ID.
func (s *Service) Get(ctx context.Context, compositionID string) (*Composition, error) {
	return s.repo.FindByID(ctx, compositionID)
}

// List returns all known composition records, newest first.
func (s *Service) List(ctx context.Context) ([]*Composition, error) {
	return s.repo.List(ctx)
}

// upload publishes the output file under videos/<id>.mp4.
func (s *Service) upload(ctx context.Context, compositionID, outputPath string) (string, error) {
	f, err := os.Open(outputPath) // #nosec G304 - path is built from the generated ID
	if err != nil {
		return "", fmt.Errorf("open output: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.store.UploadToS3(ctx, "videos/"+compositionID+".mp4", "video/mp4", f)
}

// fail marks the composition as failed, logs the cause and returns err.
func (s *Service) fail(ctx context.Context, logger *slog.Logger, c *Composition, err error) error {
	_ = c.Fail(err.Error())
	s.record(ctx, c)
	logger.Error("composition failed",
		slog.String("status", string(StatusFailed)),
		slog.String("error", err.Error()),
	)
	return err
}

// record saves the composition; failures are logged and never abort the pipeline.
func (s *Service) record(ctx context.Context, c *Composition) {
	if err := s.repo.Save(context.WithoutCancel(ctx), c); err != nil {
		s.logger.Warn("failed to save composition record",
			slog.String("composition_id", c.ID),
			slog.String("error", err.Error()),
		)
	}
}
