package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Static errors for media operations.
var (
	// ErrMissingPath is returned when a required input or output path is empty.
	ErrMissingPath = errors.New("media: audio, image and output paths are required")
	// ErrInvalidFPS is returned when the requested frame rate is negative.
	ErrInvalidFPS = errors.New("media: invalid frame rate: must be positive")
	// ErrInvalidDuration is returned when the audio has no playable duration.
	ErrInvalidDuration = errors.New("media: invalid duration: must be positive")
	// ErrFFprobeExecution is returned when ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
	// ErrNoVideoStream is returned when a probed file has no video stream.
	ErrNoVideoStream = errors.New("media: no video stream found")
)

// Compile-time checks that FFmpegCompositor implements the media ports.
var (
	_ Compositor = (*FFmpegCompositor)(nil)
	_ Prober     = (*FFmpegCompositor)(nil)
)

// FFmpegCompositor implements Compositor and Prober using the ffmpeg and ffprobe CLIs.
type FFmpegCompositor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegCompositor creates a new FFmpegCompositor.
// Empty paths default to "ffmpeg" and "ffprobe" (found via PATH).
func NewFFmpegCompositor(ffmpegPath, ffprobePath string) *FFmpegCompositor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegCompositor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// ComposeStill probes the audio duration and encodes a looped still image
// at a fixed frame rate for exactly that long, muxed with the audio track.
func (c *FFmpegCompositor) ComposeStill(ctx context.Context, req ComposeRequest) error {
	if req.AudioPath == "" || req.ImagePath == "" || req.OutputPath == "" {
		return ErrMissingPath
	}
	if req.FPS < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFPS, req.FPS)
	}
	fps := req.FPS
	if fps == 0 {
		fps = DefaultFPS
	}
	videoCodec := req.VideoCodec
	if videoCodec == "" {
		videoCodec = DefaultVideoCodec
	}
	audioCodec := req.AudioCodec
	if audioCodec == "" {
		audioCodec = DefaultAudioCodec
	}

	duration, err := c.MediaDuration(ctx, req.AudioPath)
	if err != nil {
		return fmt.Errorf("probe audio: %w", err)
	}
	if duration <= 0 {
		return fmt.Errorf("%w: got %.3f", ErrInvalidDuration, duration)
	}

	rate := strconv.Itoa(fps)
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",           // Overwrite output file
		"-f", "image2", // Single still file, not a sequence pattern
		"-loop", "1",   // Repeat the still image
		"-framerate", rate,
	}
	if decoder := imageDecoder(req.ImagePath); decoder != "" {
		args = append(args, "-c:v", decoder)
	}
	args = append(args,
		"-i", req.ImagePath,
		"-i", req.AudioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		// libx264 with yuv420p needs even dimensions
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2,format=yuv420p",
		"-c:v", videoCodec,
	)
	if videoCodec == "libx264" {
		args = append(args, "-tune", "stillimage")
	}
	args = append(args,
		"-r", rate,
		"-c:a", audioCodec,
		"-b:a", "192k",
		"-t", strconv.FormatFloat(duration, 'f', 3, 64),
		"-movflags", "+faststart",
		req.OutputPath,
	)

	if err := c.runFFmpeg(ctx, args); err != nil {
		_ = os.Remove(req.OutputPath)
		return err
	}
	return nil
}

// imageDecoders maps sniffed image types to ffmpeg decoder names.
var imageDecoders = []struct {
	mime    string
	decoder string
}{
	{"image/jpeg", "mjpeg"},
	{"image/png", "png"},
	{"image/gif", "gif"},
	{"image/webp", "webp"},
}

// imageDecoder picks the decoder from the file content, since the image2
// demuxer otherwise trusts the extension. Returns "" when unknown.
func imageDecoder(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	for _, d := range imageDecoders {
		if mtype.Is(d.mime) {
			return d.decoder
		}
	}
	return ""
}

// MediaDuration returns the duration in seconds of a media file.
// It uses ffprobe to extract the container duration metadata.
func (c *FFmpegCompositor) MediaDuration(ctx context.Context, path string) (float64, error) {
	out, err := c.runFFprobe(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%f", &duration); err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	return duration, nil
}

// probeOutput is the subset of `ffprobe -of json` output we read.
type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		RFrameRate string `json:"r_frame_rate"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeVideo returns duration, frame rate, dimensions and codecs of a video file.
func (c *FFmpegCompositor) ProbeVideo(ctx context.Context, path string) (VideoInfo, error) {
	out, err := c.runFFprobe(ctx,
		"-v", "error",
		"-show_entries", "format=duration:stream=codec_type,codec_name,r_frame_rate,width,height",
		"-of", "json",
		path,
	)
	if err != nil {
		return VideoInfo{}, err
	}

	var probe probeOutput
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return VideoInfo{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	var info VideoInfo
	if probe.Format.Duration != "" {
		info.Duration, err = strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return VideoInfo{}, fmt.Errorf("parse duration: %w", err)
		}
	}

	foundVideo := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.VideoCodec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FPS = parseFrameRate(s.RFrameRate)
		case "audio":
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		}
	}
	if !foundVideo {
		return VideoInfo{}, ErrNoVideoStream
	}

	return info, nil
}

// parseFrameRate converts an ffprobe rational such as "24/1" to a float.
func parseFrameRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (c *FFmpegCompositor) runFFmpeg(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// runFFprobe executes ffprobe and returns its stdout.
func (c *FFmpegCompositor) runFFprobe(ctx context.Context, args ...string) (string, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, c.ffprobePath, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, strings.TrimSpace(e.Stderr))
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
