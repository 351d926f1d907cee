// Package media provides still-image video composition backed by ffmpeg.
package media

import "context"

// Encoding defaults used when a ComposeRequest leaves a field empty.
const (
	DefaultFPS        = 24
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
)

// ComposeRequest describes a single still-image composition.
type ComposeRequest struct {
	// AudioPath is the soundtrack; its duration sets the video duration.
	AudioPath string
	// ImagePath is the still frame. Its format is detected from content,
	// so the file extension does not need to match.
	ImagePath string
	// OutputPath is where the MP4 is written. An existing file is overwritten.
	OutputPath string
	// FPS is the output frame rate. Zero means DefaultFPS.
	FPS int
	// VideoCodec is the ffmpeg video encoder name. Empty means DefaultVideoCodec.
	VideoCodec string
	// AudioCodec is the ffmpeg audio encoder name. Empty means DefaultAudioCodec.
	AudioCodec string
}

// VideoInfo holds the probed properties of an encoded video.
type VideoInfo struct {
	Duration   float64
	FPS        float64
	Width      int
	Height     int
	VideoCodec string
	AudioCodec string
}

// Compositor merges a still image and an audio track into a video file.
type Compositor interface {
	// ComposeStill renders req.ImagePath as every frame of a video whose
	// duration equals the duration of req.AudioPath, muxed with that audio.
	ComposeStill(ctx context.Context, req ComposeRequest) error
}

// Prober reads media metadata.
type Prober interface {
	// MediaDuration returns the duration in seconds of a media file.
	MediaDuration(ctx context.Context, path string) (float64, error)

	// ProbeVideo returns the stream properties of a video file.
	ProbeVideo(ctx context.Context, path string) (VideoInfo, error)
}
