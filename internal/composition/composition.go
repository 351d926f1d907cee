// Package composition implements the audio-plus-still-image video pipeline:
// validate the uploads, stage them to temporary files, hand them to a media
// compositor, clean up, and report the produced file.
//
// Each run is tracked as a Composition record whose status follows
//
//	PENDING -> STAGING -> COMPOSING -> COMPLETED
//
// with FAILED reachable from every non-terminal state.
package composition

import (
	"errors"
	"sync"
	"time"

	"github.com/maauso/audio-to-video-api/internal/composition/id"
)

// Status represents the current state of a Composition.
type Status string

const (
	// StatusPending indicates the uploads passed validation and nothing is on disk yet.
	StatusPending Status = "PENDING"
	// StatusStaging indicates the uploads are being written to temporary files.
	StatusStaging Status = "STAGING"
	// StatusComposing indicates the compositor is encoding the video.
	StatusComposing Status = "COMPOSING"
	// StatusCompleted indicates the video was written successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates staging, composing or publishing failed.
	StatusFailed Status = "FAILED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusStaging, StatusFailed},
	StatusStaging:   {StatusComposing, StatusFailed},
	StatusComposing: {StatusCompleted, StatusFailed},
	StatusCompleted: {},
	StatusFailed:    {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Composition records one run of the pipeline.
type Composition struct {
	mu sync.RWMutex

	// ID is the unique identifier; it also names the output file.
	ID string
	// Status is the current pipeline state.
	Status Status
	// AudioFilename is the client-supplied name of the audio upload.
	AudioFilename string
	// ImageFilename is the client-supplied name of the image upload.
	ImageFilename string
	// ImageContentType is the declared type of the image upload.
	ImageContentType string
	// OutputPath is the absolute path of the produced video.
	OutputPath string
	// VideoURL is the published URL when S3 publishing is enabled.
	VideoURL string
	// Duration is the probed video duration in seconds, if known.
	Duration float64
	// FPS is the probed video frame rate, if known.
	FPS float64
	// Error contains the failure description if the run failed.
	Error string
	// CreatedAt is when the record was created.
	CreatedAt time.Time
	// UpdatedAt is when the record was last updated.
	UpdatedAt time.Time
	// CompletedAt is when the run reached a terminal state.
	CompletedAt time.Time
}

// New creates a Composition with a generated ID in PENDING status.
func New() *Composition {
	return NewWithID(id.Generate())
}

// NewWithID creates a Composition with the given ID in PENDING status.
func NewWithID(compositionID string) *Composition {
	now := time.Now()
	return &Composition{
		ID:        compositionID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the status.
// Returns ErrInvalidTransition if the transition is not allowed.
func (c *Composition) TransitionTo(status Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transitionLocked(status)
}

func (c *Composition) transitionLocked(status Status) error {
	if !canTransition(c.Status, status) {
		return ErrInvalidTransition
	}

	c.Status = status
	c.UpdatedAt = time.Now()
	if status == StatusCompleted || status == StatusFailed {
		c.CompletedAt = c.UpdatedAt
	}
	return nil
}

// Complete records the output location and transitions to COMPLETED.
func (c *Composition) Complete(outputPath, videoURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.transitionLocked(StatusCompleted); err != nil {
		return err
	}
	c.OutputPath = outputPath
	c.VideoURL = videoURL
	return nil
}

// Fail records the error message and transitions to FAILED.
func (c *Composition) Fail(errMsg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.transitionLocked(StatusFailed); err != nil {
		return err
	}
	c.Error = errMsg
	return nil
}

// SetMediaInfo stores probed properties of the output video.
func (c *Composition) SetMediaInfo(duration, fps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Duration = duration
	c.FPS = fps
	c.UpdatedAt = time.Now()
}

// GetStatus returns the current status (thread-safe).
func (c *Composition) GetStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Status
}

// IsTerminal returns true if the composition is COMPLETED or FAILED.
func (c *Composition) IsTerminal() bool {
	s := c.GetStatus()
	return s == StatusCompleted || s == StatusFailed
}

// Clone creates a copy of the composition for safe reads.
func (c *Composition) Clone() *Composition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Composition{
		ID:               c.ID,
		Status:           c.Status,
		AudioFilename:    c.AudioFilename,
		ImageFilename:    c.ImageFilename,
		ImageContentType: c.ImageContentType,
		OutputPath:       c.OutputPath,
		VideoURL:         c.VideoURL,
		Duration:         c.Duration,
		FPS:              c.FPS,
		Error:            c.Error,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		CompletedAt:      c.CompletedAt,
	}
}
