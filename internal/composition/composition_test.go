package composition

import (
	"errors"
	"testing"

	"github.com/maauso/audio-to-video-api/internal/composition/id"
)

func TestNew(t *testing.T) {
	c := New()

	if !id.Valid(c.ID) {
		t.Errorf("expected a generated ID, got %q", c.ID)
	}
	if c.Status != StatusPending {
		t.Errorf("expected status %s, got %s", StatusPending, c.Status)
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if !c.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be zero")
	}
}

func TestComposition_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []Status
		wantErr bool
	}{
		{"happy path", []Status{StatusStaging, StatusComposing, StatusCompleted}, false},
		{"fail while pending", []Status{StatusFailed}, false},
		{"fail while staging", []Status{StatusStaging, StatusFailed}, false},
		{"fail while composing", []Status{StatusStaging, StatusComposing, StatusFailed}, false},
		{"skip staging", []Status{StatusComposing}, true},
		{"complete from pending", []Status{StatusCompleted}, true},
		{"complete from staging", []Status{StatusStaging, StatusCompleted}, true},
		{"leave completed", []Status{StatusStaging, StatusComposing, StatusCompleted, StatusFailed}, true},
		{"leave failed", []Status{StatusFailed, StatusStaging}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			var err error
			for _, s := range tt.path {
				if err = c.TransitionTo(s); err != nil {
					break
				}
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("expected ErrInvalidTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := c.GetStatus(); got != tt.path[len(tt.path)-1] {
				t.Errorf("expected status %s, got %s", tt.path[len(tt.path)-1], got)
			}
		})
	}
}

func TestComposition_Complete(t *testing.T) {
	c := New()
	_ = c.TransitionTo(StatusStaging)
	_ = c.TransitionTo(StatusComposing)

	if err := c.Complete("/srv/videos/x.mp4", "https://example.com/x.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.OutputPath != "/srv/videos/x.mp4" {
		t.Errorf("unexpected output path %q", c.OutputPath)
	}
	if c.VideoURL != "https://example.com/x.mp4" {
		t.Errorf("unexpected video URL %q", c.VideoURL)
	}
	if !c.IsTerminal() {
		t.Error("expected completed composition to be terminal")
	}
	if c.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be set")
	}
}

func TestComposition_Complete_InvalidState(t *testing.T) {
	c := New()
	if err := c.Complete("/out.mp4", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if c.OutputPath != "" {
		t.Error("output path should not be recorded on a rejected transition")
	}
}

func TestComposition_Fail(t *testing.T) {
	c := New()
	_ = c.TransitionTo(StatusStaging)

	if err := c.Fail("disk full"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusFailed {
		t.Errorf("expected status %s, got %s", StatusFailed, c.Status)
	}
	if c.Error != "disk full" {
		t.Errorf("expected error message to be recorded, got %q", c.Error)
	}
	if !c.IsTerminal() {
		t.Error("expected failed composition to be terminal")
	}

	if err := c.Fail("again"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on second Fail, got %v", err)
	}
	if c.Error != "disk full" {
		t.Error("second Fail should not overwrite the error")
	}
}

func TestComposition_Clone(t *testing.T) {
	c := New()
	c.AudioFilename = "song.mp3"
	c.SetMediaInfo(3.5, 24)

	clone := c.Clone()
	if clone.ID != c.ID || clone.AudioFilename != "song.mp3" {
		t.Error("clone should copy fields")
	}
	if clone.Duration != 3.5 || clone.FPS != 24 {
		t.Errorf("clone should copy media info, got %.1f/%.1f", clone.Duration, clone.FPS)
	}

	clone.AudioFilename = "other.mp3"
	_ = clone.Fail("boom")
	if c.AudioFilename != "song.mp3" || c.Status != StatusPending {
		t.Error("modifying clone should not affect original")
	}
}
