package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// failingReader returns some bytes and then an error.
type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestNewLocalStorage(t *testing.T) {
	t.Run("creates directory if not exists", func(t *testing.T) {
		tempDir := filepath.Join(t.TempDir(), "nested", "staging")

		storage, err := NewLocalStorage(tempDir)
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		if storage.TempDir() != tempDir {
			t.Errorf("TempDir() = %v, want %v", storage.TempDir(), tempDir)
		}

		info, err := os.Stat(tempDir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("uses default directory when empty", func(t *testing.T) {
		storage, err := NewLocalStorage("")
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		expected := filepath.Join(os.TempDir(), "audio-to-video")
		if storage.TempDir() != expected {
			t.Errorf("TempDir() = %v, want %v", storage.TempDir(), expected)
		}
	})
}

func TestLocalStorage_SaveTemp(t *testing.T) {
	storage := setupTestStorage(t)

	t.Run("saves data with prefix and suffix", func(t *testing.T) {
		ctx := context.Background()

		path, err := storage.SaveTemp(ctx, "audio", ".mp3", bytes.NewReader([]byte("test data")))
		if err != nil {
			t.Fatalf("SaveTemp() error = %v", err)
		}
		defer func() { _ = os.Remove(path) }()

		base := filepath.Base(path)
		if !strings.HasPrefix(base, "audio_") {
			t.Errorf("file name %s should start with 'audio_'", base)
		}
		if !strings.HasSuffix(base, ".mp3") {
			t.Errorf("file name %s should end with '.mp3'", base)
		}
		if filepath.Dir(path) != storage.TempDir() {
			t.Errorf("file %s should be inside %s", path, storage.TempDir())
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "test data" {
			t.Errorf("got %q, want %q", string(content), "test data")
		}
	})

	t.Run("names are unique", func(t *testing.T) {
		ctx := context.Background()
		a, err := storage.SaveTemp(ctx, "image", ".jpg", bytes.NewReader(nil))
		if err != nil {
			t.Fatalf("SaveTemp() error = %v", err)
		}
		b, err := storage.SaveTemp(ctx, "image", ".jpg", bytes.NewReader(nil))
		if err != nil {
			t.Fatalf("SaveTemp() error = %v", err)
		}
		defer func() { _ = storage.CleanupTemp(ctx, []string{a, b}) }()

		if a == b {
			t.Errorf("expected distinct paths, both were %s", a)
		}
	})

	t.Run("removes partial file on read error", func(t *testing.T) {
		_, err := storage.SaveTemp(context.Background(), "broken", ".mp3", &failingReader{})
		if err == nil {
			t.Fatal("expected error from failing reader")
		}

		matches, _ := filepath.Glob(filepath.Join(storage.TempDir(), "broken_*"))
		if len(matches) != 0 {
			t.Errorf("partial files left behind: %v", matches)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := storage.SaveTemp(ctx, "test", ".bin", bytes.NewReader([]byte("data")))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLocalStorage_CleanupTemp(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	t.Run("removes files", func(t *testing.T) {
		var paths []string
		for i := 0; i < 3; i++ {
			path, err := storage.SaveTemp(ctx, "cleanup", ".tmp", bytes.NewReader([]byte("data")))
			if err != nil {
				t.Fatalf("SaveTemp() error = %v", err)
			}
			paths = append(paths, path)
		}

		if err := storage.CleanupTemp(ctx, paths); err != nil {
			t.Fatalf("CleanupTemp() error = %v", err)
		}

		for _, p := range paths {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("file %s still exists", p)
			}
		}
	})

	t.Run("ignores non-existent and empty paths", func(t *testing.T) {
		err := storage.CleanupTemp(ctx, []string{"/non/existent/file", ""})
		if err != nil {
			t.Errorf("CleanupTemp() should ignore non-existent files, got %v", err)
		}
	})

	t.Run("runs even when context is cancelled", func(t *testing.T) {
		path, err := storage.SaveTemp(ctx, "cancelled", ".tmp", bytes.NewReader([]byte("data")))
		if err != nil {
			t.Fatalf("SaveTemp() error = %v", err)
		}

		cctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := storage.CleanupTemp(cctx, []string{path}); err != nil {
			t.Fatalf("CleanupTemp() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("file %s still exists", path)
		}
	})

	t.Run("continues after a failure", func(t *testing.T) {
		// A non-empty directory cannot be removed with os.Remove
		dir := filepath.Join(storage.TempDir(), "busy")
		if err := os.MkdirAll(dir, 0750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
		path, err := storage.SaveTemp(ctx, "after", ".tmp", bytes.NewReader([]byte("data")))
		if err != nil {
			t.Fatalf("SaveTemp() error = %v", err)
		}

		err = storage.CleanupTemp(ctx, []string{dir, path})
		if err == nil {
			t.Error("expected error for non-removable path")
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Errorf("file %s should have been removed despite earlier failure", path)
		}
	})
}

func TestLocalStorage_UploadToS3(t *testing.T) {
	storage := setupTestStorage(t)

	_, err := storage.UploadToS3(context.Background(), "key", "video/mp4", bytes.NewReader([]byte("data")))
	if !errors.Is(err, ErrS3NotConfigured) {
		t.Errorf("expected ErrS3NotConfigured, got %v", err)
	}
}

func setupTestStorage(t *testing.T) *LocalStorage {
	t.Helper()

	storage, err := NewLocalStorage(filepath.Join(t.TempDir(), "staging"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return storage
}
