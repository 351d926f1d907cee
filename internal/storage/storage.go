// Package storage provides temporary staging and optional S3 publishing of files.
// It defines the Storage interface (port) and implementations for local disk
// and S3 storage.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for staging uploads and publishing results.
type Storage interface {
	// SaveTemp writes data to a uniquely named temporary file and returns its path.
	// The name is used as a filename prefix and suffix is appended verbatim
	// (for example ".mp3").
	SaveTemp(ctx context.Context, name, suffix string, data io.Reader) (path string, err error)

	// CleanupTemp removes the specified temporary files.
	// It attempts every path even if some fail or ctx is already done,
	// so it is safe to call from deferred cleanup.
	CleanupTemp(ctx context.Context, paths []string) error

	// UploadToS3 uploads data to S3 and returns the public URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadToS3(ctx context.Context, key, contentType string, data io.Reader) (url string, err error)
}
