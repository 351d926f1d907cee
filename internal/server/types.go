// Package server provides the HTTP server for the audio-to-video API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import "time"

// Multipart form field names.
const (
	FieldAudioFile = "audio_file"
	FieldImageFile = "image_file"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidAudio   = "INVALID_AUDIO_FORMAT"
	CodeInvalidImage   = "INVALID_IMAGE_FORMAT"
	CodeInvalidForm    = "INVALID_MULTIPART"
	CodeMissingFile    = "MISSING_FILE"
	CodeTooLarge       = "PAYLOAD_TOO_LARGE"
	CodeComposition    = "COMPOSITION_FAILED"
	CodeInfrastructure = "INFRASTRUCTURE_ERROR"
	CodeNotFound       = "COMPOSITION_NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)

// CreateVideoResponse is the HTTP response after a video was produced.
type CreateVideoResponse struct {
	// FilePath is the absolute path of the produced MP4 on the server.
	FilePath string `json:"file_path"`
	// ID is the composition identifier.
	ID string `json:"id"`
	// VideoURL is the published S3 URL, when publishing is enabled.
	VideoURL string `json:"video_url,omitempty"`
}

// CompositionResponse is the HTTP response for a composition record.
type CompositionResponse struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	AudioFilename string     `json:"audio_filename,omitempty"`
	ImageFilename string     `json:"image_filename,omitempty"`
	FilePath      string     `json:"file_path,omitempty"`
	VideoURL      string     `json:"video_url,omitempty"`
	Duration      float64    `json:"duration,omitempty"`
	FPS           float64    `json:"fps,omitempty"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// ListCompositionsResponse is the HTTP response for listing compositions.
type ListCompositionsResponse struct {
	Compositions []CompositionResponse `json:"compositions"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Detail is the human-readable error message.
	Detail string `json:"detail"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
