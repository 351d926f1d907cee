package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/maauso/audio-to-video-api/internal/composition"
	"github.com/maauso/audio-to-video-api/internal/composition/id"
	"github.com/maauso/audio-to-video-api/internal/requestid"
)

const (
	// DefaultMaxUploadBytes caps the whole multipart request body.
	DefaultMaxUploadBytes int64 = 200 << 20
	// multipartMemory is how much of the form is held in memory before
	// parts spill to temporary files.
	multipartMemory int64 = 32 << 20
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service        *composition.Service
	logger         *slog.Logger
	maxUploadBytes int64
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithMaxUploadBytes sets the request body cap. Non-positive values are ignored.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handlers) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *composition.Service, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:        service,
		logger:         logger,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateVideo handles POST /api/v1/audio-to-video/ requests.
// The request blocks until the video is written.
func (h *Handlers) CreateVideo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("request_id", requestid.FromContext(r.Context())))

	if r.ContentLength > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large", CodeTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", CodeTooLarge)
			return
		}
		logger.Warn("failed to parse multipart form",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid multipart form", CodeInvalidForm)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Warn("failed to remove multipart files",
				slog.String("error", err.Error()),
			)
		}
	}()

	audio, closeAudio, ok := formAsset(w, r, FieldAudioFile, composition.AssetAudio)
	if !ok {
		return
	}
	defer closeAudio()

	image, closeImage, ok := formAsset(w, r, FieldImageFile, composition.AssetImage)
	if !ok {
		return
	}
	defer closeImage()

	result, err := h.service.Create(r.Context(), audio, image)
	if err != nil {
		h.writeCreateError(w, logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateVideoResponse{
		FilePath: result.FilePath,
		ID:       result.ID,
		VideoURL: result.VideoURL,
	})
}

// formAsset opens the named file part. On failure it writes the error
// response and returns ok=false.
func formAsset(w http.ResponseWriter, r *http.Request, field string, kind composition.AssetKind) (composition.Asset, func(), bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, http.StatusUnprocessableEntity, "field required: "+field, CodeMissingFile)
		} else {
			writeError(w, http.StatusBadRequest, "invalid multipart form", CodeInvalidForm)
		}
		return composition.Asset{}, nil, false
	}

	return composition.Asset{
		Kind:        kind,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	}, closer(file), true
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

// writeCreateError maps pipeline errors to HTTP responses.
func (h *Handlers) writeCreateError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var vErr *composition.ValidationError
	var cErr *composition.CompositionError
	var iErr *composition.InfrastructureError

	switch {
	case errors.As(err, &vErr):
		code := CodeInvalidAudio
		if vErr.Kind == composition.AssetImage {
			code = CodeInvalidImage
		}
		logger.Info("upload rejected",
			slog.String("kind", string(vErr.Kind)),
			slog.String("content_type", vErr.ContentType),
		)
		writeError(w, http.StatusBadRequest, vErr.Message, code)
	case errors.As(err, &cErr):
		writeError(w, http.StatusInternalServerError, "Error creating video: "+cErr.Err.Error(), CodeComposition)
	case errors.As(err, &iErr):
		writeError(w, http.StatusInternalServerError, "Error preparing video: "+iErr.Err.Error(), CodeInfrastructure)
	default:
		logger.Error("unexpected composition error",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", CodeInternal)
	}
}

// GetComposition handles GET /api/v1/audio-to-video/{id} requests.
func (h *Handlers) GetComposition(w http.ResponseWriter, r *http.Request) {
	compositionID := r.PathValue("id")
	if !id.Valid(compositionID) {
		writeError(w, http.StatusNotFound, "composition not found", CodeNotFound)
		return
	}

	c, err := h.service.Get(r.Context(), compositionID)
	if err != nil {
		if errors.Is(err, composition.ErrNotFound) {
			writeError(w, http.StatusNotFound, "composition not found", CodeNotFound)
			return
		}
		h.logger.Error("failed to get composition",
			slog.String("composition_id", compositionID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get composition", CodeInternal)
		return
	}

	writeJSON(w, http.StatusOK, toCompositionResponse(c))
}

// ListCompositions handles GET /api/v1/audio-to-video/ requests.
func (h *Handlers) ListCompositions(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list compositions",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list compositions", CodeInternal)
		return
	}

	resp := ListCompositionsResponse{Compositions: make([]CompositionResponse, 0, len(all))}
	for _, c := range all {
		resp.Compositions = append(resp.Compositions, toCompositionResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toCompositionResponse(c *composition.Composition) CompositionResponse {
	resp := CompositionResponse{
		ID:            c.ID,
		Status:        string(c.Status),
		AudioFilename: c.AudioFilename,
		ImageFilename: c.ImageFilename,
		FilePath:      c.OutputPath,
		VideoURL:      c.VideoURL,
		Duration:      c.Duration,
		FPS:           c.FPS,
		Error:         c.Error,
		CreatedAt:     c.CreatedAt,
	}
	if !c.CompletedAt.IsZero() {
		completed := c.CompletedAt
		resp.CompletedAt = &completed
	}
	return resp
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, detail, code string) {
	writeJSON(w, status, ErrorResponse{
		Detail: detail,
		Code:   code,
	})
}
