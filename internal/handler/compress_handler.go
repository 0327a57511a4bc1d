// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"pdf-compressor/internal/domain"
	apperrors "pdf-compressor/pkg/errors"
)

// allowedPDFMimeTypes is the transport-level allow-list checked before the
// pipeline runs. octet-stream is tolerated because browsers send it for
// drag-and-drop uploads; the stream adapter's header sniff still applies.
var allowedPDFMimeTypes = map[string]bool{
	"application/pdf":          true,
	"application/x-pdf":        true,
	"application/octet-stream": true,
	"":                         true,
}

// CompressHandler handles document compression HTTP requests
type CompressHandler struct {
	streams domain.StreamCompressor
	jobs    domain.JobRepository
	config  domain.Config
	logger  domain.Logger
}

// NewCompressHandler creates a new compress handler
func NewCompressHandler(streams domain.StreamCompressor, jobs domain.JobRepository, config domain.Config, logger domain.Logger) *CompressHandler {
	return &CompressHandler{
		streams: streams,
		jobs:    jobs,
		config:  config,
		logger:  logger,
	}
}

// CompressDocument handles PDF upload and compression.
// Header-level misuse (wrong mime type, wrong extension, oversize upload) is
// rejected here; buffering, the PDF header sniff and the threshold gate run
// in the stream adapter, before the core pipeline.
func (h *CompressHandler) CompressDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAppError(w, apperrors.NewValidationError("File is required"))
		return
	}
	defer file.Close()

	if header.Size > h.config.GetMaxFileSize() {
		writeAppError(w, apperrors.NewPayloadTooLargeError(
			fmt.Sprintf("File too large. Maximum upload size is %d bytes.", h.config.GetMaxFileSize())))
		return
	}

	originalName := strings.TrimSpace(filepath.Base(header.Filename))
	if originalName == "" || originalName == "." {
		originalName = "document.pdf"
	}

	if !allowedPDFMimeTypes[strings.ToLower(header.Header.Get("Content-Type"))] {
		writeAppError(w, apperrors.NewUnsupportedMediaError("Unsupported content type. Only PDF documents are accepted."))
		return
	}
	if ext := strings.ToLower(filepath.Ext(originalName)); ext != "" && ext != ".pdf" {
		writeAppError(w, apperrors.NewUnsupportedMediaError("Unsupported file type. Only PDF (.pdf) is accepted."))
		return
	}

	overrides, err := parseOverrides(r)
	if err != nil {
		writeAppError(w, apperrors.NewValidationError("Invalid options", err.Error()))
		return
	}

	result, err := h.streams.Compress(r.Context(), file, overrides, nil)
	if err != nil {
		h.writeStreamError(w, originalName, err)
		return
	}

	token, _ := GetTokenFromContext(r)
	h.recordJob(originalName, result, time.Since(start), token)

	if !result.Success {
		h.logger.Error("Compression failed", result.Err, "filename", originalName, "size", result.OriginalSize)
		writeAppError(w, apperrors.NewProcessingError(result.Reason, result.Err))
		return
	}

	if r.URL.Query().Get("mode") == "binary" && !result.Skipped {
		h.writeBinary(w, originalName, result)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeStreamError maps stream adapter rejections onto transport statuses.
func (h *CompressHandler) writeStreamError(w http.ResponseWriter, originalName string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidFile):
		writeAppError(w, apperrors.NewUnsupportedMediaError("File is not a PDF document"))
	case errors.Is(err, domain.ErrPayloadTooLarge):
		writeAppError(w, apperrors.NewPayloadTooLargeError("File too large."))
	case errors.Is(err, domain.ErrEmptyDocument):
		writeAppError(w, apperrors.NewValidationError("Uploaded file is empty"))
	default:
		h.logger.Error("Failed to read upload", err, "filename", originalName)
		writeError(w, http.StatusInternalServerError, "Failed to read uploaded file")
	}
}

// writeBinary streams the compressed document back as a download.
func (h *CompressHandler) writeBinary(w http.ResponseWriter, originalName string, result *domain.CompressionResult) {
	base := strings.TrimSuffix(originalName, filepath.Ext(originalName))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"_compressed.pdf"))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(result.Buffer)))
	w.Header().Set("X-Compression-Method", string(result.Method))
	w.Header().Set("X-Compression-Ratio", fmt.Sprintf("%.2f", result.CompressionRatio))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Buffer)
}

// recordJob persists job history best-effort; a failing repository never
// affects the upload response. The caller token, when present, scopes the
// insert to that caller's row-level permissions.
func (h *CompressHandler) recordJob(filename string, result *domain.CompressionResult, elapsed time.Duration, token string) {
	if h.jobs == nil {
		return
	}

	job := &domain.CompressionJob{
		ID:               generateRequestID(),
		Filename:         filename,
		OriginalSize:     result.OriginalSize,
		CompressedSize:   result.CompressedSize,
		CompressionRatio: result.CompressionRatio,
		Method:           result.Method,
		PagesProcessed:   result.PagesProcessed,
		Success:          result.Success,
		DurationMS:       elapsed.Milliseconds(),
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.jobs.Record(job, token); err != nil {
		h.logger.Warn("Failed to record compression job", "error", err, "filename", filename)
	}
}

// parseOverrides decodes the optional "options" multipart field into the
// explicit overrides structure. Unknown keys are ignored, never trusted.
func parseOverrides(r *http.Request) (*domain.ConfigOverrides, error) {
	raw := strings.TrimSpace(r.FormValue("options"))
	if raw == "" {
		return nil, nil
	}

	var overrides domain.ConfigOverrides
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, err
	}
	return &overrides, nil
}
