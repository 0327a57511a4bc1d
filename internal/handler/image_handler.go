package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"pdf-compressor/internal/domain"
	apperrors "pdf-compressor/pkg/errors"
)

// ImageHandler handles standalone image re-encoding requests
type ImageHandler struct {
	optimizer domain.ImageOptimizer
	config    domain.Config
	logger    domain.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(optimizer domain.ImageOptimizer, config domain.Config, logger domain.Logger) *ImageHandler {
	return &ImageHandler{
		optimizer: optimizer,
		config:    config,
		logger:    logger,
	}
}

// CompressImage re-encodes an uploaded JPEG or PNG at the requested quality
// and bounds. The result is always returned as binary image data.
func (h *ImageHandler) CompressImage(w http.ResponseWriter, r *http.Request) {
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

	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "" {
		writeAppError(w, apperrors.NewUnsupportedMediaError("Unsupported content type. Only JPEG and PNG images are accepted."))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.config.GetMaxFileSize()+1))
	if err != nil {
		h.logger.Error("Failed to read upload", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		writeAppError(w, apperrors.NewValidationError("Uploaded file is empty"))
		return
	}

	quality := intQueryOrForm(r, "quality", h.config.GetImageQuality())
	maxWidth := intQueryOrForm(r, "max_width", h.config.GetImageMaxWidth())
	maxHeight := intQueryOrForm(r, "max_height", h.config.GetImageMaxHeight())

	encoded, err := h.optimizer.Reencode(data, quality, maxWidth, maxHeight)
	if err != nil {
		h.logger.Error("Image re-encoding failed", err, "filename", header.Filename)
		if errors.Is(err, domain.ErrUnsupportedMedia) {
			writeAppError(w, apperrors.NewUnsupportedMediaError("Unsupported image format. Only JPEG and PNG are accepted."))
			return
		}
		writeAppError(w, apperrors.NewProcessingError("Failed to re-encode image", err))
		return
	}

	base := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	if base == "" || base == "." {
		base = "image"
	}

	w.Header().Set("Content-Type", http.DetectContentType(encoded))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"_compressed"+filepath.Ext(header.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(encoded)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(encoded)
}

// intQueryOrForm reads an int parameter from either the query string or the
// multipart form, falling back to def when absent or malformed.
func intQueryOrForm(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		raw = r.FormValue(key)
	}
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
