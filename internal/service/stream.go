package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"pdf-compressor/internal/domain"
)

// pdfHeader is the serialization marker every well-formed PDF starts with.
var pdfHeader = []byte("%PDF-")

// StreamCompressor adapts the pipeline to an incoming byte stream. The
// document format requires random access to the whole structure, so every
// chunk is buffered before the pipeline starts; this is a hard constraint of
// the format, not an optimization choice. Size limit, header sniff and
// threshold gate all run here, so transports delegate the whole
// buffer-and-gate sequence.
type StreamCompressor struct {
	service domain.CompressionService
	maxSize int64
	logger  domain.Logger
}

// NewStreamCompressor creates a stream adapter over the pipeline. maxSize
// bounds how much input is buffered; zero means no bound.
func NewStreamCompressor(service domain.CompressionService, maxSize int64, logger domain.Logger) *StreamCompressor {
	return &StreamCompressor{
		service: service,
		maxSize: maxSize,
		logger:  logger,
	}
}

// Compress buffers r fully, then invokes the pipeline exactly once at
// end-of-stream. The threshold gate applies to the buffered size: streams at
// or below the threshold come back as skipped results.
func (s *StreamCompressor) Compress(ctx context.Context, r io.Reader, overrides *domain.ConfigOverrides, sink domain.ProgressSink) (*domain.CompressionResult, error) {
	var buf bytes.Buffer

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := buf.ReadFrom(src)
	if err != nil {
		return nil, fmt.Errorf("buffering input stream: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		return nil, fmt.Errorf("%w: input stream exceeds %d bytes", domain.ErrPayloadTooLarge, s.maxSize)
	}
	if n == 0 {
		return nil, domain.ErrEmptyDocument
	}
	if !bytes.HasPrefix(buf.Bytes(), pdfHeader) {
		return nil, fmt.Errorf("%w: missing PDF header", domain.ErrInvalidFile)
	}

	if !s.service.NeedsCompression(n) {
		s.logger.Debug("stream below compression threshold", "size", n)
		return s.service.SkippedResult(n), nil
	}

	return s.service.CompressWithProgress(ctx, buf.Bytes(), overrides, sink), nil
}
