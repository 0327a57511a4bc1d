package domain

import (
	"context"
	"io"
)

// DocumentEngine is the narrow interface over a PDF object-model library.
// The pipeline never touches raw document byte structures itself.
type DocumentEngine interface {
	Name() string
	Load(data []byte) (Document, error)
	NewBuilder(cfg *CompressionConfig) (DocumentBuilder, error)
}

// Document is a loaded, in-memory document exposing page enumeration.
type Document interface {
	PageCount() int
	Page(index int) (PageDescriptor, error)
	Info() (DocumentInfo, error)
	Close() error
}

// DocumentBuilder assembles an output document page by page and serializes
// it to bytes. Pages must be appended in input order.
type DocumentBuilder interface {
	AppendPage(src Document, index int) error
	SetInfo(info DocumentInfo) error
	Serialize() ([]byte, error)
}

// PageOptimizer is the optional per-page transformation hook invoked during
// page rebuild. Implementations must tolerate being a no-op; image and font
// work are never mandatory.
type PageOptimizer interface {
	OptimizePage(page PageDescriptor) error
}

// ImageOptimizer re-encodes a single raster image. Optional collaborator;
// a nil or no-op optimizer must not break the pipeline.
type ImageOptimizer interface {
	Reencode(data []byte, quality, maxWidth, maxHeight int) ([]byte, error)
}

// ProgressSink receives one notification per completed page, in page order.
// A misbehaving sink must never abort the page loop.
type ProgressSink interface {
	PageCompleted(completed, total int)
}

// ProgressSinkFunc adapts a plain function to the ProgressSink interface.
type ProgressSinkFunc func(completed, total int)

func (f ProgressSinkFunc) PageCompleted(completed, total int) {
	f(completed, total)
}

// CompressionService defines the pipeline operations.
type CompressionService interface {
	NeedsCompression(size int64) bool
	SkippedResult(size int64) *CompressionResult
	Compress(ctx context.Context, data []byte, overrides *ConfigOverrides) *CompressionResult
	CompressWithProgress(ctx context.Context, data []byte, overrides *ConfigOverrides, sink ProgressSink) *CompressionResult
}

// StreamCompressor adapts the pipeline to an incoming byte stream: it
// buffers, enforces the size limit, sniffs the PDF header and applies the
// threshold gate before the pipeline runs.
type StreamCompressor interface {
	Compress(ctx context.Context, r io.Reader, overrides *ConfigOverrides, sink ProgressSink) (*CompressionResult, error)
}

// JobRepository persists compression job history. An empty token uses the
// service-level credentials; a caller token scopes the operation to that
// caller's row-level permissions.
type JobRepository interface {
	Record(job *CompressionJob, token string) error
	Recent(limit int, token string) ([]*CompressionJob, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetLogLevel() string

	GetCompressionThreshold() int64
	GetMinGainPrimary() float64
	GetMinGainFallback() float64
	GetPrimaryEngine() string
	GetFallbackEngine() string

	GetImageQuality() int
	GetImageMaxWidth() int
	GetImageMaxHeight() int
	GetRemoveMetadata() bool

	GetUniPDFLicenseKey() string
	GetSupabaseURL() string
	GetSupabaseKey() string
}
