package service

import (
	"context"
	"fmt"

	"pdf-compressor/internal/domain"
)

// PDFCompressionService implements the domain.CompressionService interface.
// One invocation owns its input buffer, output builder and accumulator state
// exclusively; independent invocations may run concurrently.
type PDFCompressionService struct {
	primary       domain.DocumentEngine
	fallback      domain.DocumentEngine
	pageOptimizer domain.PageOptimizer
	gate          *ThresholdGate
	defaults      domain.CompressionConfig
	gainPrimary   float64
	gainFallback  float64
	logger        domain.Logger
}

// attempt is the outcome of one strategy. Making the outcome a value (rather
// than control flow through panics or wrapped exceptions) keeps the
// primary-to-fallback transition an explicit state transition.
type attempt struct {
	buffer []byte
	pages  int
	err    error
}

func (a attempt) failed() bool {
	return a.err != nil
}

// NewCompressionService creates a new compression pipeline.
func NewCompressionService(
	primary domain.DocumentEngine,
	fallback domain.DocumentEngine,
	pageOptimizer domain.PageOptimizer,
	cfg domain.Config,
	logger domain.Logger,
) *PDFCompressionService {
	return &PDFCompressionService{
		primary:       primary,
		fallback:      fallback,
		pageOptimizer: pageOptimizer,
		gate:          NewThresholdGate(cfg.GetCompressionThreshold()),
		defaults: domain.CompressionConfig{
			ImageQuality:   cfg.GetImageQuality(),
			ImageMaxWidth:  cfg.GetImageMaxWidth(),
			ImageMaxHeight: cfg.GetImageMaxHeight(),
			RemoveMetadata: cfg.GetRemoveMetadata(),
		},
		gainPrimary:  cfg.GetMinGainPrimary(),
		gainFallback: cfg.GetMinGainFallback(),
		logger:       logger,
	}
}

// NeedsCompression applies the threshold gate to a document size.
func (s *PDFCompressionService) NeedsCompression(size int64) bool {
	return s.gate.NeedsCompression(size)
}

// SkippedResult builds the result returned when the caller gates on
// NeedsCompression and decides not to run the pipeline.
func (s *PDFCompressionService) SkippedResult(size int64) *domain.CompressionResult {
	return &domain.CompressionResult{
		Success:        true,
		Method:         domain.MethodSkipped,
		Skipped:        true,
		Reason:         fmt.Sprintf("document size %d bytes is at or below the %d byte threshold", size, s.gate.Threshold()),
		OriginalSize:   size,
		CompressedSize: size,
	}
}

// Compress runs the pipeline without progress reporting.
func (s *PDFCompressionService) Compress(ctx context.Context, data []byte, overrides *domain.ConfigOverrides) *domain.CompressionResult {
	return s.CompressWithProgress(ctx, data, overrides, nil)
}

// CompressWithProgress runs the two-stage pipeline: a full page-by-page
// rebuild first, then a minimal fallback on the original input if the
// rebuild fails at any step. It never returns partial primary output.
func (s *PDFCompressionService) CompressWithProgress(ctx context.Context, data []byte, overrides *domain.ConfigOverrides, sink domain.ProgressSink) *domain.CompressionResult {
	originalSize := int64(len(data))

	cfg := s.defaults.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return s.failedResult(originalSize, err)
	}

	primary := s.runPrimary(ctx, data, &cfg, sink)
	if !primary.failed() {
		return s.assemble(originalSize, primary, domain.MethodPrimary, s.gainPrimary)
	}
	s.logger.Warn("primary compression failed, trying fallback",
		"engine", s.primary.Name(), "error", primary.err)

	// Fallback always operates on the original input buffer, never on
	// partial primary output.
	fb := s.runFallback(ctx, data)
	if !fb.failed() {
		return s.assemble(originalSize, fb, domain.MethodFallback, s.gainFallback)
	}

	err := fmt.Errorf("%w: fallback (%s): %v; primary (%s): %v",
		domain.ErrCompressionFailed, s.fallback.Name(), fb.err, s.primary.Name(), primary.err)
	s.logger.Error("compression failed on both paths", err)
	return s.failedResult(originalSize, err)
}

// runPrimary executes the full rebuild strategy: load, copy each page in
// input order through the optional page optimizer, scrub metadata if
// configured, serialize.
func (s *PDFCompressionService) runPrimary(ctx context.Context, data []byte, cfg *domain.CompressionConfig, sink domain.ProgressSink) attempt {
	doc, err := s.primary.Load(data)
	if err != nil {
		return attempt{err: fmt.Errorf("load: %w", err)}
	}
	defer doc.Close()

	builder, err := s.primary.NewBuilder(cfg)
	if err != nil {
		return attempt{err: fmt.Errorf("builder: %w", err)}
	}

	total := doc.PageCount()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return attempt{err: fmt.Errorf("page %d: %w", i+1, err)}
		}

		page, err := doc.Page(i)
		if err != nil {
			return attempt{err: fmt.Errorf("page %d: %w", i+1, err)}
		}
		if err := builder.AppendPage(doc, i); err != nil {
			return attempt{err: fmt.Errorf("copy page %d: %w", i+1, err)}
		}
		if s.pageOptimizer != nil {
			if err := s.pageOptimizer.OptimizePage(page); err != nil {
				return attempt{err: fmt.Errorf("optimize page %d: %w", i+1, err)}
			}
		}
		s.notify(sink, i+1, total)
	}

	var info domain.DocumentInfo
	if srcInfo, err := doc.Info(); err == nil {
		if cfg.RemoveMetadata {
			info = srcInfo.ScrubAll()
		} else {
			// Carry the source information dictionary through unchanged.
			info = srcInfo
		}
	}
	if err := builder.SetInfo(info); err != nil {
		return attempt{err: fmt.Errorf("metadata: %w", err)}
	}

	out, err := builder.Serialize()
	if err != nil {
		return attempt{err: fmt.Errorf("serialize: %w", err)}
	}
	return attempt{buffer: out, pages: total}
}

// runFallback executes the minimal strategy: load with the fallback engine,
// clear only the identity fields (title/author/subject/keywords), serialize
// with default settings. No page optimizer, no progress reporting.
func (s *PDFCompressionService) runFallback(ctx context.Context, data []byte) attempt {
	if err := ctx.Err(); err != nil {
		return attempt{err: err}
	}

	doc, err := s.fallback.Load(data)
	if err != nil {
		return attempt{err: fmt.Errorf("load: %w", err)}
	}
	defer doc.Close()

	defaultCfg := domain.DefaultCompressionConfig()
	builder, err := s.fallback.NewBuilder(&defaultCfg)
	if err != nil {
		return attempt{err: fmt.Errorf("builder: %w", err)}
	}

	total := doc.PageCount()
	for i := 0; i < total; i++ {
		if err := builder.AppendPage(doc, i); err != nil {
			return attempt{err: fmt.Errorf("copy page %d: %w", i+1, err)}
		}
	}

	info, err := doc.Info()
	if err != nil {
		info = domain.DocumentInfo{}
	}
	if err := builder.SetInfo(info.ScrubIdentity()); err != nil {
		return attempt{err: fmt.Errorf("metadata: %w", err)}
	}

	out, err := builder.Serialize()
	if err != nil {
		return attempt{err: fmt.Errorf("serialize: %w", err)}
	}
	return attempt{buffer: out, pages: total}
}

// assemble turns a successful attempt into the outcome record. Compressed is
// a derived flag: the ratio must clear the path's minimum-gain floor, so a
// noise-level shrink is reported as processed but not compressed.
func (s *PDFCompressionService) assemble(originalSize int64, a attempt, method domain.CompressionMethod, minGain float64) *domain.CompressionResult {
	compressedSize := int64(len(a.buffer))
	ratio := domain.ComputeRatio(originalSize, compressedSize)

	return &domain.CompressionResult{
		Success:          true,
		Compressed:       ratio > minGain,
		Buffer:           a.buffer,
		OriginalSize:     originalSize,
		CompressedSize:   compressedSize,
		CompressionRatio: ratio,
		PagesProcessed:   a.pages,
		Method:           method,
	}
}

func (s *PDFCompressionService) failedResult(originalSize int64, err error) *domain.CompressionResult {
	return &domain.CompressionResult{
		Success:      false,
		Method:       domain.MethodFailed,
		OriginalSize: originalSize,
		Reason:       err.Error(),
		Err:          err,
	}
}

// notify delivers one progress notification, isolating the sink: a panicking
// sink must not abort the page loop.
func (s *PDFCompressionService) notify(sink domain.ProgressSink, completed, total int) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("progress sink panicked", "panic", r, "completed", completed, "total", total)
		}
	}()
	sink.PageCompleted(completed, total)
}
