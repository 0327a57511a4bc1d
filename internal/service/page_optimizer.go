package service

import "pdf-compressor/internal/domain"

// NoopPageOptimizer is the default page optimizer hook. Per-page image and
// font rewriting is delegated to the document engine's own optimizer chain;
// the hook stays in the loop so a custom optimizer can be swapped in without
// touching the pipeline.
type NoopPageOptimizer struct{}

// NewNoopPageOptimizer creates the default no-op hook.
func NewNoopPageOptimizer() *NoopPageOptimizer {
	return &NoopPageOptimizer{}
}

// OptimizePage does nothing and never fails.
func (o *NoopPageOptimizer) OptimizePage(page domain.PageDescriptor) error {
	return nil
}
