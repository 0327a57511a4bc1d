package pdf

import "pdf-compressor/internal/domain"

// NewEngine returns the document engine registered under name. Unknown names
// resolve to pdfcpu, the license-free engine.
func NewEngine(name string, cfg domain.Config, logger domain.Logger) domain.DocumentEngine {
	switch name {
	case "unipdf":
		return NewUniPDFEngine(cfg, logger)
	case "pdfcpu":
		return NewPDFCPUEngine(logger)
	default:
		logger.Warn("unknown document engine, using pdfcpu", "engine", name)
		return NewPDFCPUEngine(logger)
	}
}
