// Package pdf provides document engine implementations over third-party
// PDF object-model libraries.
package pdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/unidoc/unipdf/v3/common"
	"github.com/unidoc/unipdf/v3/core"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/model/optimize"

	"pdf-compressor/internal/domain"
)

// UniPDFEngine implements domain.DocumentEngine with UniPDF. It supports the
// full rebuild path: page copy, writer-level image optimization and info
// dictionary scrubbing. UniPDF requires a license key; without one, Load
// fails and the pipeline degrades to the fallback engine.
type UniPDFEngine struct {
	licenseKey string
	logger     domain.Logger
}

// NewUniPDFEngine creates a UniPDF-backed engine. The license key comes from
// configuration or the UNIDOC_LICENSE_API_KEY environment variable.
func NewUniPDFEngine(cfg domain.Config, logger domain.Logger) *UniPDFEngine {
	common.SetLogger(common.NewConsoleLogger(common.LogLevelError))

	key := cfg.GetUniPDFLicenseKey()
	if key == "" {
		key = os.Getenv("UNIDOC_LICENSE_API_KEY")
	}
	if key != "" {
		os.Setenv("UNIDOC_LICENSE_API_KEY", key)
	}

	return &UniPDFEngine{
		licenseKey: key,
		logger:     logger,
	}
}

// Name returns the engine identifier used in configuration.
func (e *UniPDFEngine) Name() string {
	return "unipdf"
}

// Load parses an in-memory buffer into a document handle.
func (e *UniPDFEngine) Load(data []byte) (domain.Document, error) {
	if e.licenseKey == "" {
		return nil, fmt.Errorf("%w: set UNIDOC_LICENSE_API_KEY or select the pdfcpu engine", domain.ErrLicenseRequired)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentUnreadable, err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("%w: page count: %v", domain.ErrDocumentUnreadable, err)
	}

	return &unipdfDocument{reader: reader, pages: numPages}, nil
}

// NewBuilder creates an output document with the optimizer chain configured
// from the merged compression options.
func (e *UniPDFEngine) NewBuilder(cfg *domain.CompressionConfig) (domain.DocumentBuilder, error) {
	writer := model.NewPdfWriter()

	// Font subsetting (OptimizeFonts) is accepted as a policy flag but the
	// optimizer chain is left at the library's font handling defaults.
	writer.SetOptimizer(optimize.New(optimize.Options{
		CombineDuplicateDirectObjects:   true,
		CombineIdenticalIndirectObjects: true,
		CombineDuplicateStreams:         true,
		UseObjectStreams:                true,
		ImageQuality:                    cfg.ImageQuality,
		ImageUpperPPI:                   imageUpperPPI(cfg),
	}))

	return &unipdfBuilder{
		writer:    writer,
		chunkHint: cfg.SerializeChunkSize,
	}, nil
}

// imageUpperPPI derives an image PPI cap from the configured pixel bounds,
// assuming letter-width pages. Zero means no cap.
func imageUpperPPI(cfg *domain.CompressionConfig) float64 {
	bound := cfg.ImageMaxWidth
	if cfg.ImageMaxHeight > bound {
		bound = cfg.ImageMaxHeight
	}
	if bound <= 0 {
		return 0
	}
	return float64(bound) / 8.5
}

type unipdfDocument struct {
	reader *model.PdfReader
	pages  int
}

func (d *unipdfDocument) PageCount() int {
	return d.pages
}

func (d *unipdfDocument) Page(index int) (domain.PageDescriptor, error) {
	if index < 0 || index >= d.pages {
		return domain.PageDescriptor{}, domain.ErrPageOutOfRange
	}

	page, err := d.reader.GetPage(index + 1)
	if err != nil {
		return domain.PageDescriptor{}, fmt.Errorf("page %d: %w", index+1, err)
	}

	box, err := page.GetMediaBox()
	if err != nil {
		return domain.PageDescriptor{}, fmt.Errorf("page %d media box: %w", index+1, err)
	}

	width := box.Urx - box.Llx
	if width < 0 {
		width = -width
	}
	height := box.Ury - box.Lly
	if height < 0 {
		height = -height
	}

	return domain.PageDescriptor{Index: index, Width: width, Height: height}, nil
}

func (d *unipdfDocument) Info() (domain.DocumentInfo, error) {
	info, err := d.reader.GetPdfInfo()
	if err != nil {
		return domain.DocumentInfo{}, err
	}

	return domain.DocumentInfo{
		Title:    decodedString(info.Title),
		Author:   decodedString(info.Author),
		Subject:  decodedString(info.Subject),
		Keywords: decodedString(info.Keywords),
		Creator:  decodedString(info.Creator),
		Producer: decodedString(info.Producer),
	}, nil
}

func (d *unipdfDocument) Close() error {
	return nil
}

func decodedString(s *core.PdfObjectString) string {
	if s == nil {
		return ""
	}
	return s.Decoded()
}

type unipdfBuilder struct {
	writer    model.PdfWriter
	chunkHint int
}

func (b *unipdfBuilder) AppendPage(src domain.Document, index int) error {
	sdoc, ok := src.(*unipdfDocument)
	if !ok {
		return domain.ErrEngineMismatch
	}
	if index < 0 || index >= sdoc.pages {
		return domain.ErrPageOutOfRange
	}

	page, err := sdoc.reader.GetPage(index + 1)
	if err != nil {
		return fmt.Errorf("page %d: %w", index+1, err)
	}
	return b.writer.AddPage(page)
}

func (b *unipdfBuilder) SetInfo(info domain.DocumentInfo) error {
	docInfo := model.PdfInfo{}
	if info.Title != "" {
		docInfo.Title = core.MakeString(info.Title)
	}
	if info.Author != "" {
		docInfo.Author = core.MakeString(info.Author)
	}
	if info.Subject != "" {
		docInfo.Subject = core.MakeString(info.Subject)
	}
	if info.Keywords != "" {
		docInfo.Keywords = core.MakeString(info.Keywords)
	}
	if info.Creator != "" {
		docInfo.Creator = core.MakeString(info.Creator)
	}
	if info.Producer != "" {
		docInfo.Producer = core.MakeString(info.Producer)
	}
	b.writer.SetDocInfo(&docInfo)
	return nil
}

func (b *unipdfBuilder) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if b.chunkHint > 0 {
		buf.Grow(b.chunkHint)
	}
	if err := b.writer.Write(&buf); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return buf.Bytes(), nil
}
