package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"pdf-compressor/internal/domain"
)

// PDFCPUEngine implements domain.DocumentEngine with pdfcpu. It is coarse:
// serialization runs the library's whole-document optimize pass over the
// parsed context rather than a page-by-page rebuild, and page geometry is not
// exposed through this API surface. In exchange it needs no license, which is
// why it is the default fallback engine.
type PDFCPUEngine struct {
	conf   *model.Configuration
	logger domain.Logger
}

// NewPDFCPUEngine creates a pdfcpu-backed engine with relaxed validation.
func NewPDFCPUEngine(logger domain.Logger) *PDFCPUEngine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &PDFCPUEngine{
		conf:   conf,
		logger: logger,
	}
}

// Name returns the engine identifier used in configuration.
func (e *PDFCPUEngine) Name() string {
	return "pdfcpu"
}

// Load parses and validates the buffer into a pdfcpu context.
func (e *PDFCPUEngine) Load(data []byte) (domain.Document, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), e.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentUnreadable, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentUnreadable, err)
	}

	return &pdfcpuDocument{ctx: ctx, pages: ctx.PageCount}, nil
}

// NewBuilder creates a coarse builder that optimizes the source context as a
// whole once the full, in-order page set has been appended.
func (e *PDFCPUEngine) NewBuilder(cfg *domain.CompressionConfig) (domain.DocumentBuilder, error) {
	return &pdfcpuBuilder{
		engine:    e,
		chunkHint: cfg.SerializeChunkSize,
	}, nil
}

type pdfcpuDocument struct {
	ctx   *model.Context
	pages int
}

func (d *pdfcpuDocument) PageCount() int {
	return d.pages
}

func (d *pdfcpuDocument) Page(index int) (domain.PageDescriptor, error) {
	if index < 0 || index >= d.pages {
		return domain.PageDescriptor{}, domain.ErrPageOutOfRange
	}
	// Geometry is not exposed through this engine's API surface; zero dims.
	return domain.PageDescriptor{Index: index}, nil
}

func (d *pdfcpuDocument) Info() (domain.DocumentInfo, error) {
	dict, err := infoDict(d.ctx)
	if err != nil || dict == nil {
		return domain.DocumentInfo{}, err
	}

	return domain.DocumentInfo{
		Title:    infoText(d.ctx, dict, "Title"),
		Author:   infoText(d.ctx, dict, "Author"),
		Subject:  infoText(d.ctx, dict, "Subject"),
		Keywords: infoText(d.ctx, dict, "Keywords"),
		Creator:  infoText(d.ctx, dict, "Creator"),
		Producer: infoText(d.ctx, dict, "Producer"),
	}, nil
}

func (d *pdfcpuDocument) Close() error {
	return nil
}

// infoDict resolves the trailer's info dictionary; nil when the document has
// none.
func infoDict(ctx *model.Context) (types.Dict, error) {
	if ctx.Info == nil {
		return nil, nil
	}
	return ctx.DereferenceDict(*ctx.Info)
}

// infoText resolves a text entry, following indirect references and decoding
// hex literals the way pdfcpu itself reads info fields.
func infoText(ctx *model.Context, d types.Dict, key string) string {
	obj, found := d.Find(key)
	if !found {
		return ""
	}
	s, err := ctx.DereferenceText(obj)
	if err != nil {
		return ""
	}
	return s
}

type pdfcpuBuilder struct {
	engine    *PDFCPUEngine
	src       *pdfcpuDocument
	appended  int
	chunkHint int
	info      *domain.DocumentInfo
}

func (b *pdfcpuBuilder) AppendPage(src domain.Document, index int) error {
	sdoc, ok := src.(*pdfcpuDocument)
	if !ok {
		return domain.ErrEngineMismatch
	}
	if b.src == nil {
		b.src = sdoc
	} else if b.src != sdoc {
		return domain.ErrEngineMismatch
	}
	if index < 0 || index >= sdoc.pages {
		return domain.ErrPageOutOfRange
	}
	if index != b.appended {
		return fmt.Errorf("pdfcpu builder requires in-order pages: got %d, want %d", index, b.appended)
	}
	b.appended++
	return nil
}

// SetInfo stages the output info dictionary; it is applied to the context at
// serialize time. Empty fields are deleted from the dict, so a scrubbed
// DocumentInfo really clears the stored metadata.
func (b *pdfcpuBuilder) SetInfo(info domain.DocumentInfo) error {
	b.info = &info
	return nil
}

func (b *pdfcpuBuilder) Serialize() ([]byte, error) {
	if b.src == nil {
		return nil, domain.ErrEmptyDocument
	}
	if b.appended != b.src.pages {
		return nil, fmt.Errorf("pdfcpu builder requires the full page set: have %d of %d", b.appended, b.src.pages)
	}

	if b.info != nil {
		if err := applyInfo(b.src.ctx, *b.info); err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
	}

	if err := api.OptimizeContext(b.src.ctx); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	var buf bytes.Buffer
	if b.chunkHint > 0 {
		buf.Grow(b.chunkHint)
	}
	if err := api.WriteContext(b.src.ctx, &buf); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return buf.Bytes(), nil
}

// applyInfo rewrites the context's info dictionary in place. A document
// without an info dictionary has nothing to scrub.
func applyInfo(ctx *model.Context, info domain.DocumentInfo) error {
	dict, err := infoDict(ctx)
	if err != nil || dict == nil {
		return err
	}

	setInfoEntry(dict, "Title", info.Title)
	setInfoEntry(dict, "Author", info.Author)
	setInfoEntry(dict, "Subject", info.Subject)
	setInfoEntry(dict, "Keywords", info.Keywords)
	setInfoEntry(dict, "Creator", info.Creator)
	setInfoEntry(dict, "Producer", info.Producer)
	return nil
}

func setInfoEntry(d types.Dict, key, value string) {
	if value == "" {
		d.Delete(key)
		return
	}
	d.Update(key, types.StringLiteral(value))
}
