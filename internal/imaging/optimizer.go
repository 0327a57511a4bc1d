// Package imaging implements the image re-encoding collaborator.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"

	"pdf-compressor/internal/domain"
)

// keepOriginalPct: re-encoded output must be at least this much smaller than
// the input or the original bytes are returned unchanged.
const keepOriginalPct = 95

// Optimizer implements domain.ImageOptimizer for JPEG and PNG input.
type Optimizer struct {
	logger domain.Logger
}

// NewOptimizer creates a new image optimizer.
func NewOptimizer(logger domain.Logger) *Optimizer {
	return &Optimizer{logger: logger}
}

// Reencode decodes data, downscales it to the given pixel bounds (zero means
// unbounded) and re-encodes it at the given quality. If re-encoding gains
// less than 5%, the original bytes come back untouched; the optimizer never
// makes an image bigger.
func (o *Optimizer) Reencode(data []byte, quality, maxWidth, maxHeight int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = bound(img, maxWidth, maxHeight)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: clampQuality(quality)}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: image format %q", domain.ErrUnsupportedMedia, format)
	}

	if int64(buf.Len()) >= int64(len(data))*keepOriginalPct/100 {
		o.logger.Debug("re-encode gained too little, keeping original",
			"format", format, "original", len(data), "reencoded", buf.Len())
		return data, nil
	}
	return buf.Bytes(), nil
}

// bound downscales img to fit within maxWidth x maxHeight, preserving aspect
// ratio. Images already inside the bounds are returned as-is.
func bound(img image.Image, maxWidth, maxHeight int) image.Image {
	if maxWidth <= 0 && maxHeight <= 0 {
		return img
	}

	size := img.Bounds().Size()
	w, h := maxWidth, maxHeight
	if w <= 0 {
		w = size.X
	}
	if h <= 0 {
		h = size.Y
	}
	if size.X <= w && size.Y <= h {
		return img
	}
	return resize.Thumbnail(uint(w), uint(h), img, resize.Lanczos3)
}

func clampQuality(quality int) int {
	if quality < 1 {
		return 1
	}
	if quality > 100 {
		return 100
	}
	return quality
}
