package domain

// CompressionMethod identifies which code path produced a result.
type CompressionMethod string

const (
	MethodPrimary  CompressionMethod = "primary"
	MethodFallback CompressionMethod = "fallback"
	MethodSkipped  CompressionMethod = "skipped"
	MethodFailed   CompressionMethod = "failed"
)

// CompressionConfig holds the recognized compression options for one call.
// A config is built once per call by merging service defaults with caller
// overrides and is never mutated afterwards; there is no process-wide
// defaults object.
type CompressionConfig struct {
	ImageQuality       int  `json:"image_quality"`
	ImageMaxWidth      int  `json:"image_max_width"`
	ImageMaxHeight     int  `json:"image_max_height"`
	RemoveMetadata     bool `json:"remove_metadata"`
	OptimizeFonts      bool `json:"optimize_fonts"`
	SerializeChunkSize int  `json:"serialize_chunk_size"`
}

// ConfigOverrides carries caller-supplied option overrides. Nil fields keep
// the default; unknown JSON keys are ignored by the decoder rather than
// trusted.
type ConfigOverrides struct {
	ImageQuality       *int  `json:"image_quality"`
	ImageMaxWidth      *int  `json:"image_max_width"`
	ImageMaxHeight     *int  `json:"image_max_height"`
	RemoveMetadata     *bool `json:"remove_metadata"`
	OptimizeFonts      *bool `json:"optimize_fonts"`
	SerializeChunkSize *int  `json:"serialize_chunk_size"`
}

// DefaultCompressionConfig returns the built-in option defaults.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		ImageQuality:   75,
		RemoveMetadata: true,
	}
}

// Merge returns a new config with non-nil overrides applied on top of c.
// The receiver is not modified.
func (c CompressionConfig) Merge(o *ConfigOverrides) CompressionConfig {
	if o == nil {
		return c
	}
	merged := c
	if o.ImageQuality != nil {
		merged.ImageQuality = *o.ImageQuality
	}
	if o.ImageMaxWidth != nil {
		merged.ImageMaxWidth = *o.ImageMaxWidth
	}
	if o.ImageMaxHeight != nil {
		merged.ImageMaxHeight = *o.ImageMaxHeight
	}
	if o.RemoveMetadata != nil {
		merged.RemoveMetadata = *o.RemoveMetadata
	}
	if o.OptimizeFonts != nil {
		merged.OptimizeFonts = *o.OptimizeFonts
	}
	if o.SerializeChunkSize != nil {
		merged.SerializeChunkSize = *o.SerializeChunkSize
	}
	return merged
}

// Validate checks the merged option values.
func (c CompressionConfig) Validate() error {
	if c.ImageQuality < 0 || c.ImageQuality > 100 {
		return &ValidationError{Field: "image_quality", Message: "must be between 0 and 100"}
	}
	if c.ImageMaxWidth < 0 {
		return &ValidationError{Field: "image_max_width", Message: "must not be negative"}
	}
	if c.ImageMaxHeight < 0 {
		return &ValidationError{Field: "image_max_height", Message: "must not be negative"}
	}
	if c.SerializeChunkSize < 0 {
		return &ValidationError{Field: "serialize_chunk_size", Message: "must not be negative"}
	}
	return nil
}

// CompressionResult is the outcome record of one pipeline call.
type CompressionResult struct {
	Success          bool              `json:"success"`
	Compressed       bool              `json:"compressed"`
	Buffer           []byte            `json:"-"`
	OriginalSize     int64             `json:"original_size"`
	CompressedSize   int64             `json:"compressed_size"`
	CompressionRatio float64           `json:"compression_ratio"`
	PagesProcessed   int               `json:"pages_processed"`
	Method           CompressionMethod `json:"method"`
	Skipped          bool              `json:"skipped,omitempty"`
	Reason           string            `json:"reason,omitempty"`
	Err              error             `json:"-"`
}

// ComputeRatio returns the size reduction as a percentage, floored at zero.
// A zero-byte original yields zero to avoid division by zero.
func ComputeRatio(originalSize, compressedSize int64) float64 {
	if originalSize <= 0 {
		return 0
	}
	ratio := float64(originalSize-compressedSize) / float64(originalSize) * 100
	if ratio < 0 {
		return 0
	}
	return ratio
}
