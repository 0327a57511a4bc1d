package domain

import "time"

// CompressionJob is one recorded pipeline invocation.
type CompressionJob struct {
	ID               string            `json:"id"`
	Filename         string            `json:"filename"`
	OriginalSize     int64             `json:"original_size"`
	CompressedSize   int64             `json:"compressed_size"`
	CompressionRatio float64           `json:"compression_ratio"`
	Method           CompressionMethod `json:"method"`
	PagesProcessed   int               `json:"pages_processed"`
	Success          bool              `json:"success"`
	DurationMS       int64             `json:"duration_ms"`
	CreatedAt        time.Time         `json:"created_at"`
}
