package service

// ThresholdGate decides from size alone whether a document warrants
// transcoding. Pure; no side effects.
type ThresholdGate struct {
	threshold int64
}

// NewThresholdGate creates a gate for the given byte threshold.
func NewThresholdGate(threshold int64) *ThresholdGate {
	return &ThresholdGate{threshold: threshold}
}

// NeedsCompression reports whether a document of the given byte size should
// be compressed. The comparison is strictly greater-than: a document of
// exactly the threshold size is NOT compressed. That boundary is documented
// policy; callers must not re-derive it with their own comparison.
func (g *ThresholdGate) NeedsCompression(size int64) bool {
	return size > g.threshold
}

// Threshold returns the configured byte threshold.
func (g *ThresholdGate) Threshold() int64 {
	return g.threshold
}
