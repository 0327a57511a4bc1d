package repository

import (
	"sync"

	"pdf-compressor/internal/domain"
)

// DefaultHistorySize is how many jobs the in-memory repository retains.
const DefaultHistorySize = 100

// MemoryJobRepository keeps recent compression jobs in memory. Used when
// Supabase is not configured, and by tests.
type MemoryJobRepository struct {
	mu   sync.Mutex
	jobs []*domain.CompressionJob
	cap  int
}

// NewMemoryJobRepository creates an in-memory job repository retaining up to
// capacity entries.
func NewMemoryJobRepository(capacity int) *MemoryJobRepository {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &MemoryJobRepository{cap: capacity}
}

// Record appends a job, evicting the oldest entry when full. The caller
// token is ignored; the in-memory store has no row-level permissions.
func (r *MemoryJobRepository) Record(job *domain.CompressionJob, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs = append(r.jobs, job)
	if len(r.jobs) > r.cap {
		r.jobs = r.jobs[len(r.jobs)-r.cap:]
	}
	return nil
}

// Recent returns up to limit jobs, newest first.
func (r *MemoryJobRepository) Recent(limit int, token string) ([]*domain.CompressionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.jobs)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*domain.CompressionJob, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.jobs[i])
	}
	return out, nil
}
