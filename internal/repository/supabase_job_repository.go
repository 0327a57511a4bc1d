package repository

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/supabase-community/supabase-go"

	"pdf-compressor/internal/domain"
)

// SupabaseJobRepository persists compression job history in Supabase.
type SupabaseJobRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseJobRepository creates a new Supabase job repository
func NewSupabaseJobRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.JobRepository {
	return &SupabaseJobRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// client returns a token-scoped client when a caller token is present so
// row-level security applies to the caller, and the service client otherwise.
func (r *SupabaseJobRepository) client(token string) (*supabase.Client, error) {
	if token != "" {
		return r.supabaseClient.GetClientWithToken(token)
	}
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, domain.ErrRepositoryDisabled
	}
	return client, nil
}

// Record inserts one job row.
func (r *SupabaseJobRepository) Record(job *domain.CompressionJob, token string) error {
	client, err := r.client(token)
	if err != nil {
		return err
	}

	row := map[string]interface{}{
		"id":                job.ID,
		"filename":          job.Filename,
		"original_size":     job.OriginalSize,
		"compressed_size":   job.CompressedSize,
		"compression_ratio": job.CompressionRatio,
		"method":            string(job.Method),
		"pages_processed":   job.PagesProcessed,
		"success":           job.Success,
		"duration_ms":       job.DurationMS,
		"created_at":        job.CreatedAt,
	}

	_, _, err = client.From("compression_jobs").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to record compression job: %w", err)
	}
	return nil
}

// Recent returns up to limit jobs, newest first.
func (r *SupabaseJobRepository) Recent(limit int, token string) ([]*domain.CompressionJob, error) {
	client, err := r.client(token)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From("compression_jobs").
		Select("*", "", false).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list compression jobs: %w", err)
	}

	var jobs []*domain.CompressionJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}
