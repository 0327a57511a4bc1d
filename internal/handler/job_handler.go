package handler

import (
	"net/http"
	"strconv"

	"pdf-compressor/internal/domain"
)

const defaultJobListLimit = 20

// JobHandler exposes recorded compression job history
type JobHandler struct {
	jobs   domain.JobRepository
	logger domain.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs domain.JobRepository, logger domain.Logger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: logger,
	}
}

// ListJobs returns the most recent compression jobs, newest first.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	token, _ := GetTokenFromContext(r)
	jobs, err := h.jobs.Recent(limit, token)
	if err != nil {
		h.logger.Error("Failed to list compression jobs", err, "limit", limit)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve job history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}
