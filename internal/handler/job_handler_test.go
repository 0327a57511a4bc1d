package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdf-compressor/internal/domain"
)

func TestListJobs(t *testing.T) {
	jobs := &MockJobRepository{recorded: []*domain.CompressionJob{
		{ID: "a", Filename: "one.pdf"},
		{ID: "b", Filename: "two.pdf"},
	}}
	h := NewJobHandler(jobs, &mockLogger{})

	req := httptest.NewRequest("GET", "/api/v1/jobs", nil)
	rr := httptest.NewRecorder()

	h.ListJobs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var payload struct {
		Jobs  []*domain.CompressionJob `json:"jobs"`
		Count int                      `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Count != 2 || len(payload.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got count %d len %d", payload.Count, len(payload.Jobs))
	}
}

func TestListJobs_LimitApplied(t *testing.T) {
	jobs := &MockJobRepository{recorded: []*domain.CompressionJob{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}}
	h := NewJobHandler(jobs, &mockLogger{})

	req := httptest.NewRequest("GET", "/api/v1/jobs?limit=1", nil)
	rr := httptest.NewRecorder()

	h.ListJobs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Count != 1 {
		t.Fatalf("expected 1 job, got %d", payload.Count)
	}
}

func TestListJobs_InvalidLimit(t *testing.T) {
	h := NewJobHandler(&MockJobRepository{}, &mockLogger{})

	for _, limit := range []string{"0", "-3", "abc"} {
		req := httptest.NewRequest("GET", "/api/v1/jobs?limit="+limit, nil)
		rr := httptest.NewRecorder()

		h.ListJobs(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400 for limit %q, got %d", limit, rr.Code)
		}
	}
}
