package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"pdf-compressor/internal/domain"
	"pdf-compressor/internal/service"
)

// Mock implementations for handler testing

type mockLogger struct{}

func (m *mockLogger) Info(msg string, fields ...interface{}) {}
func (m *mockLogger) Error(msg string, err error, fields ...interface{}) {}
func (m *mockLogger) Debug(msg string, fields ...interface{}) {}
func (m *mockLogger) Warn(msg string, fields ...interface{}) {}

type mockConfig struct {
	maxFileSize int64
	threshold   int64
}

func (c *mockConfig) GetServerPort() string { return "8080" }
func (c *mockConfig) GetMaxFileSize() int64 { return c.maxFileSize }
func (c *mockConfig) GetLogLevel() string { return "error" }
func (c *mockConfig) GetCompressionThreshold() int64 { return c.threshold }
func (c *mockConfig) GetMinGainPrimary() float64 { return 5.0 }
func (c *mockConfig) GetMinGainFallback() float64 { return 1.0 }
func (c *mockConfig) GetPrimaryEngine() string { return "unipdf" }
func (c *mockConfig) GetFallbackEngine() string { return "pdfcpu" }
func (c *mockConfig) GetImageQuality() int { return 75 }
func (c *mockConfig) GetImageMaxWidth() int { return 0 }
func (c *mockConfig) GetImageMaxHeight() int { return 0 }
func (c *mockConfig) GetRemoveMetadata() bool { return true }
func (c *mockConfig) GetUniPDFLicenseKey() string { return "" }
func (c *mockConfig) GetSupabaseURL() string { return "" }
func (c *mockConfig) GetSupabaseKey() string { return "" }

type MockCompressionService struct {
	threshold     int64
	result        *domain.CompressionResult
	compressCalls int
	lastOverrides *domain.ConfigOverrides
}

func (m *MockCompressionService) NeedsCompression(size int64) bool {
	return size > m.threshold
}

func (m *MockCompressionService) SkippedResult(size int64) *domain.CompressionResult {
	return &domain.CompressionResult{
		Success:        true,
		Skipped:        true,
		Method:         domain.MethodSkipped,
		Reason:         "below threshold",
		OriginalSize:   size,
		CompressedSize: size,
	}
}

func (m *MockCompressionService) Compress(ctx context.Context, data []byte, overrides *domain.ConfigOverrides) *domain.CompressionResult {
	return m.CompressWithProgress(ctx, data, overrides, nil)
}

func (m *MockCompressionService) CompressWithProgress(ctx context.Context, data []byte, overrides *domain.ConfigOverrides, sink domain.ProgressSink) *domain.CompressionResult {
	m.compressCalls++
	m.lastOverrides = overrides
	return m.result
}

type MockJobRepository struct {
	recorded  []*domain.CompressionJob
	lastToken string
}

func (m *MockJobRepository) Record(job *domain.CompressionJob, token string) error {
	m.recorded = append(m.recorded, job)
	m.lastToken = token
	return nil
}

func (m *MockJobRepository) Recent(limit int, token string) ([]*domain.CompressionJob, error) {
	m.lastToken = token
	if limit > len(m.recorded) {
		limit = len(m.recorded)
	}
	return m.recorded[:limit], nil
}

// multipartUpload builds a multipart request body with a single file field.
func multipartUpload(t *testing.T, filename, contentType string, data []byte, extraFields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create form part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form part: %v", err)
	}
	for key, value := range extraFields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func pdfPayload(size int) []byte {
	data := make([]byte, size)
	copy(data, "%PDF-1.7\n")
	return data
}

func newTestCompressHandler(svc *MockCompressionService, jobs *MockJobRepository) *CompressHandler {
	streams := service.NewStreamCompressor(svc, 1<<20, &mockLogger{})
	return NewCompressHandler(streams, jobs, &mockConfig{maxFileSize: 1 << 20, threshold: 100}, &mockLogger{})
}

func TestCompressDocument_Success(t *testing.T) {
	service := &MockCompressionService{
		threshold: 100,
		result: &domain.CompressionResult{
			Success:          true,
			Compressed:       true,
			Buffer:           []byte("%PDF-compressed"),
			OriginalSize:     1000,
			CompressedSize:   500,
			CompressionRatio: 50,
			PagesProcessed:   10,
			Method:           domain.MethodPrimary,
		},
	}
	jobs := &MockJobRepository{}
	h := newTestCompressHandler(service, jobs)

	body, contentType := multipartUpload(t, "report.pdf", "application/pdf", pdfPayload(1000), nil)
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var result domain.CompressionResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Method != domain.MethodPrimary || !result.Compressed {
		t.Fatalf("unexpected result payload: %+v", result)
	}
	if service.compressCalls != 1 {
		t.Fatalf("expected exactly one pipeline call, got %d", service.compressCalls)
	}
	if len(jobs.recorded) != 1 {
		t.Fatalf("expected one job recorded, got %d", len(jobs.recorded))
	}
	if jobs.recorded[0].Filename != "report.pdf" || !jobs.recorded[0].Success {
		t.Fatalf("unexpected job record: %+v", jobs.recorded[0])
	}
}

func TestCompressDocument_SkippedBelowThreshold(t *testing.T) {
	service := &MockCompressionService{threshold: 10000}
	h := newTestCompressHandler(service, &MockJobRepository{})

	body, contentType := multipartUpload(t, "small.pdf", "application/pdf", pdfPayload(500), nil)
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var result domain.CompressionResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Skipped || result.Method != domain.MethodSkipped {
		t.Fatalf("expected skipped result, got %+v", result)
	}
	if service.compressCalls != 0 {
		t.Fatal("expected the pipeline to not run for a below-threshold upload")
	}
}

func TestCompressDocument_RejectsWrongContentType(t *testing.T) {
	service := &MockCompressionService{threshold: 100}
	h := newTestCompressHandler(service, &MockJobRepository{})

	body, contentType := multipartUpload(t, "notes.pdf", "text/plain", pdfPayload(1000), nil)
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status 415, got %d", rr.Code)
	}
	if service.compressCalls != 0 {
		t.Fatal("expected rejection before the pipeline runs")
	}
}

func TestCompressDocument_RejectsWrongExtension(t *testing.T) {
	service := &MockCompressionService{threshold: 100}
	h := newTestCompressHandler(service, &MockJobRepository{})

	body, contentType := multipartUpload(t, "archive.zip", "application/pdf", pdfPayload(1000), nil)
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status 415, got %d", rr.Code)
	}
}

func TestCompressDocument_RejectsNonPDFBytes(t *testing.T) {
	service := &MockCompressionService{threshold: 100}
	h := newTestCompressHandler(service, &MockJobRepository{})

	body, contentType := multipartUpload(t, "fake.pdf", "application/pdf", make([]byte, 1000), nil)
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status 415, got %d", rr.Code)
	}
	if service.compressCalls != 0 {
		t.Fatal("expected rejection before the pipeline runs")
	}
}

func TestCompressDocument_MissingFile(t *testing.T) {
	h := newTestCompressHandler(&MockCompressionService{threshold: 100}, &MockJobRepository{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.Close()
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCompressDocument_InvalidOptions(t *testing.T) {
	service := &MockCompressionService{threshold: 100}
	h := newTestCompressHandler(service, &MockJobRepository{})

	body, contentType := multipartUpload(t, "report.pdf", "application/pdf", pdfPayload(1000),
		map[string]string{"options": "{not json"})
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if service.compressCalls != 0 {
		t.Fatal("expected rejection before the pipeline runs")
	}
}

func TestCompressDocument_OptionsForwarded(t *testing.T) {
	service := &MockCompressionService{
		threshold: 100,
		result:    &domain.CompressionResult{Success: true, Method: domain.MethodPrimary},
	}
	h := newTestCompressHandler(service, &MockJobRepository{})

	body, contentType := multipartUpload(t, "report.pdf", "application/pdf", pdfPayload(1000),
		map[string]string{"options": `{"image_quality":30,"remove_metadata":false}`})
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if service.lastOverrides == nil {
		t.Fatal("expected overrides forwarded to the pipeline")
	}
	if service.lastOverrides.ImageQuality == nil || *service.lastOverrides.ImageQuality != 30 {
		t.Fatalf("expected image quality override 30, got %v", service.lastOverrides.ImageQuality)
	}
	if service.lastOverrides.RemoveMetadata == nil || *service.lastOverrides.RemoveMetadata {
		t.Fatal("expected metadata removal override false")
	}
}

func TestCompressDocument_FailureMapsTo422(t *testing.T) {
	service := &MockCompressionService{
		threshold: 100,
		result: &domain.CompressionResult{
			Success: false,
			Method:  domain.MethodFailed,
			Reason:  "both compression paths failed",
		},
	}
	jobs := &MockJobRepository{}
	h := newTestCompressHandler(service, jobs)

	body, contentType := multipartUpload(t, "broken.pdf", "application/pdf", pdfPayload(1000), nil)
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
	// Failures are still recorded in job history.
	if len(jobs.recorded) != 1 || jobs.recorded[0].Success {
		t.Fatalf("expected a failed job record, got %+v", jobs.recorded)
	}
}

func TestCompressDocument_BinaryMode(t *testing.T) {
	service := &MockCompressionService{
		threshold: 100,
		result: &domain.CompressionResult{
			Success:          true,
			Compressed:       true,
			Buffer:           []byte("%PDF-compressed-bytes"),
			CompressionRatio: 42.5,
			Method:           domain.MethodPrimary,
		},
	}
	h := newTestCompressHandler(service, &MockJobRepository{})

	body, contentType := multipartUpload(t, "report.pdf", "application/pdf", pdfPayload(1000), nil)
	req := httptest.NewRequest("POST", "/api/v1/compress?mode=binary", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", got)
	}
	if got := rr.Header().Get("X-Compression-Method"); got != "primary" {
		t.Fatalf("expected method header primary, got %s", got)
	}
	if !bytes.Equal(rr.Body.Bytes(), service.result.Buffer) {
		t.Fatal("expected raw compressed bytes in the response body")
	}
}

func TestCompressDocument_OversizeUpload(t *testing.T) {
	svc := &MockCompressionService{threshold: 100}
	streams := service.NewStreamCompressor(svc, 64, &mockLogger{})
	h := NewCompressHandler(streams, &MockJobRepository{}, &mockConfig{maxFileSize: 64, threshold: 10}, &mockLogger{})

	body, contentType := multipartUpload(t, "big.pdf", "application/pdf", pdfPayload(200), nil)
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
	if svc.compressCalls != 0 {
		t.Fatal("expected rejection before the pipeline runs")
	}
}

func TestCompressDocument_EmptyFile(t *testing.T) {
	svc := &MockCompressionService{threshold: 100}
	h := newTestCompressHandler(svc, &MockJobRepository{})

	body, contentType := multipartUpload(t, "empty.pdf", "application/pdf", nil, nil)
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if svc.compressCalls != 0 {
		t.Fatal("expected rejection before the pipeline runs")
	}
}

func TestCompressDocument_CallerTokenScopesJobRecord(t *testing.T) {
	svc := &MockCompressionService{
		threshold: 100,
		result:    &domain.CompressionResult{Success: true, Method: domain.MethodPrimary},
	}
	jobs := &MockJobRepository{}
	h := newTestCompressHandler(svc, jobs)

	body, contentType := multipartUpload(t, "report.pdf", "application/pdf", pdfPayload(1000), nil)
	req := httptest.NewRequest("POST", "/api/v1/compress", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(context.WithValue(req.Context(), tokenContextKey, "caller-jwt"))
	rr := httptest.NewRecorder()

	h.CompressDocument(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(jobs.recorded) != 1 {
		t.Fatalf("expected one job recorded, got %d", len(jobs.recorded))
	}
	if jobs.lastToken != "caller-jwt" {
		t.Fatalf("expected the caller token forwarded to the repository, got %q", jobs.lastToken)
	}
}
