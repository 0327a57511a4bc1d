package handler

import (
	"net/http"

	"pdf-compressor/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-compressor"}`))
	}).Methods("GET")

	// Initialize handlers
	compressHandler := NewCompressHandler(
		container.GetStreamCompressor(),
		container.GetJobRepository(),
		container.GetConfig(),
		container.GetLogger(),
	)
	imageHandler := NewImageHandler(
		container.GetImageOptimizer(),
		container.GetConfig(),
		container.GetLogger(),
	)
	jobHandler := NewJobHandler(
		container.GetJobRepository(),
		container.GetLogger(),
	)

	// Auth is only enforced when Supabase credentials are configured;
	// without them the service runs open, suitable for internal use.
	if container.GetSupabaseClient() != nil {
		api.Use(AuthMiddleware(container))
	}

	api.HandleFunc("/compress", compressHandler.CompressDocument).Methods("POST")
	api.HandleFunc("/images/compress", imageHandler.CompressImage).Methods("POST")
	api.HandleFunc("/jobs", jobHandler.ListJobs).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Compression-Method",
			"X-Compression-Ratio",
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
