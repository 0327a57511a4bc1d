package config

import (
	"pdf-compressor/internal/domain"
	"pdf-compressor/internal/imaging"
	"pdf-compressor/internal/pdf"
	"pdf-compressor/internal/repository"
	"pdf-compressor/internal/service"
	"pdf-compressor/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config             domain.Config
	Logger             domain.Logger
	SupabaseClient     domain.SupabaseClient
	JobRepository      domain.JobRepository
	ImageOptimizer     domain.ImageOptimizer
	CompressionService domain.CompressionService
	StreamCompressor   domain.StreamCompressor
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Supabase is optional; the service runs standalone with in-memory
	// job history when it is not configured.
	var supabaseClient domain.SupabaseClient
	if config.GetSupabaseURL() != "" && config.GetSupabaseKey() != "" {
		client := repository.NewSupabaseClient(config, appLogger)
		if err := client.Initialize(); err != nil {
			appLogger.Warn("Supabase client initialization failed, falling back to in-memory history", "error", err)
		} else {
			supabaseClient = client
		}
	}

	var jobRepo domain.JobRepository
	if supabaseClient != nil {
		jobRepo = repository.NewSupabaseJobRepository(supabaseClient, appLogger)
	} else {
		jobRepo = repository.NewMemoryJobRepository(repository.DefaultHistorySize)
	}

	primaryEngine := pdf.NewEngine(config.GetPrimaryEngine(), config, appLogger)
	fallbackEngine := pdf.NewEngine(config.GetFallbackEngine(), config, appLogger)

	compressionService := service.NewCompressionService(
		primaryEngine,
		fallbackEngine,
		service.NewNoopPageOptimizer(),
		config,
		appLogger,
	)

	return &Container{
		Config:             config,
		Logger:             appLogger,
		SupabaseClient:     supabaseClient,
		JobRepository:      jobRepo,
		ImageOptimizer:     imaging.NewOptimizer(appLogger),
		CompressionService: compressionService,
		StreamCompressor:   service.NewStreamCompressor(compressionService, config.GetMaxFileSize(), appLogger),
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// GetSupabaseClient returns the Supabase client instance (nil when not configured)
func (c *Container) GetSupabaseClient() domain.SupabaseClient {
	return c.SupabaseClient
}

// GetJobRepository returns the job history repository instance
func (c *Container) GetJobRepository() domain.JobRepository {
	return c.JobRepository
}

// GetImageOptimizer returns the standalone image optimizer instance
func (c *Container) GetImageOptimizer() domain.ImageOptimizer {
	return c.ImageOptimizer
}

// GetCompressionService returns the compression pipeline instance
func (c *Container) GetCompressionService() domain.CompressionService {
	return c.CompressionService
}

// GetStreamCompressor returns the stream adapter over the pipeline
func (c *Container) GetStreamCompressor() domain.StreamCompressor {
	return c.StreamCompressor
}
