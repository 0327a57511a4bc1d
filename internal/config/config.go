package config

import (
	"os"
	"strconv"

	"pdf-compressor/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort  string
	MaxFileSize int64
	LogLevel    string

	// Threshold gate and minimum-gain floors. Documents at or below the
	// threshold are not compressed (strictly-greater-than policy).
	CompressionThreshold int64
	MinGainPrimary       float64
	MinGainFallback      float64

	PrimaryEngine  string
	FallbackEngine string

	ImageQuality   int
	ImageMaxWidth  int
	ImageMaxHeight int
	RemoveMetadata bool

	UniPDFLicenseKey string
	SupabaseURL      string
	SupabaseKey      string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	cfg := &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:  getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize: getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		CompressionThreshold: getEnvInt64OrDefault("COMPRESSION_THRESHOLD", 18*1024*1024), // 18MB default
		MinGainPrimary:       getEnvFloatOrDefault("MIN_GAIN_PRIMARY", 5.0),
		MinGainFallback:      getEnvFloatOrDefault("MIN_GAIN_FALLBACK", 1.0),

		PrimaryEngine:  getEnvOrDefault("COMPRESSION_ENGINE", "unipdf"),
		FallbackEngine: getEnvOrDefault("FALLBACK_ENGINE", "pdfcpu"),

		ImageQuality:   getEnvIntOrDefault("IMAGE_QUALITY", 75),
		ImageMaxWidth:  getEnvIntOrDefault("IMAGE_MAX_WIDTH", 0),
		ImageMaxHeight: getEnvIntOrDefault("IMAGE_MAX_HEIGHT", 0),
		RemoveMetadata: getEnvBoolOrDefault("REMOVE_METADATA", true),

		UniPDFLicenseKey: getEnvOrDefault("UNIDOC_LICENSE_API_KEY", ""),
		SupabaseURL:      getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:      getEnvOrDefault("SUPABASE_ANON_KEY", ""),
	}

	// The fallback floor must never exceed the primary floor; a fallback
	// result should not need a bigger gain than the full rebuild does.
	if cfg.MinGainFallback > cfg.MinGainPrimary {
		cfg.MinGainFallback = cfg.MinGainPrimary
	}

	return cfg
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed upload size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetCompressionThreshold returns the byte size above which documents are compressed
func (c *AppConfig) GetCompressionThreshold() int64 {
	return c.CompressionThreshold
}

// GetMinGainPrimary returns the primary-path minimum-gain floor in percent
func (c *AppConfig) GetMinGainPrimary() float64 {
	return c.MinGainPrimary
}

// GetMinGainFallback returns the fallback-path minimum-gain floor in percent
func (c *AppConfig) GetMinGainFallback() float64 {
	return c.MinGainFallback
}

// GetPrimaryEngine returns the document engine name for the primary path
func (c *AppConfig) GetPrimaryEngine() string {
	return c.PrimaryEngine
}

// GetFallbackEngine returns the document engine name for the fallback path
func (c *AppConfig) GetFallbackEngine() string {
	return c.FallbackEngine
}

// GetImageQuality returns the default image re-encode quality
func (c *AppConfig) GetImageQuality() int {
	return c.ImageQuality
}

// GetImageMaxWidth returns the default image downscale width bound
func (c *AppConfig) GetImageMaxWidth() int {
	return c.ImageMaxWidth
}

// GetImageMaxHeight returns the default image downscale height bound
func (c *AppConfig) GetImageMaxHeight() int {
	return c.ImageMaxHeight
}

// GetRemoveMetadata returns whether metadata scrubbing is on by default
func (c *AppConfig) GetRemoveMetadata() bool {
	return c.RemoveMetadata
}

// GetUniPDFLicenseKey returns the UniDoc license key, if configured
func (c *AppConfig) GetUniPDFLicenseKey() string {
	return c.UniPDFLicenseKey
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
