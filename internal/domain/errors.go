package domain

import "errors"

// Domain errors
var (
	ErrInvalidFile        = errors.New("invalid file")
	ErrEmptyDocument      = errors.New("empty document payload")
	ErrDocumentUnreadable = errors.New("document could not be loaded")
	ErrLicenseRequired    = errors.New("document engine requires a license key")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrEngineMismatch     = errors.New("page source belongs to a different engine")
	ErrPageOutOfRange     = errors.New("page index out of range")
	ErrCompressionFailed  = errors.New("compression failed")
	ErrPayloadTooLarge    = errors.New("payload exceeds size limit")
	ErrJobNotFound        = errors.New("compression job not found")
	ErrRepositoryDisabled = errors.New("job repository not configured")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
