package domain

import (
	"fmt"
	"time"
)

// Error codes for API failure responses.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeStorage       = "STORAGE_ERROR"
	ErrCodeExternalAPI   = "EXTERNAL_API_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeInternal      = "INTERNAL_SERVER_ERROR"
)

// ValidationError reports a malformed or out-of-range input field. It is
// always returned before any computation begins; no partial result
// accompanies it.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ConfigurationError reports a weight, rate, or threshold outside its
// declared range. It is raised at config load time, but the engines also
// re-validate defensively since configuration is untrusted input.
type ConfigurationError struct {
	Setting string      `json:"setting"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for setting '%s': %s", e.Setting, e.Message)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(setting, message string, value interface{}) *ConfigurationError {
	return &ConfigurationError{
		Setting: setting,
		Message: message,
		Value:   value,
	}
}

// APIError is the standardized error payload returned by the REST layer.
type APIError struct {
	Code          string    `json:"code"`
	Message       string    `json:"message"`
	Details       string    `json:"details,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new APIError with a UTC timestamp.
func NewAPIError(code, message, details, correlationID string) *APIError {
	return &APIError{
		Code:          code,
		Message:       message,
		Details:       details,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}
