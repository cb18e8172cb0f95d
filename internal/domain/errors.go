package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for different failure scenarios
const (
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeServiceDegraded    = "EXTERNAL_SERVICE_DEGRADED"
	ErrCodeConfigurationGap   = "CONFIGURATION_GAP"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrCodeRateLimit          = "RATE_LIMIT_EXCEEDED"
)

// ErrServiceUnavailable marks a risk-classifier failure. It is fatal to
// the admission attempt and must be surfaced to the caller; the engine
// never retries it.
var ErrServiceUnavailable = errors.New("risk classification service unavailable")

// TriageError is the standardized error response shape surfaced by the
// engine's own logic. User-visible failures are always explicit and
// typed, never a silent empty result masquerading as success.
type TriageError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *TriageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewTriageError creates a new TriageError with timestamp
func NewTriageError(code, message, details, requestID string) *TriageError {
	return &TriageError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// DegradedServiceError marks an explanation-service failure or timeout.
// It is recovered locally: the caller falls back to the rule-based
// reasoning text and logs the degradation. Never fatal.
type DegradedServiceError struct {
	Service string
	Err     error
}

// Error implements the error interface
func (e *DegradedServiceError) Error() string {
	return fmt.Sprintf("external service %s degraded: %v", e.Service, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *DegradedServiceError) Unwrap() error {
	return e.Err
}

// ConfigurationGapError marks an unknown department name encountered at
// routing time. It is recovered by routing to a default department; the
// gap is logged, not raised.
type ConfigurationGapError struct {
	Department string
}

// Error implements the error interface
func (e *ConfigurationGapError) Error() string {
	return fmt.Sprintf("unknown department %q in routing configuration", e.Department)
}
