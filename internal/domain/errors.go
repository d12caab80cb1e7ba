package domain

import "errors"

// Common errors used throughout the application.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Access credential errors.
var (
	ErrMissingFields        = errors.New("missing required fields")
	ErrAlreadyConsumed      = errors.New("credential already used")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidConfiguration = errors.New("credential has no valid duration")
	ErrStoreUnavailable     = errors.New("credential store unavailable")
)

// Error codes for standardized API error responses.
const (
	ErrCodePreconditionFailed = "PRECONDITION_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"

	ErrCodeMissingFields        = "MISSING_FIELDS"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeAlreadyConsumed      = "ALREADY_CONSUMED"
	ErrCodeInvalidConfiguration = "INVALID_CONFIGURATION"
	ErrCodeRateLimited          = "RATE_LIMITED"
)

// StandardError represents a standardized error response from the API.
type StandardError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StandardErrorResponse wraps a StandardError for JSON responses.
type StandardErrorResponse struct {
	Error StandardError `json:"error"`
}

// APIError represents an error response from the admin API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// AccessError is the body returned by the public access endpoints.
type AccessError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
