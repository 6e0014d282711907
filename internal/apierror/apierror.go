// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewValidation uses the generic form message when msg is empty.
func NewValidation(msg string, fields map[string]string) *ValidationError {
	if msg == "" {
		msg = "Vennligst fyll ut alle felt"
	}
	return &ValidationError{Detail: msg, Fields: fields}
}

// ResetError reports the stage at which a reset was aborted.
type ResetError struct {
	Detail string `json:"detail"`
	Stage  string `json:"stage"`
}

func NewReset(msg, stage string) *ResetError {
	return &ResetError{Detail: msg, Stage: stage}
}
