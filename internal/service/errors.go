package service

import (
	"errors"
	"fmt"
)

// Sentinel errors; handlers translate them into HTTP status codes.
var (
	ErrProductNotFound    = errors.New("Produkt ikke funnet")
	ErrOutOfStock         = errors.New("Tomt på lager")
	ErrForbidden          = errors.New("Ingen tilgang")
	ErrUnauthenticated    = errors.New("Du må logge inn")
	ErrInvalidCredentials = errors.New("Feil e-post eller passord")
	ErrSessionExpired     = errors.New("Økten er utløpt, logg inn på nytt")
)

// ValidationError is returned for missing or unparseable input. Fields maps
// the offending input names to a short reason.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

const msgMissingFields = "Vennligst fyll ut alle felt"

func missingFields(fields map[string]string) *ValidationError {
	return &ValidationError{Message: msgMissingFields, Fields: fields}
}

func invalidField(msg, field, reason string) *ValidationError {
	return &ValidationError{Message: msg, Fields: map[string]string{field: reason}}
}

// BackendError wraps any failure of the store. Op is a short Norwegian
// description of what was being attempted.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *BackendError) Unwrap() error { return e.Err }

func backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

// ResetError names the stage at which a reset failed. The surrounding
// transaction is rolled back, so earlier stages are undone as well.
type ResetError struct {
	Stage string
	Err   error
}

func (e *ResetError) Error() string { return fmt.Sprintf("reset stage %s: %v", e.Stage, e.Err) }
func (e *ResetError) Unwrap() error { return e.Err }
