package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidInput        = errors.New("invalid input")
	ErrServerConfiguration = errors.New("server configuration error")
	ErrUpstreamFailure     = errors.New("upstream model request failed")
	ErrMalformedAnalysis   = errors.New("malformed analysis")
	ErrGuestLimitReached   = errors.New("guest analysis limit reached")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrUnsupportedExport   = errors.New("unsupported export format")
)

// InputError is a client input problem whose message is safe to return verbatim.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// NewInputError creates an InputError with the given caller-facing message.
func NewInputError(msg string) error {
	return &InputError{Message: msg}
}

// MalformedAnalysisError reports which part of the model output failed validation.
type MalformedAnalysisError struct {
	Field  string
	Reason string
}

func (e *MalformedAnalysisError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed analysis: %s", e.Reason)
	}
	return fmt.Sprintf("malformed analysis: %s: %s", e.Field, e.Reason)
}

func (e *MalformedAnalysisError) Unwrap() error {
	return ErrMalformedAnalysis
}
