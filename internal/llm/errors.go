package llm

import (
	"fmt"
	"unicode/utf8"

	"mediguard/internal/domain"
)

// UpstreamError is a failed call to the completion provider.
// StatusCode is 0 when no HTTP response was received.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Unwrap exposes both the taxonomy sentinel and the transport cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrUpstreamFailure}
	}
	return []error{domain.ErrUpstreamFailure, e.Err}
}

// NewUpstreamError builds an UpstreamError from an HTTP response body.
func NewUpstreamError(provider string, status int, body []byte) *UpstreamError {
	return &UpstreamError{Provider: provider, StatusCode: status, Body: Truncate(string(body), 2000)}
}

// RateLimitError indicates the provider returned HTTP 429.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps the upstream error of a 429 response.
func NewRateLimitError(provider string, err error) *RateLimitError {
	return &RateLimitError{Provider: provider, Err: err}
}

// ErrEmptyAnswer is returned when the provider responds without any content.
var ErrEmptyAnswer = fmt.Errorf("%w: empty answer", domain.ErrUpstreamFailure)

// Truncate shortens s to at most maxLen bytes for logging without splitting
// a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
