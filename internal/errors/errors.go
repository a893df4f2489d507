package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// SearchError is the structured error type for provider failures.
// It carries the taxonomy kind, the provider that produced it, and
// optional context the health manager uses for cooldown decisions.
type SearchError struct {
	// Kind is the taxonomy classification.
	Kind Kind

	// Provider is the stable lowercase provider name.
	Provider string

	// Message is the human-readable error message.
	Message string

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// RetryAfter is the server-provided reset time for rate limits, if any.
	RetryAfter *time.Time

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Provider, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by kind.
// This enables errors.Is() to work with SearchError.
func (e *SearchError) Is(target error) bool {
	if t, ok := target.(*SearchError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SearchError) WithDetail(key, value string) *SearchError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithRetryAfter records the server-provided reset time.
// Returns the error for method chaining.
func (e *SearchError) WithRetryAfter(t time.Time) *SearchError {
	e.RetryAfter = &t
	return e
}

// New creates a new SearchError with the given kind, provider, and message.
func New(kind Kind, provider, message string) *SearchError {
	return &SearchError{
		Kind:     kind,
		Provider: provider,
		Message:  message,
	}
}

// Wrap creates a SearchError from an existing error.
// The error's message becomes the SearchError message.
func Wrap(kind Kind, provider string, err error) *SearchError {
	if err == nil {
		return nil
	}
	return &SearchError{
		Kind:     kind,
		Provider: provider,
		Message:  err.Error(),
		Cause:    err,
	}
}

// KindOf extracts the taxonomy kind from an error chain.
// Context deadline and timeout errors map to TIMEOUT; anything else
// unclassified falls back to API_ERROR.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindAPIError
}

// ProviderOf extracts the provider name from an error chain.
// Returns empty string if the error is not a SearchError.
func ProviderOf(err error) string {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Provider
	}
	return ""
}

// RetryAfterOf extracts the server-provided reset time, if present.
func RetryAfterOf(err error) *time.Time {
	var se *SearchError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return nil
}

// IsRetryable checks if an error is worth retrying against the same provider.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err).Retryable()
}

// FromHTTPStatus classifies an HTTP response status into a SearchError.
// Adapters call this after a non-2xx response; the message should carry
// whatever the provider returned in the body.
func FromHTTPStatus(provider string, status int, message string) *SearchError {
	switch {
	case status == http.StatusTooManyRequests:
		return New(KindRateLimit, provider, message)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return New(KindAuthentication, provider, message)
	case status == http.StatusPaymentRequired:
		return New(KindCreditExhausted, provider, message)
	case status >= 500:
		return New(KindProviderError, provider, message)
	case status >= 400:
		return New(KindInvalidInput, provider, message)
	default:
		return New(KindAPIError, provider, message)
	}
}
