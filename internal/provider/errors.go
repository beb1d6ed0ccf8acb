package provider

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies a provider failure. Vendor adapters translate raw
// vendor errors into exactly one kind; callers never see vendor exceptions.
type ErrorKind string

// The shared provider error taxonomy.
const (
	// KindConnection covers network-level failures reaching the vendor.
	KindConnection ErrorKind = "connection"

	// KindAuthentication covers invalid or expired credentials.
	KindAuthentication ErrorKind = "authentication"

	// KindRateLimit covers vendor-side throttling (HTTP 429 and kin).
	KindRateLimit ErrorKind = "rate_limit"

	// KindTimeout covers attempts exceeding their time bound.
	KindTimeout ErrorKind = "timeout"

	// KindResponse covers malformed, empty or schema-violating payloads.
	KindResponse ErrorKind = "response"

	// KindContentFilter covers vendor safety-filter blocks.
	KindContentFilter ErrorKind = "content_filter"

	// KindQuotaExceeded covers exhausted vendor billing quota. Distinct from
	// the internal rate limiter's quota error.
	KindQuotaExceeded ErrorKind = "quota_exceeded"

	// KindModelNotFound covers requests against unknown or retired models.
	KindModelNotFound ErrorKind = "model_not_found"
)

// Error is the uniform provider failure. The manager folds these per attempt;
// an Error carries the provider that produced it so aggregate failures stay
// attributable.
type Error struct {
	Provider string
	Kind     ErrorKind
	Message  string

	// RetryAfter is an optional vendor hint for rate-limit errors.
	RetryAfter time.Duration

	// Cause is the underlying vendor error, kept for logs only.
	Cause error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Transient reports whether the failure may resolve on retry of the same
// provider. Authentication, content-filter, quota and model errors never do;
// retrying an identical prompt after a response error rarely changes an
// ill-formed payload either, so response errors go straight to fallback.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindConnection, KindTimeout, KindRateLimit:
		return true
	default:
		return false
	}
}

// AsProviderError extracts an *Error from err, wrapping foreign errors into
// the response kind so the taxonomy stays closed.
func AsProviderError(providerName string, err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Provider: providerName, Kind: KindResponse, Message: err.Error(), Cause: err}
}

// AggregateError is raised when every configured provider failed. Failures
// are ordered exactly as the providers were attempted.
type AggregateError struct {
	Failures []*Error
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("all providers failed: [%s]", strings.Join(parts, "; "))
}

// Unwrap exposes the per-provider failures so errors.Is and errors.As reach
// their causes.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Providers returns the names of the failed providers in attempt order.
func (e *AggregateError) Providers() []string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Provider
	}
	return names
}
