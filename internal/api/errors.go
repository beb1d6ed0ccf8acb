package api

import (
	"errors"
	"net/http"

	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/generation"
	"github.com/owlingo/owlingo-api/internal/provider"
	"github.com/owlingo/owlingo-api/internal/ratelimit"
	"github.com/owlingo/owlingo-api/internal/structured"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes.
// This prevents leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	var quotaErr *ratelimit.QuotaError
	var capErr *ratelimit.ItemCapError
	var aggErr *provider.AggregateError
	var provErr *provider.Error

	switch {
	// Quota errors
	case errors.As(err, &quotaErr):
		return http.StatusTooManyRequests

	// Request validation errors
	case errors.As(err, &capErr),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnknownSkill),
		errors.Is(err, domain.ErrUnknownFormat),
		errors.Is(err, domain.ErrUnknownDifficulty),
		errors.Is(err, domain.ErrNoContentSource),
		errors.Is(err, domain.ErrAmbiguousContentSource),
		errors.Is(err, domain.ErrItemCountOutOfRange),
		errors.Is(err, generation.ErrUnsupportedPair):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, generation.ErrSourceNotFound):
		return http.StatusNotFound

	// Provider responded but nothing usable survived
	case errors.Is(err, generation.ErrNoValidItems):
		return http.StatusUnprocessableEntity

	// Provider chain failures
	case errors.Is(err, structured.ErrInvalidResponse),
		errors.As(err, &aggErr),
		errors.As(err, &provErr):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var quotaErr *ratelimit.QuotaError
	var capErr *ratelimit.ItemCapError
	var aggErr *provider.AggregateError
	var provErr *provider.Error

	switch {
	case errors.As(err, &quotaErr):
		// Quota numbers are the caller's own; surfacing them is safe and
		// saves a round-trip to the usage endpoint.
		return quotaErr.Error()

	case errors.As(err, &capErr):
		return capErr.Error()

	case errors.Is(err, domain.ErrUnknownSkill):
		return "Unknown skill"
	case errors.Is(err, domain.ErrUnknownFormat):
		return "Unknown format"
	case errors.Is(err, domain.ErrUnknownDifficulty):
		return "Difficulty must be one of auto, easy, medium, hard"
	case errors.Is(err, domain.ErrNoContentSource):
		return "Provide either a book reference or source text"
	case errors.Is(err, domain.ErrAmbiguousContentSource):
		return "Provide either a book reference or source text, not both"
	case errors.Is(err, domain.ErrItemCountOutOfRange):
		return "Requested item count is out of range for the format"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"
	case errors.Is(err, generation.ErrUnsupportedPair):
		return "Unsupported skill and format combination"

	case errors.Is(err, generation.ErrSourceNotFound):
		return "Content source not found"

	case errors.Is(err, generation.ErrNoValidItems):
		return "Generation produced no usable items, please try again"

	case errors.Is(err, structured.ErrInvalidResponse),
		errors.As(err, &aggErr),
		errors.As(err, &provErr):
		return "Content generation is temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}
