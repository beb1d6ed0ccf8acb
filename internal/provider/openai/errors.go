package openai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/owlingo/owlingo-api/internal/provider"
)

// mapError translates go-openai errors into the shared taxonomy. Callers of
// the provider never see vendor error types.
func mapError(providerName string, err error) *provider.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.Error{Provider: providerName, Kind: provider.KindTimeout, Message: "request timed out", Cause: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := provider.KindResponse
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = provider.KindAuthentication
		case http.StatusTooManyRequests:
			kind = provider.KindRateLimit
			if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
				kind = provider.KindQuotaExceeded
			}
		case http.StatusNotFound:
			kind = provider.KindModelNotFound
		case http.StatusBadRequest:
			if code, ok := apiErr.Code.(string); ok && strings.Contains(code, "content") {
				kind = provider.KindContentFilter
			}
		default:
			if apiErr.HTTPStatusCode >= 500 {
				kind = provider.KindConnection
			}
		}
		return &provider.Error{Provider: providerName, Kind: kind, Message: apiErr.Message, Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		kind := provider.KindConnection
		if netErr.Timeout() {
			kind = provider.KindTimeout
		}
		return &provider.Error{Provider: providerName, Kind: kind, Message: "network failure", Cause: err}
	}

	return &provider.Error{Provider: providerName, Kind: provider.KindConnection, Message: err.Error(), Cause: err}
}
