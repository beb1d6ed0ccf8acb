package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"github.com/owlingo/owlingo-api/internal/provider"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want provider.ErrorKind
	}{
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: provider.KindTimeout,
		},
		{
			name: "unauthorized",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"},
			want: provider.KindAuthentication,
		},
		{
			name: "rate limited",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
			want: provider.KindRateLimit,
		},
		{
			name: "billing quota exhausted",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Code: "insufficient_quota"},
			want: provider.KindQuotaExceeded,
		},
		{
			name: "unknown model",
			err:  &openai.APIError{HTTPStatusCode: http.StatusNotFound},
			want: provider.KindModelNotFound,
		},
		{
			name: "content policy",
			err:  &openai.APIError{HTTPStatusCode: http.StatusBadRequest, Code: "content_policy_violation"},
			want: provider.KindContentFilter,
		},
		{
			name: "server error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable},
			want: provider.KindConnection,
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: provider.KindConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := mapError("openai", tt.err)
			assert.Equal(t, tt.want, pe.Kind)
			assert.Equal(t, "openai", pe.Provider)
		})
	}
}
