// Package gemini adapts Google's Gemini API to the provider contract.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/owlingo/owlingo-api/internal/provider"
)

// Config holds the Gemini connection settings.
type Config struct {
	APIKey string
	Model  string
}

// LLM implements provider.LLMProvider using the Gemini API.
type LLM struct {
	client *genai.Client
	model  string
}

// NewLLM creates a Gemini provider.
func NewLLM(ctx context.Context, cfg Config) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: model name is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &LLM{client: client, model: cfg.Model}, nil
}

// Name implements provider.LLMProvider.
func (l *LLM) Name() string { return "gemini" }

// GenerateStructured implements provider.LLMProvider. Gemini is asked for
// JSON output via the response MIME type; the schema document is carried in
// the system instruction.
func (l *LLM) GenerateStructured(ctx context.Context, prompt provider.Prompt, schema json.RawMessage, opts provider.GenerationOptions) (*provider.GenerationResult, error) {
	system := prompt.System
	if len(schema) > 0 {
		system = fmt.Sprintf("%s\n\nRespond with a single JSON object matching this JSON schema:\n%s", system, schema)
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxOutputTokens)
	}

	resp, err := l.client.Models.GenerateContent(ctx, l.model, genai.Text(prompt.User), config)
	if err != nil {
		return nil, mapError(l.Name(), err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &provider.Error{Provider: l.Name(), Kind: provider.KindResponse, Message: "no candidates in response"}
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, &provider.Error{Provider: l.Name(), Kind: provider.KindContentFilter, Message: "response blocked by safety filters"}
	}

	raw, err := provider.ExtractJSON(l.Name(), resp.Text())
	if err != nil {
		return nil, err
	}

	var tokens provider.TokenUsage
	if resp.UsageMetadata != nil {
		tokens = provider.TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	return &provider.GenerationResult{
		Provider: l.Name(),
		Model:    l.model,
		Raw:      raw,
		Usage:    tokens,
	}, nil
}

// mapError translates genai errors into the shared taxonomy.
func mapError(providerName string, err error) *provider.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.Error{Provider: providerName, Kind: provider.KindTimeout, Message: "request timed out", Cause: err}
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		kind := provider.KindResponse
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = provider.KindAuthentication
		case http.StatusTooManyRequests:
			kind = provider.KindRateLimit
		case http.StatusNotFound:
			kind = provider.KindModelNotFound
		default:
			if apiErr.Code >= 500 {
				kind = provider.KindConnection
			}
		}
		return &provider.Error{Provider: providerName, Kind: kind, Message: apiErr.Message, Cause: err}
	}

	return &provider.Error{Provider: providerName, Kind: provider.KindConnection, Message: err.Error(), Cause: err}
}
