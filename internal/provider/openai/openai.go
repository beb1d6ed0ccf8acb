// Package openai adapts OpenAI-compatible chat and speech endpoints to the
// provider contracts. The base URL is configurable, so the same adapter
// serves OpenAI proper and compatible gateways such as OpenRouter.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/owlingo/owlingo-api/internal/provider"
)

// Config holds the connection settings of one OpenAI-compatible endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LLM implements provider.LLMProvider against the chat completions API.
type LLM struct {
	client *openai.Client
	model  string
}

// NewLLM creates an OpenAI chat provider.
func NewLLM(cfg Config) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model name is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &LLM{client: openai.NewClientWithConfig(clientCfg), model: cfg.Model}, nil
}

// Name implements provider.LLMProvider.
func (l *LLM) Name() string { return "openai" }

// GenerateStructured implements provider.LLMProvider. The schema document is
// appended to the system message; JSON mode pins the output to a single
// object.
func (l *LLM) GenerateStructured(ctx context.Context, prompt provider.Prompt, schema json.RawMessage, opts provider.GenerationOptions) (*provider.GenerationResult, error) {
	system := prompt.System
	if len(schema) > 0 {
		system = fmt.Sprintf("%s\n\nRespond with a single JSON object matching this JSON schema:\n%s", system, schema)
	}

	req := openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		Temperature: opts.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if opts.MaxOutputTokens > 0 {
		req.MaxTokens = opts.MaxOutputTokens
	}

	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mapError(l.Name(), err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &provider.Error{Provider: l.Name(), Kind: provider.KindResponse, Message: "empty completion"}
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonContentFilter {
		return nil, &provider.Error{Provider: l.Name(), Kind: provider.KindContentFilter, Message: "completion blocked by content filter"}
	}

	raw, err := provider.ExtractJSON(l.Name(), resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &provider.GenerationResult{
		Provider: l.Name(),
		Model:    resp.Model,
		Raw:      raw,
		Usage: provider.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
