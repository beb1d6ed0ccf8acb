package provider

import (
	"context"
	"encoding/json"
	"time"
)

// Prompt is the pair of messages sent to an LLM provider.
type Prompt struct {
	System string
	User   string
}

// GenerationOptions tune a single structured generation call. They are
// immutable per call; zero values fall back to the manager's defaults.
type GenerationOptions struct {
	Temperature     float32
	MaxOutputTokens int

	// Timeout bounds each individual provider attempt, not the whole call.
	Timeout time.Duration

	// MaxRetries caps retries of transient errors per provider before the
	// manager falls back to the next one.
	MaxRetries int
}

// TokenUsage is the token accounting of one LLM attempt. It feeds the cost
// calculator and is attached 1:1 to a GenerationResult.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// GenerationResult is produced once per successful LLM attempt and never
// mutated afterwards. Raw holds the provider's structured payload, already
// stripped of any markdown fencing but not yet schema-validated.
type GenerationResult struct {
	Provider string
	Model    string
	Raw      json.RawMessage
	Usage    TokenUsage
	Latency  time.Duration
}

// LLMProvider is the capability contract of a language generation vendor.
// Implementations are stateless across calls except for held connection and
// credential state, and must translate vendor errors into this package's
// error taxonomy.
type LLMProvider interface {
	// Name identifies the provider in usage logs and aggregate errors.
	Name() string

	// GenerateStructured asks the vendor for a single JSON object conforming
	// to the given JSON-schema document. The schema is advisory for vendors
	// without native structured output; validation happens upstream.
	GenerateStructured(ctx context.Context, prompt Prompt, schema json.RawMessage, opts GenerationOptions) (*GenerationResult, error)
}

// SynthesisOptions tune a single speech synthesis call.
type SynthesisOptions struct {
	// Speed is the playback rate multiplier; 0 means the vendor default.
	Speed float64

	// Timeout bounds each individual provider attempt.
	Timeout time.Duration

	// MaxRetries caps retries of transient errors per provider.
	MaxRetries int
}

// AudioUsage is the character accounting of one synthesis attempt.
type AudioUsage struct {
	Characters int `json:"characters"`
}

// AudioResult is produced once per successful synthesis attempt.
type AudioResult struct {
	Provider string
	Audio    []byte
	// MIMEType of the audio payload, e.g. "audio/mpeg".
	MIMEType string
	Usage    AudioUsage
	Latency  time.Duration
}

// TTSProvider is the capability contract of a speech synthesis vendor.
type TTSProvider interface {
	Name() string
	Synthesize(ctx context.Context, text, voice string, opts SynthesisOptions) (*AudioResult, error)
}
