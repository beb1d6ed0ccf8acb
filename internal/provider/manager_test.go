package provider

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlingo/owlingo-api/internal/usage"
)

// fakeLLM scripts per-call outcomes: each call pops the next response.
type fakeLLM struct {
	name    string
	calls   int
	results []fakeResult
}

type fakeResult struct {
	raw json.RawMessage
	err error
}

func (f *fakeLLM) Name() string { return f.name }

func (f *fakeLLM) GenerateStructured(ctx context.Context, prompt Prompt, schema json.RawMessage, opts GenerationOptions) (*GenerationResult, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	r := f.results[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &GenerationResult{
		Provider: f.name,
		Model:    "fake-model",
		Raw:      r.raw,
		Usage:    TokenUsage{InputTokens: 10, OutputTokens: 20},
	}, nil
}

func newTestManager(t *testing.T, sink *usage.MemorySink, providers ...LLMProvider) *Manager {
	t.Helper()
	m, err := NewManager(providers, usage.NewTracker(sink, nil), nil)
	require.NoError(t, err)
	m.baseDelay = time.Millisecond
	return m
}

func testMeta() CallMeta {
	return CallMeta{TeacherID: uuid.New(), Operation: "listening_quiz"}
}

func TestGenerateStructuredPrimarySuccessSkipsFallback(t *testing.T) {
	primary := &fakeLLM{name: "openai", results: []fakeResult{{raw: json.RawMessage(`{"ok":true}`)}}}
	fallback := &fakeLLM{name: "gemini", results: []fakeResult{{raw: json.RawMessage(`{}`)}}}
	sink := usage.NewMemorySink()
	m := newTestManager(t, sink, primary, fallback)

	res, err := m.GenerateStructured(context.Background(), testMeta(), Prompt{User: "go"}, nil, GenerationOptions{})
	require.NoError(t, err)

	assert.Equal(t, "openai", res.Provider)
	assert.Equal(t, 0, fallback.calls, "fallback must never be invoked when primary succeeds")

	entries := sink.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Success)
}

func TestGenerateStructuredAllProvidersFail(t *testing.T) {
	primary := &fakeLLM{name: "openai", results: []fakeResult{
		{err: &Error{Provider: "openai", Kind: KindQuotaExceeded}},
	}}
	fallback := &fakeLLM{name: "gemini", results: []fakeResult{
		{err: &Error{Provider: "gemini", Kind: KindContentFilter}},
	}}
	m := newTestManager(t, usage.NewMemorySink(), primary, fallback)

	_, err := m.GenerateStructured(context.Background(), testMeta(), Prompt{User: "go"}, nil, GenerationOptions{})

	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, []string{"openai", "gemini"}, agg.Providers(),
		"aggregate must list exactly the configured providers in configured order")
	assert.Equal(t, KindQuotaExceeded, agg.Failures[0].Kind)
	assert.Equal(t, KindContentFilter, agg.Failures[1].Kind)
}

func TestGenerateStructuredAuthErrorSkipsRetry(t *testing.T) {
	primary := &fakeLLM{name: "openai", results: []fakeResult{
		{err: &Error{Provider: "openai", Kind: KindAuthentication}},
	}}
	fallback := &fakeLLM{name: "gemini", results: []fakeResult{{raw: json.RawMessage(`{"ok":1}`)}}}
	sink := usage.NewMemorySink()
	m := newTestManager(t, sink, primary, fallback)

	res, err := m.GenerateStructured(context.Background(), testMeta(), Prompt{User: "go"}, nil, GenerationOptions{MaxRetries: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls, "authentication errors must not be retried")
	assert.Equal(t, "gemini", res.Provider)

	entries := sink.Entries()
	require.Len(t, entries, 2, "one usage entry per attempt")
	assert.Equal(t, "openai", entries[0].Provider)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "gemini", entries[1].Provider)
	assert.True(t, entries[1].Success)
}

func TestGenerateStructuredRetriesTransientErrors(t *testing.T) {
	primary := &fakeLLM{name: "openai", results: []fakeResult{
		{err: &Error{Provider: "openai", Kind: KindConnection}},
		{err: &Error{Provider: "openai", Kind: KindTimeout}},
		{raw: json.RawMessage(`{"ok":true}`)},
	}}
	sink := usage.NewMemorySink()
	m := newTestManager(t, sink, primary)

	res, err := m.GenerateStructured(context.Background(), testMeta(), Prompt{User: "go"}, nil, GenerationOptions{MaxRetries: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, "openai", res.Provider)
	assert.Len(t, sink.Entries(), 3, "every retry is an attempt with its own usage entry")
}

func TestGenerateStructuredExhaustsRetriesThenFallsBack(t *testing.T) {
	primary := &fakeLLM{name: "openai", results: []fakeResult{
		{err: &Error{Provider: "openai", Kind: KindConnection}},
	}}
	fallback := &fakeLLM{name: "gemini", results: []fakeResult{{raw: json.RawMessage(`{}`)}}}
	m := newTestManager(t, usage.NewMemorySink(), primary, fallback)

	res, err := m.GenerateStructured(context.Background(), testMeta(), Prompt{User: "go"}, nil, GenerationOptions{MaxRetries: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, primary.calls, "initial attempt plus two retries")
	assert.Equal(t, "gemini", res.Provider)
}

func TestGenerateStructuredCancellationStopsScheduling(t *testing.T) {
	primary := &fakeLLM{name: "openai", results: []fakeResult{
		{err: &Error{Provider: "openai", Kind: KindConnection}},
	}}
	fallback := &fakeLLM{name: "gemini", results: []fakeResult{{raw: json.RawMessage(`{}`)}}}
	m := newTestManager(t, usage.NewMemorySink(), primary, fallback)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.GenerateStructured(ctx, testMeta(), Prompt{User: "go"}, nil, GenerationOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestGenerateValidatedRejectionFallsBack(t *testing.T) {
	primary := &fakeLLM{name: "openai", results: []fakeResult{{raw: json.RawMessage(`{"bad":1}`)}}}
	fallback := &fakeLLM{name: "gemini", results: []fakeResult{{raw: json.RawMessage(`{"ok":1}`)}}}
	sink := usage.NewMemorySink()
	m := newTestManager(t, sink, primary, fallback)

	wantErr := assert.AnError
	validate := func(raw json.RawMessage) error {
		if string(raw) == `{"bad":1}` {
			return wantErr
		}
		return nil
	}

	res, err := m.GenerateValidated(context.Background(), testMeta(), Prompt{User: "go"}, nil, GenerationOptions{MaxRetries: 3}, validate)
	require.NoError(t, err)

	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, 1, primary.calls, "a rejected payload must not be retried on the same provider")

	// The rejected attempt is audited as a failure with its real token counts.
	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Success)
	assert.Equal(t, 10, entries[0].InputTokens)
	assert.Equal(t, 20, entries[0].OutputTokens)
	assert.True(t, entries[1].Success)
}

func TestGenerateValidatedRejectionExhaustsChain(t *testing.T) {
	primary := &fakeLLM{name: "openai", results: []fakeResult{{raw: json.RawMessage(`{"bad":1}`)}}}
	m := newTestManager(t, usage.NewMemorySink(), primary)

	_, err := m.GenerateValidated(context.Background(), testMeta(), Prompt{User: "go"}, nil,
		GenerationOptions{}, func(json.RawMessage) error { return assert.AnError })

	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Failures, 1)
	assert.Equal(t, KindResponse, agg.Failures[0].Kind)
	assert.ErrorIs(t, err, assert.AnError, "the validation cause must stay reachable through the aggregate")
}

func TestProviderErrorTransience(t *testing.T) {
	transient := []ErrorKind{KindConnection, KindTimeout, KindRateLimit}
	terminal := []ErrorKind{KindAuthentication, KindResponse, KindContentFilter, KindQuotaExceeded, KindModelNotFound}

	for _, k := range transient {
		assert.True(t, (&Error{Kind: k}).Transient(), "kind %s", k)
	}
	for _, k := range terminal {
		assert.False(t, (&Error{Kind: k}).Transient(), "kind %s", k)
	}
}
