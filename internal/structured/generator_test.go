package structured

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlingo/owlingo-api/internal/provider"
	"github.com/owlingo/owlingo-api/internal/usage"
)

// cannedLLM returns a fixed raw payload and records the schema it was given.
type cannedLLM struct {
	name       string
	raw        string
	calls      int
	seenSchema json.RawMessage
}

func (c *cannedLLM) Name() string {
	if c.name != "" {
		return c.name
	}
	return "canned"
}

func (c *cannedLLM) GenerateStructured(_ context.Context, _ provider.Prompt, schema json.RawMessage, _ provider.GenerationOptions) (*provider.GenerationResult, error) {
	c.calls++
	c.seenSchema = schema
	return &provider.GenerationResult{
		Provider: c.Name(),
		Model:    "canned-1",
		Raw:      json.RawMessage(c.raw),
		Usage:    provider.TokenUsage{InputTokens: 10, OutputTokens: 20},
	}, nil
}

func newTestGenerator(t *testing.T, sink *usage.MemorySink, llms ...provider.LLMProvider) *Generator {
	t.Helper()
	tracker := usage.NewTracker(sink, slog.Default())
	mgr, err := provider.NewManager(llms, tracker, slog.Default())
	require.NoError(t, err)
	gen, err := NewGenerator(mgr, slog.Default())
	require.NoError(t, err)
	return gen
}

func TestGeneratorValidResponse(t *testing.T) {
	t.Parallel()

	llm := &cannedLLM{raw: `{"title": "Greetings"}`}
	gen := newTestGenerator(t, usage.NewMemorySink(), llm)

	schema := &Schema{Fields: []Field{{Name: "title", Type: TypeString, Required: true}}}
	meta := provider.CallMeta{TeacherID: uuid.New(), Operation: "test"}

	obj, res, err := gen.Generate(context.Background(), meta, provider.Prompt{User: "go"}, schema, provider.GenerationOptions{Timeout: time.Second})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Greetings", obj.String("title"))
	assert.Equal(t, "canned", res.Provider)

	// The rendered schema document reaches the provider.
	var doc map[string]any
	require.NoError(t, json.Unmarshal(llm.seenSchema, &doc))
	assert.Equal(t, "object", doc["type"])
}

func TestGeneratorValidationFailureFallsBack(t *testing.T) {
	t.Parallel()

	primary := &cannedLLM{name: "primary", raw: `{"wrong_field": 1}`}
	fallback := &cannedLLM{name: "fallback", raw: `{"title": "Greetings"}`}
	sink := usage.NewMemorySink()
	gen := newTestGenerator(t, sink, primary, fallback)

	schema := &Schema{Fields: []Field{{Name: "title", Type: TypeString, Required: true}}}
	meta := provider.CallMeta{TeacherID: uuid.New(), Operation: "test"}

	obj, res, err := gen.Generate(context.Background(), meta, provider.Prompt{User: "go"}, schema, provider.GenerationOptions{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "Greetings", obj.String("title"))
	assert.Equal(t, "fallback", res.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)

	// The rejected attempt lands in the audit trail as a failure; the vendor
	// billed its tokens, so the counts stay.
	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "primary", entries[0].Provider)
	assert.False(t, entries[0].Success)
	assert.Equal(t, 20, entries[0].OutputTokens)
	assert.Equal(t, "fallback", entries[1].Provider)
	assert.True(t, entries[1].Success)
}

func TestGeneratorValidationFailureExhaustsChain(t *testing.T) {
	t.Parallel()

	llm := &cannedLLM{raw: `{"title": 42}`}
	gen := newTestGenerator(t, usage.NewMemorySink(), llm)

	schema := &Schema{Fields: []Field{{Name: "title", Type: TypeString, Required: true}}}
	meta := provider.CallMeta{TeacherID: uuid.New(), Operation: "test"}

	obj, res, err := gen.Generate(context.Background(), meta, provider.Prompt{User: "go"}, schema, provider.GenerationOptions{Timeout: time.Second})
	require.Error(t, err)
	assert.Nil(t, obj)
	assert.Nil(t, res)

	// The aggregate failure still identifies the schema rejection.
	var agg *provider.AggregateError
	require.True(t, errors.As(err, &agg))
	assert.True(t, errors.Is(err, ErrInvalidResponse))
	// A schema rejection is not transient: no same-provider retry.
	assert.Equal(t, 1, llm.calls)
}

func TestGeneratorProviderFailurePropagates(t *testing.T) {
	t.Parallel()

	gen := newTestGenerator(t, usage.NewMemorySink(), failingLLM{})
	schema := &Schema{Fields: []Field{{Name: "title", Type: TypeString, Required: true}}}
	meta := provider.CallMeta{TeacherID: uuid.New(), Operation: "test"}

	_, res, err := gen.Generate(context.Background(), meta, provider.Prompt{User: "go"}, schema, provider.GenerationOptions{Timeout: time.Second})
	require.Error(t, err)
	assert.Nil(t, res)

	var agg *provider.AggregateError
	assert.True(t, errors.As(err, &agg))
}

type failingLLM struct{}

func (failingLLM) Name() string { return "failing" }

func (failingLLM) GenerateStructured(context.Context, provider.Prompt, json.RawMessage, provider.GenerationOptions) (*provider.GenerationResult, error) {
	return nil, &provider.Error{Provider: "failing", Kind: provider.KindAuthentication, Message: "bad key"}
}
