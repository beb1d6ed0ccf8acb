package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlingo/owlingo-api/internal/usage"
)

type fakeTTS struct {
	name  string
	model string
	calls int
	errs  []error
}

func (f *fakeTTS) Name() string  { return f.name }
func (f *fakeTTS) Model() string { return f.model }

func (f *fakeTTS) Synthesize(ctx context.Context, text, voice string, opts SynthesisOptions) (*AudioResult, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	return &AudioResult{
		Provider: f.name,
		Audio:    []byte("mp3-bytes"),
		MIMEType: "audio/mpeg",
		Usage:    AudioUsage{Characters: len(text)},
	}, nil
}

func TestSynthesizeFallsBackOnFailure(t *testing.T) {
	primary := &fakeTTS{name: "openai-tts", model: "tts-1", errs: []error{
		&Error{Provider: "openai-tts", Kind: KindQuotaExceeded},
	}}
	fallback := &fakeTTS{name: "elevenlabs", model: "eleven_flash"}
	sink := usage.NewMemorySink()
	m, err := NewTTSManager([]TTSProvider{primary, fallback}, usage.NewTracker(sink, nil), nil)
	require.NoError(t, err)
	m.baseDelay = time.Millisecond

	res, err := m.Synthesize(context.Background(), testMeta(), "Could I get a flat white?", "alloy", SynthesisOptions{})
	require.NoError(t, err)

	assert.Equal(t, "elevenlabs", res.Provider)
	assert.Equal(t, "audio/mpeg", res.MIMEType)

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "openai-tts", entries[0].Provider)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "tts-1", entries[0].Model)
	assert.True(t, entries[1].Success)
	assert.Equal(t, len("Could I get a flat white?"), entries[1].Characters)
}

func TestSynthesizeFailedAttemptBillsNothing(t *testing.T) {
	tts := &fakeTTS{name: "openai-tts", model: "tts-1", errs: []error{
		&Error{Provider: "openai-tts", Kind: KindRateLimit},
	}}
	sink := usage.NewMemorySink()
	m, err := NewTTSManager([]TTSProvider{tts}, usage.NewTracker(sink, nil), nil)
	require.NoError(t, err)
	m.baseDelay = time.Millisecond

	_, err = m.Synthesize(context.Background(), testMeta(), "A long passage the vendor never charged for.", "alloy", SynthesisOptions{MaxRetries: 1})
	require.NoError(t, err)

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Success)
	assert.Zero(t, entries[0].Characters, "a failed attempt incurs no character charge")
	assert.True(t, entries[1].Success)
	assert.Equal(t, len("A long passage the vendor never charged for."), entries[1].Characters)
}

func TestSynthesizeAllProvidersFail(t *testing.T) {
	primary := &fakeTTS{name: "openai-tts", errs: []error{
		&Error{Provider: "openai-tts", Kind: KindAuthentication},
	}}
	fallback := &fakeTTS{name: "elevenlabs", errs: []error{
		&Error{Provider: "elevenlabs", Kind: KindAuthentication},
	}}
	m, err := NewTTSManager([]TTSProvider{primary, fallback}, usage.NewTracker(usage.NewMemorySink(), nil), nil)
	require.NoError(t, err)

	_, err = m.Synthesize(context.Background(), testMeta(), "text", "alloy", SynthesisOptions{})

	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, []string{"openai-tts", "elevenlabs"}, agg.Providers())
}
