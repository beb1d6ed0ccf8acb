package elevenlabs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlingo/owlingo-api/internal/provider"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *TTS) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tts, err := NewTTS(Config{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		DefaultVoiceID: "rachel",
	})
	require.NoError(t, err)
	return srv, tts
}

func TestSynthesizeSuccess(t *testing.T) {
	_, tts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/rachel", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	res, err := tts.Synthesize(context.Background(), "Hello there", "", provider.SynthesisOptions{})
	require.NoError(t, err)

	assert.Equal(t, "elevenlabs", res.Provider)
	assert.Equal(t, []byte("mp3-bytes"), res.Audio)
	assert.Equal(t, "audio/mpeg", res.MIMEType)
	assert.Equal(t, len("Hello there"), res.Usage.Characters)
}

func TestSynthesizeStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind provider.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, provider.KindAuthentication},
		{"rate limited", http.StatusTooManyRequests, `{}`, provider.KindRateLimit},
		{
			"quota exceeded",
			http.StatusTooManyRequests,
			`{"detail":{"status":"quota_exceeded","message":"character quota exhausted"}}`,
			provider.KindQuotaExceeded,
		},
		{"unknown voice", http.StatusNotFound, `{}`, provider.KindModelNotFound},
		{"server error", http.StatusBadGateway, `{}`, provider.KindConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := tts.Synthesize(context.Background(), "text", "", provider.SynthesisOptions{})
			var pe *provider.Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantKind, pe.Kind)
		})
	}
}

func TestSynthesizeRetryAfterHint(t *testing.T) {
	_, tts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := tts.Synthesize(context.Background(), "text", "", provider.SynthesisOptions{})
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.KindRateLimit, pe.Kind)
	assert.Equal(t, 7*time.Second, pe.RetryAfter)
}

func TestSynthesizeTimeout(t *testing.T) {
	_, tts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tts.Synthesize(ctx, "text", "", provider.SynthesisOptions{})
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.KindTimeout, pe.Kind)
}

func TestSynthesizeRequiresVoice(t *testing.T) {
	tts, err := NewTTS(Config{APIKey: "k"})
	require.NoError(t, err)

	_, err = tts.Synthesize(context.Background(), "text", "", provider.SynthesisOptions{})
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.KindResponse, pe.Kind)
}
