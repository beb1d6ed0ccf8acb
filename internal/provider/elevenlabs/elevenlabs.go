// Package elevenlabs adapts the ElevenLabs text-to-speech HTTP API to the
// provider contract. ElevenLabs ships no Go SDK, so this is a thin net/http
// client.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/owlingo/owlingo-api/internal/provider"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Config holds the ElevenLabs connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	// Model is the synthesis model, e.g. "eleven_flash".
	Model string
	// DefaultVoiceID is used when the caller passes no voice.
	DefaultVoiceID string
}

// TTS implements provider.TTSProvider.
type TTS struct {
	apiKey       string
	baseURL      string
	model        string
	defaultVoice string
	httpClient   *http.Client
}

// NewTTS creates an ElevenLabs speech provider.
func NewTTS(cfg Config) (*TTS, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("elevenlabs: API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "eleven_flash"
	}
	return &TTS{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		model:        model,
		defaultVoice: cfg.DefaultVoiceID,
		httpClient:   &http.Client{},
	}, nil
}

// Name implements provider.TTSProvider.
func (t *TTS) Name() string { return "elevenlabs" }

// Model exposes the synthesis model for pricing.
func (t *TTS) Model() string { return t.model }

type synthesisRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

type apiErrorBody struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

// Synthesize implements provider.TTSProvider.
func (t *TTS) Synthesize(ctx context.Context, text, voice string, opts provider.SynthesisOptions) (*provider.AudioResult, error) {
	if voice == "" {
		voice = t.defaultVoice
	}
	if voice == "" {
		return nil, &provider.Error{Provider: t.Name(), Kind: provider.KindResponse, Message: "no voice configured"}
	}

	body, err := json.Marshal(synthesisRequest{Text: text, ModelID: t.model})
	if err != nil {
		return nil, &provider.Error{Provider: t.Name(), Kind: provider.KindResponse, Message: "encoding request", Cause: err}
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", t.baseURL, voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &provider.Error{Provider: t.Name(), Kind: provider.KindConnection, Message: "building request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, t.mapTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, t.mapStatusError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.Error{Provider: t.Name(), Kind: provider.KindConnection, Message: "reading audio stream", Cause: err}
	}
	if len(audio) == 0 {
		return nil, &provider.Error{Provider: t.Name(), Kind: provider.KindResponse, Message: "empty audio payload"}
	}

	return &provider.AudioResult{
		Provider: t.Name(),
		Audio:    audio,
		MIMEType: "audio/mpeg",
		Usage:    provider.AudioUsage{Characters: len(text)},
	}, nil
}

func (t *TTS) mapTransportError(err error) *provider.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.Error{Provider: t.Name(), Kind: provider.KindTimeout, Message: "request timed out", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &provider.Error{Provider: t.Name(), Kind: provider.KindTimeout, Message: "request timed out", Cause: err}
	}
	return &provider.Error{Provider: t.Name(), Kind: provider.KindConnection, Message: "request failed", Cause: err}
}

func (t *TTS) mapStatusError(resp *http.Response) *provider.Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := http.StatusText(resp.StatusCode)
	var parsed apiErrorBody
	if json.Unmarshal(raw, &parsed) == nil && parsed.Detail.Message != "" {
		msg = parsed.Detail.Message
	}

	kind := provider.KindResponse
	var retryAfter time.Duration
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = provider.KindAuthentication
	case http.StatusTooManyRequests:
		kind = provider.KindRateLimit
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		if parsed.Detail.Status == "quota_exceeded" {
			kind = provider.KindQuotaExceeded
		}
	case http.StatusNotFound:
		kind = provider.KindModelNotFound
	default:
		if resp.StatusCode >= 500 {
			kind = provider.KindConnection
		}
	}

	return &provider.Error{
		Provider:   t.Name(),
		Kind:       kind,
		Message:    msg,
		RetryAfter: retryAfter,
	}
}
