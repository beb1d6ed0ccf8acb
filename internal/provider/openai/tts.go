package openai

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/owlingo/owlingo-api/internal/provider"
)

// TTS implements provider.TTSProvider against the speech endpoint.
type TTS struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewTTS creates an OpenAI speech provider. An empty model defaults to tts-1.
func NewTTS(cfg Config) (*TTS, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	model := openai.SpeechModel(cfg.Model)
	if model == "" {
		model = openai.TTSModel1
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &TTS{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

// Name implements provider.TTSProvider.
func (t *TTS) Name() string { return "openai-tts" }

// Model exposes the speech model for pricing.
func (t *TTS) Model() string { return string(t.model) }

// Synthesize implements provider.TTSProvider.
func (t *TTS) Synthesize(ctx context.Context, text, voice string, opts provider.SynthesisOptions) (*provider.AudioResult, error) {
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	req := openai.CreateSpeechRequest{
		Model: t.model,
		Input: text,
		Voice: openai.SpeechVoice(voice),
	}
	if opts.Speed > 0 {
		req.Speed = opts.Speed
	}

	resp, err := t.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, mapError(t.Name(), err)
	}
	defer func() { _ = resp.Close() }()

	audio, err := io.ReadAll(resp)
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
