package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/owlingo/owlingo-api/internal/usage"
)

// TTSModelName lets adapters expose the model identifier used for pricing.
// Adapters that price per provider only may return an empty string.
type TTSModelName interface {
	Model() string
}

// TTSManager is the speech-synthesis counterpart of Manager: same fallback
// fold, same retry policy, same per-attempt accounting in characters.
type TTSManager struct {
	providers []TTSProvider
	tracker   *usage.Tracker
	logger    *slog.Logger
	baseDelay time.Duration
}

// NewTTSManager creates a manager over the given TTS fallback chain.
func NewTTSManager(providers []TTSProvider, tracker *usage.Tracker, logger *slog.Logger) (*TTSManager, error) {
	if len(providers) == 0 {
		return nil, errors.New("at least one TTS provider is required")
	}
	if tracker == nil {
		return nil, errors.New("usage tracker is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TTSManager{
		providers: providers,
		tracker:   tracker,
		logger:    logger.With(slog.String("component", "tts_manager")),
		baseDelay: DefaultBaseDelay,
	}, nil
}

func applySynthesisDefaults(opts SynthesisOptions) SynthesisOptions {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultAttemptTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	return opts
}

// Synthesize attempts each provider in order until one returns audio.
func (m *TTSManager) Synthesize(ctx context.Context, meta CallMeta, text, voice string, opts SynthesisOptions) (*AudioResult, error) {
	opts = applySynthesisDefaults(opts)

	var failures []*Error
	for _, p := range m.providers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("synthesis canceled: %w", err)
		}

		res, perr := m.attemptSynthesize(ctx, meta, p, text, voice, opts)
		if perr == nil {
			return res, nil
		}
		failures = append(failures, perr)
		m.logger.Warn("TTS provider failed, falling back",
			slog.String("provider", p.Name()),
			slog.String("kind", string(perr.Kind)))
	}
	return nil, &AggregateError{Failures: failures}
}

func (m *TTSManager) attemptSynthesize(ctx context.Context, meta CallMeta, p TTSProvider, text, voice string, opts SynthesisOptions) (*AudioResult, *Error) {
	model := ""
	if named, ok := p.(TTSModelName); ok {
		model = named.Model()
	}

	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		start := time.Now()
		res, err := p.Synthesize(attemptCtx, text, voice, opts)
		cancel()
		elapsed := time.Since(start)

		if err == nil {
			res.Latency = elapsed
			m.tracker.RecordSynthesis(ctx, meta.TeacherID, meta.Operation, p.Name(), model,
				res.Usage.Characters, true, elapsed)
			return res, nil
		}

		pe := AsProviderError(p.Name(), err)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && pe.Kind != KindTimeout {
			pe = &Error{Provider: p.Name(), Kind: KindTimeout, Message: "attempt exceeded time bound", Cause: err}
		}

		// No characters were billed for a failed attempt.
		m.tracker.RecordSynthesis(ctx, meta.TeacherID, meta.Operation, p.Name(), model, 0, false, elapsed)
		m.logger.Error("TTS attempt failed",
			slog.String("provider", p.Name()),
			slog.String("kind", string(pe.Kind)),
			slog.Int("attempt", attempt+1))

		if !pe.Transient() || attempt >= opts.MaxRetries || ctx.Err() != nil {
			return nil, pe
		}

		select {
		case <-time.After(backoffDelay(m.baseDelay, attempt, pe.RetryAfter)):
		case <-ctx.Done():
			return nil, pe
		}
	}
}
