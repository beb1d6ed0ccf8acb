package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/owlingo/owlingo-api/internal/usage"
)

// Default call bounds applied when GenerationOptions leave them zero.
const (
	DefaultAttemptTimeout = 60 * time.Second
	DefaultMaxRetries     = 2
	DefaultBaseDelay      = 500 * time.Millisecond
)

// CallMeta attributes a manager call to a teacher and an orchestration-level
// operation for usage accounting.
type CallMeta struct {
	TeacherID uuid.UUID
	Operation string
}

// Manager turns an ordered list of LLM providers (primary first) into a
// single reliable call: transient errors are retried per provider with
// exponential backoff, non-transient errors fall through to the next
// provider immediately, and every attempt produces a usage log entry.
type Manager struct {
	providers []LLMProvider
	tracker   *usage.Tracker
	logger    *slog.Logger
	baseDelay time.Duration
}

// NewManager creates a manager over the given fallback chain. At least one
// provider is required. A nil logger falls back to slog.Default.
func NewManager(providers []LLMProvider, tracker *usage.Tracker, logger *slog.Logger) (*Manager, error) {
	if len(providers) == 0 {
		return nil, errors.New("at least one LLM provider is required")
	}
	if tracker == nil {
		return nil, errors.New("usage tracker is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		providers: providers,
		tracker:   tracker,
		logger:    logger.With(slog.String("component", "llm_manager")),
		baseDelay: DefaultBaseDelay,
	}, nil
}

func applyGenerationDefaults(opts GenerationOptions) GenerationOptions {
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

// ValidateFunc inspects a provider's raw payload after a transport-level
// success. A non-nil error marks the attempt as failed and the manager falls
// back to the next provider.
type ValidateFunc func(raw json.RawMessage) error

// GenerateStructured attempts each provider in order until one succeeds.
// Exhausting the chain returns an *AggregateError listing every per-provider
// failure in attempt order. Cancellation of ctx stops scheduling further
// attempts.
func (m *Manager) GenerateStructured(ctx context.Context, meta CallMeta, prompt Prompt, schema json.RawMessage, opts GenerationOptions) (*GenerationResult, error) {
	return m.GenerateValidated(ctx, meta, prompt, schema, opts, nil)
}

// GenerateValidated is GenerateStructured with a per-attempt payload check:
// an attempt whose payload fails validate counts as a failed attempt, so the
// next provider in the chain still gets a chance to produce a conformant
// payload. A nil validate accepts every payload.
func (m *Manager) GenerateValidated(ctx context.Context, meta CallMeta, prompt Prompt, schema json.RawMessage, opts GenerationOptions, validate ValidateFunc) (*GenerationResult, error) {
	opts = applyGenerationDefaults(opts)

	var failures []*Error
	for _, p := range m.providers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation canceled: %w", err)
		}

		res, perr := m.attemptGenerate(ctx, meta, p, prompt, schema, opts, validate)
		if perr == nil {
			return res, nil
		}
		failures = append(failures, perr)
		m.logger.Warn("provider failed, falling back",
			slog.String("provider", p.Name()),
			slog.String("kind", string(perr.Kind)),
			slog.String("operation", meta.Operation))
	}
	return nil, &AggregateError{Failures: failures}
}

// attemptGenerate runs one provider with its retry budget. Every attempt,
// success or failure, is recorded with the tracker before returning.
func (m *Manager) attemptGenerate(ctx context.Context, meta CallMeta, p LLMProvider, prompt Prompt, schema json.RawMessage, opts GenerationOptions, validate ValidateFunc) (*GenerationResult, *Error) {
	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		start := time.Now()
		res, err := p.GenerateStructured(attemptCtx, prompt, schema, opts)
		cancel()
		elapsed := time.Since(start)

		if err == nil {
			if validate != nil {
				if verr := validate(res.Raw); verr != nil {
					// The vendor billed these tokens even though the payload
					// is unusable, so the failed entry keeps the real counts.
					m.tracker.RecordGeneration(ctx, meta.TeacherID, meta.Operation, p.Name(), res.Model,
						res.Usage.InputTokens, res.Usage.OutputTokens, false, elapsed)
					m.logger.Error("provider payload failed validation",
						slog.String("provider", p.Name()),
						slog.String("operation", meta.Operation),
						slog.String("error", verr.Error()))
					return nil, &Error{Provider: p.Name(), Kind: KindResponse, Message: "payload failed validation", Cause: verr}
				}
			}
			res.Latency = elapsed
			m.tracker.RecordGeneration(ctx, meta.TeacherID, meta.Operation, p.Name(), res.Model,
				res.Usage.InputTokens, res.Usage.OutputTokens, true, elapsed)
			return res, nil
		}

		pe := AsProviderError(p.Name(), err)
		// Exceeding the attempt bound surfaces as a deadline error; classify
		// it as a timeout unless the parent context itself is done.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && pe.Kind != KindTimeout {
			pe = &Error{Provider: p.Name(), Kind: KindTimeout, Message: "attempt exceeded time bound", Cause: err}
		}

		m.tracker.RecordGeneration(ctx, meta.TeacherID, meta.Operation, p.Name(), "", 0, 0, false, elapsed)
		m.logger.Error("provider attempt failed",
			slog.String("provider", p.Name()),
			slog.String("kind", string(pe.Kind)),
			slog.Int("attempt", attempt+1),
			slog.String("error", pe.Error()))

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
