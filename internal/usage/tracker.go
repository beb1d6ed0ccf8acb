package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Tracker turns raw attempt measurements into audit entries: it computes the
// cost, stamps identity and time, and hands the record to the sink. Sink
// failures are logged and swallowed; a provider result must never be
// discarded because bookkeeping failed.
type Tracker struct {
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker creates a tracker writing to sink. A nil logger falls back to
// slog.Default.
func NewTracker(sink Sink, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		sink:   sink,
		logger: logger.With(slog.String("component", "usage_tracker")),
		now:    time.Now,
	}
}

// RecordGeneration logs one LLM attempt.
func (t *Tracker) RecordGeneration(ctx context.Context, teacherID uuid.UUID, operation, providerName, model string, inputTokens, outputTokens int, success bool, duration time.Duration) {
	entry := Entry{
		ID:           uuid.New(),
		TeacherID:    teacherID,
		Operation:    operation,
		Provider:     providerName,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         GenerationCost(providerName, model, inputTokens, outputTokens),
		Success:      success,
		Duration:     duration,
		CreatedAt:    t.now().UTC(),
	}
	t.record(ctx, entry)
}

// RecordSynthesis logs one TTS attempt.
func (t *Tracker) RecordSynthesis(ctx context.Context, teacherID uuid.UUID, operation, providerName, model string, characters int, success bool, duration time.Duration) {
	entry := Entry{
		ID:         uuid.New(),
		TeacherID:  teacherID,
		Operation:  operation,
		Provider:   providerName,
		Model:      model,
		Characters: characters,
		Cost:       SynthesisCost(providerName, model, characters),
		Success:    success,
		Duration:   duration,
		CreatedAt:  t.now().UTC(),
	}
	t.record(ctx, entry)
}

func (t *Tracker) record(ctx context.Context, entry Entry) {
	if err := t.sink.Record(ctx, entry); err != nil {
		t.logger.Error("failed to record usage entry",
			slog.String("error", err.Error()),
			slog.String("provider", entry.Provider),
			slog.String("operation", entry.Operation),
			slog.String("teacher_id", entry.TeacherID.String()))
	}
}
