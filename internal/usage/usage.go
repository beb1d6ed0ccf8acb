// Package usage tracks provider consumption for billing and quota
// enforcement: a pure cost calculator over a static rate table, and an
// append-only audit trail of every provider attempt.
package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable audit record. Exactly one entry is produced per
// provider attempt, success or failure, and handed to a Sink.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	TeacherID uuid.UUID `json:"teacher_id"`

	// Operation is the orchestration-level operation, e.g. "listening_quiz"
	// or "audio_synthesis".
	Operation string `json:"operation"`

	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`

	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
	Characters   int `json:"characters,omitempty"`

	// Cost is the computed USD amount for this attempt.
	Cost float64 `json:"cost"`

	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`

	CreatedAt time.Time `json:"created_at"`
}

// Sink receives audit records. Implementations must treat entries as
// append-only; there is no update or delete path.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// MemorySink keeps entries in memory. It is the default sink when no
// database is configured, and the sink used by tests.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Record appends the entry.
func (s *MemorySink) Record(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries in append order.
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
