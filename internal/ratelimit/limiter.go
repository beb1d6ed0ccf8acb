// Package ratelimit enforces the per-teacher generation ceilings: a
// per-request item cap and a rolling daily generation cap that resets at a
// fixed wall-clock instant (UTC midnight). Counters live in memory only.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QuotaError is returned when a check would exceed a ceiling. It carries
// enough structured context for the caller to render an actionable message
// without a second round-trip.
type QuotaError struct {
	TeacherID uuid.UUID
	Used      int
	Limit     int
	ResetAt   time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("daily generation quota exceeded: %d/%d used, resets at %s",
		e.Used, e.Limit, e.ResetAt.Format(time.RFC3339))
}

// ItemCapError is returned when a single request asks for more items than the
// per-request ceiling allows.
type ItemCapError struct {
	Requested int
	Cap       int
}

func (e *ItemCapError) Error() string {
	return fmt.Sprintf("requested %d items, per-request cap is %d", e.Requested, e.Cap)
}

// teacherState is the daily counter for one teacher. Mutated only under its
// own lock, so concurrent checks for the same teacher serialize while checks
// for different teachers proceed independently.
type teacherState struct {
	mu      sync.Mutex
	used    int
	resetAt time.Time
}

// Limiter tracks per-teacher daily usage. Construct with New; instances carry
// no hidden global state, so tests can create a fresh limiter each.
type Limiter struct {
	dailyCap      int
	perRequestCap int
	now           func() time.Time

	mu       sync.Mutex
	teachers map[uuid.UUID]*teacherState
}

// Option customizes limiter construction.
type Option func(*Limiter)

// WithClock overrides the limiter's time source for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a limiter with the given daily generation cap and per-request
// item cap.
func New(dailyCap, perRequestCap int, opts ...Option) *Limiter {
	l := &Limiter{
		dailyCap:      dailyCap,
		perRequestCap: perRequestCap,
		now:           time.Now,
		teachers:      make(map[uuid.UUID]*teacherState),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// nextReset returns the upcoming UTC midnight after t.
func nextReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

func (l *Limiter) state(teacherID uuid.UUID) *teacherState {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.teachers[teacherID]
	if !ok {
		st = &teacherState{resetAt: nextReset(l.now())}
		l.teachers[teacherID] = st
	}
	return st
}

// Acquire checks both ceilings and, if they pass, consumes units from the
// teacher's daily quota in the same critical section. One generation request
// consumes one unit regardless of its item count; callers in mix mode pass
// the number of constituent parts.
//
// On breach nothing is consumed and a *QuotaError or *ItemCapError is
// returned; no provider must be contacted afterwards.
func (l *Limiter) Acquire(teacherID uuid.UUID, itemCount, units int) error {
	if itemCount > l.perRequestCap {
		return &ItemCapError{Requested: itemCount, Cap: l.perRequestCap}
	}

	st := l.state(teacherID)
	st.mu.Lock()
	defer st.mu.Unlock()

	// Lazy reset: the counter rolls over on the first check after the reset
	// instant elapses.
	if now := l.now(); !now.Before(st.resetAt) {
		st.used = 0
		st.resetAt = nextReset(now)
	}

	if st.used+units > l.dailyCap {
		return &QuotaError{
			TeacherID: teacherID,
			Used:      st.used,
			Limit:     l.dailyCap,
			ResetAt:   st.resetAt,
		}
	}
	st.used += units
	return nil
}

// Usage reports the teacher's current consumption and reset instant without
// consuming quota.
func (l *Limiter) Usage(teacherID uuid.UUID) (used, limit int, resetAt time.Time) {
	st := l.state(teacherID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if now := l.now(); !now.Before(st.resetAt) {
		st.used = 0
		st.resetAt = nextReset(now)
	}
	return st.used, l.dailyCap, st.resetAt
}
