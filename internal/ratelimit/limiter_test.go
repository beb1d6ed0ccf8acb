package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireConsumesOneUnitPerRequest(t *testing.T) {
	l := New(10, 20)
	teacher := uuid.New()

	for i := 0; i < 10; i++ {
		require.NoError(t, l.Acquire(teacher, 5, 1))
	}

	err := l.Acquire(teacher, 5, 1)
	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 10, qe.Used)
	assert.Equal(t, 10, qe.Limit)
	assert.False(t, qe.ResetAt.IsZero())
}

func TestAcquirePerRequestItemCap(t *testing.T) {
	l := New(10, 20)
	teacher := uuid.New()

	err := l.Acquire(teacher, 21, 1)
	var ce *ItemCapError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 21, ce.Requested)
	assert.Equal(t, 20, ce.Cap)

	// A breached item cap must not consume daily quota.
	used, _, _ := l.Usage(teacher)
	assert.Equal(t, 0, used)
}

func TestAcquireNoOverAdmissionUnderConcurrency(t *testing.T) {
	const cap = 10
	const attempts = 50
	l := New(cap, 20)
	teacher := uuid.New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, quotaErrs := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Acquire(teacher, 5, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			var qe *QuotaError
			if errors.As(err, &qe) {
				quotaErrs++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, cap, succeeded, "exactly cap requests may pass, regardless of interleaving")
	assert.Equal(t, attempts-cap, quotaErrs)
}

func TestAcquireIndependentTeachers(t *testing.T) {
	l := New(1, 20)
	require.NoError(t, l.Acquire(uuid.New(), 5, 1))
	require.NoError(t, l.Acquire(uuid.New(), 5, 1))
}

func TestLazyResetAfterMidnight(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	l := New(1, 20, WithClock(func() time.Time { return now }))
	teacher := uuid.New()

	require.NoError(t, l.Acquire(teacher, 5, 1))
	err := l.Acquire(teacher, 5, 1)
	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), qe.ResetAt)

	// Cross the reset instant: the counter resets on the next check.
	now = now.Add(2 * time.Hour)
	require.NoError(t, l.Acquire(teacher, 5, 1))

	used, limit, resetAt := l.Usage(teacher)
	assert.Equal(t, 1, used)
	assert.Equal(t, 1, limit)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), resetAt)
}

func TestMixModeConsumesUnitPerPart(t *testing.T) {
	l := New(3, 20)
	teacher := uuid.New()

	// A 2-part mix consumes 2 units up front.
	require.NoError(t, l.Acquire(teacher, 10, 2))

	// Only 1 unit left: a second 2-part mix is rejected whole.
	err := l.Acquire(teacher, 10, 2)
	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 2, qe.Used)

	require.NoError(t, l.Acquire(teacher, 10, 1))
}
