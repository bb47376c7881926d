package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(window time.Duration, max int, cleanupProb float64) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := New(Config{
		Window:             window,
		MaxRequests:        max,
		CleanupProbability: cleanupProb,
		Now:                clock.Now,
	})
	return l, clock
}

func TestAdmitUpToQuotaThenDeny(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 10, 0)

	for i := 0; i < 10; i++ {
		d, err := l.Admit("user-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be admitted", i+1)
	}

	d, err := l.Admit("user-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfterSeconds, 0)
	assert.LessOrEqual(t, d.RetryAfterSeconds, 60)
}

func TestWindowSlides(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 2, 0)

	d, err := l.Admit("user-1")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	clock.Advance(30 * time.Second)
	d, err = l.Admit("user-1")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	// Quota reached; a request now must be denied.
	d, err = l.Admit("user-1")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	// Exactly one window after the earliest counted request, that request
	// ages out and admission succeeds again (sliding, not fixed, window).
	clock.Advance(30 * time.Second)
	d, err = l.Admit("user-1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestDenialStillPurges(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 1, 0)

	_, err := l.Admit("user-1")
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	d, err := l.Admit("user-1")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	// Only one second of the original window remains.
	assert.Equal(t, 1, d.RetryAfterSeconds)
}

func TestCallersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 1, 0)

	d, err := l.Admit("user-1")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Admit("user-1")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = l.Admit("user-2")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "a different caller has its own window")
}

func TestMissingCallerIsAuthorizationError(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 10, 0)

	_, err := l.Admit("")
	assert.ErrorIs(t, err, ErrMissingCaller)
}

func TestCleanupRemovesIdleCallers(t *testing.T) {
	// CleanupProbability 1 forces a sweep on every admission.
	l, clock := newTestLimiter(time.Minute, 10, 1)

	_, err := l.Admit("idle-user")
	require.NoError(t, err)
	require.Equal(t, 1, l.TrackedCallers())

	clock.Advance(2 * time.Minute)
	_, err = l.Admit("active-user")
	require.NoError(t, err)

	assert.Equal(t, 1, l.TrackedCallers(), "idle caller should be swept")
}

func TestConcurrentSameCallerNeverExceedsQuota(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 10, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Admit("user-1")
			if err == nil && d.Allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, admitted)
}
