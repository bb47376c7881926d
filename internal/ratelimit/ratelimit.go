/*
Package ratelimit gates the AI endpoints with a per-caller sliding window.

The limiter is single-process by design: its state lives in an in-memory
Store and is not shared across instances. A multi-instance deployment
needs an external shared counter behind the Store interface; that is a
known limitation, not something this package papers over.
*/
package ratelimit

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrMissingCaller is returned when no caller identity is supplied. This is
// an authorization failure, not a rate-limit denial.
var ErrMissingCaller = errors.New("caller identity required")

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool

	// RetryAfterSeconds is set on denial: the seconds until the oldest
	// counted request leaves the window.
	RetryAfterSeconds int

	// Remaining is the quota left in the current window after this check.
	Remaining int
}

// Config carries the limiter's knobs and injectable collaborators.
// Zero-value collaborators fall back to real implementations.
type Config struct {
	Window      time.Duration
	MaxRequests int

	// CleanupProbability is the chance that an admission check also sweeps
	// idle callers. Tests pin it to 1 to force a sweep, 0 to suppress it.
	CleanupProbability float64

	Store Store
	Now   func() time.Time
	Rand  func() float64
}

// Limiter enforces MaxRequests per Window for each caller.
type Limiter struct {
	window      time.Duration
	maxRequests int
	cleanupProb float64

	store Store
	now   func() time.Time
	rand  func() float64

	// mu makes each admission's read-purge-count-append sequence atomic.
	// Without it two concurrent requests from the same caller could both
	// read a stale count and both slip past the quota.
	mu sync.Mutex
}

func New(cfg Config) *Limiter {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Float64
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 10
	}
	return &Limiter{
		window:      cfg.Window,
		maxRequests: cfg.MaxRequests,
		cleanupProb: cfg.CleanupProbability,
		store:       cfg.Store,
		now:         cfg.Now,
		rand:        cfg.Rand,
	}
}

// Admit checks and records one request from callerID. Denials still purge
// the caller's expired entries, so a denied caller's window keeps sliding.
func (l *Limiter) Admit(callerID string) (Decision, error) {
	if callerID == "" {
		return Decision{}, ErrMissingCaller
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	stamps, _ := l.store.Get(callerID)
	recent := purge(stamps, now, l.window)

	if len(recent) >= l.maxRequests {
		l.store.Set(callerID, recent)
		oldest := recent[0]
		retryAfter := int(math.Ceil(oldest.Add(l.window).Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		log.Debug().
			Str("caller_id", callerID).
			Int("retry_after_s", retryAfter).
			Msg("AI request denied by rate limiter")
		return Decision{Allowed: false, RetryAfterSeconds: retryAfter}, nil
	}

	recent = append(recent, now)
	l.store.Set(callerID, recent)

	if l.rand() < l.cleanupProb {
		l.cleanupLocked(now)
	}

	return Decision{Allowed: true, Remaining: l.maxRequests - len(recent)}, nil
}

// cleanupLocked drops callers whose purged sequence is empty. Staleness here
// only delays memory reclamation; it never changes an admission decision.
func (l *Limiter) cleanupLocked(now time.Time) {
	removed := 0
	for _, key := range l.store.Keys() {
		stamps, ok := l.store.Get(key)
		if !ok {
			continue
		}
		recent := purge(stamps, now, l.window)
		if len(recent) == 0 {
			l.store.Delete(key)
			removed++
		} else {
			l.store.Set(key, recent)
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("Rate limiter swept idle callers")
	}
}

// TrackedCallers reports how many callers currently hold window state.
func (l *Limiter) TrackedCallers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.store.Keys())
}

func purge(stamps []time.Time, now time.Time, window time.Duration) []time.Time {
	recent := stamps[:0:0]
	for _, t := range stamps {
		if now.Sub(t) < window {
			recent = append(recent, t)
		}
	}
	return recent
}
