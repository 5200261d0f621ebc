// Package ratelimit tracks which providers are cooling down after a
// throttling signal so the orchestrator can route around them.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultCooldown is how long a provider stays unavailable after it
// signals throttling.
const DefaultCooldown = 5 * time.Minute

// Tracker records throttled providers and answers availability queries.
// Safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	until    map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Option customizes a Tracker
type Option func(*Tracker)

// WithCooldown overrides the default cooldown window
func WithCooldown(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.cooldown = d
		}
	}
}

// WithClock injects a clock for tests
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker creates a Tracker with the default cooldown
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		until:    make(map[string]time.Time),
		cooldown: DefaultCooldown,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// MarkLimited records that a provider signaled throttling. The provider
// becomes unavailable until the cooldown elapses.
func (t *Tracker) MarkLimited(provider string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	availableAt := t.now().Add(t.cooldown)
	t.until[provider] = availableAt
	t.logger.Warn("ratelimit.provider_limited",
		"provider", provider,
		"available_at", availableAt.Format(time.RFC3339),
	)
}

// IsLimited reports whether a provider is still cooling down. An expired
// entry is cleared on read so the map does not accumulate stale state.
func (t *Tracker) IsLimited(provider string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	availableAt, ok := t.until[provider]
	if !ok {
		return false
	}
	if t.now().Before(availableAt) {
		return true
	}
	delete(t.until, provider)
	return false
}

// AvailableAt returns when a limited provider becomes available again.
// The zero time means the provider is not limited.
func (t *Tracker) AvailableAt(provider string) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	availableAt, ok := t.until[provider]
	if !ok || !t.now().Before(availableAt) {
		return time.Time{}
	}
	return availableAt
}

// Reset clears all cooldown state
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.until = make(map[string]time.Time)
}
