package ratelimit

import (
	"sync"
	"time"
)

// SpacingConfig tunes a minimum inter-request spacing policy. The spacing is
// derived as Window / MaxPerWindow; requests arriving sooner than that since
// the key's last recorded request are rejected.
type SpacingConfig struct {
	Window       time.Duration
	MaxPerWindow int
	MaxEntries   int
}

// DefaultIncrementConfig returns the download-counter policy: 10 requests per
// minute per client+document key, i.e. at least 6s between increments.
func DefaultIncrementConfig() SpacingConfig {
	return SpacingConfig{
		Window:       time.Minute,
		MaxPerWindow: 10,
		MaxEntries:   1000,
	}
}

// SpacingLimiter bounds request rate per key by enforcing minimum spacing
// between consecutive requests. Well-spaced traffic is never rejected;
// sustained traffic above Window/MaxPerWindow is.
type SpacingLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	window   time.Duration
	max      int
	entries  map[string]time.Time
	now      func() time.Time
}

// NewSpacingLimiter creates a SpacingLimiter with the given policy.
func NewSpacingLimiter(config SpacingConfig) *SpacingLimiter {
	return &SpacingLimiter{
		interval: config.Window / time.Duration(config.MaxPerWindow),
		window:   config.Window,
		max:      config.MaxEntries,
		entries:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow records a request for key unless one arrived within the minimum
// spacing interval. When denied it returns the seconds until the next request
// would be accepted.
func (l *SpacingLimiter) Allow(key string) (allowed bool, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if last, ok := l.entries[key]; ok {
		if elapsed := now.Sub(last); elapsed < l.interval {
			return false, secondsUntil(now, last.Add(l.interval))
		}
	}

	l.entries[key] = now
	l.evictLocked(now)
	return true, 0
}

// Sweep drops entries older than the policy window and returns the number
// removed.
func (l *SpacingLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, last := range l.entries {
		if now.Sub(last) > l.window {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the current table size.
func (l *SpacingLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Caller holds l.mu.
func (l *SpacingLimiter) evictLocked(now time.Time) {
	if len(l.entries) <= l.max {
		return
	}
	for key, last := range l.entries {
		if now.Sub(last) > l.window {
			delete(l.entries, key)
		}
	}
}
