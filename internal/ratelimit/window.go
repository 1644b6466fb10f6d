package ratelimit

import (
	"sync"
	"time"
)

// WindowConfig tunes a fixed-window counting policy.
type WindowConfig struct {
	Window       time.Duration
	MaxPerWindow int
	MaxEntries   int
}

// DefaultSignedURLConfig returns the signed-URL issuance policy: 30 requests
// per minute per client.
func DefaultSignedURLConfig() WindowConfig {
	return WindowConfig{
		Window:       time.Minute,
		MaxPerWindow: 30,
		MaxEntries:   1000,
	}
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// WindowLimiter bounds request count per key per fixed window. The counter
// resets to 1 whenever the window has lapsed; within a window, requests beyond
// MaxPerWindow are rejected with a retry hint.
type WindowLimiter struct {
	mu      sync.Mutex
	config  WindowConfig
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewWindowLimiter creates a WindowLimiter with the given policy.
func NewWindowLimiter(config WindowConfig) *WindowLimiter {
	return &WindowLimiter{
		config:  config,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Allow consumes one request slot for key. When denied it returns the number
// of seconds until the window resets.
func (l *WindowLimiter) Allow(key string) (allowed bool, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	entry, ok := l.entries[key]
	if !ok || !entry.resetAt.After(now) {
		l.entries[key] = &windowEntry{count: 1, resetAt: now.Add(l.config.Window)}
		l.evictLocked(now)
		return true, 0
	}

	if entry.count >= l.config.MaxPerWindow {
		return false, secondsUntil(now, entry.resetAt)
	}

	entry.count++
	return true, 0
}

// Sweep drops expired windows and returns the number removed.
func (l *WindowLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, entry := range l.entries {
		if !entry.resetAt.After(now) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the current table size.
func (l *WindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Caller holds l.mu.
func (l *WindowLimiter) evictLocked(now time.Time) {
	if len(l.entries) <= l.config.MaxEntries {
		return
	}
	for key, entry := range l.entries {
		if !entry.resetAt.After(now) {
			delete(l.entries, key)
		}
	}
}
