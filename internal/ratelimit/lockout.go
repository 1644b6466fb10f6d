// Package ratelimit provides the in-memory request limiters shared by the
// gateway handlers: a lockout limiter for admin login and window/spacing
// limiters for document access.
//
// All state is per process. A restart resets every counter, and multiple
// service instances do not share limiter state; this is accepted abuse
// mitigation, not a durability guarantee.
package ratelimit

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// LockoutConfig tunes the admin-login lockout policy.
type LockoutConfig struct {
	MaxAttempts   int           // failures within AttemptWindow that trigger a block
	BlockDuration time.Duration // how long a key stays blocked
	AttemptWindow time.Duration // rolling window over which failures accumulate
	MaxEntries    int           // table size that triggers opportunistic eviction
}

// DefaultLockoutConfig returns the production lockout policy.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:   5,
		BlockDuration: 15 * time.Minute,
		AttemptWindow: 5 * time.Minute,
		MaxEntries:    500,
	}
}

type lockoutEntry struct {
	count        int
	firstFailure time.Time
	blockedUntil time.Time
}

// LockoutLimiter tracks failed login attempts per client key and escalates to
// a timed full block once the failure threshold is reached. A single success
// clears all history for the key. Block state takes priority over window
// expiry: while blocked every request is rejected, and the attempt window only
// restarts once the block has lapsed.
type LockoutLimiter struct {
	mu      sync.Mutex
	config  LockoutConfig
	entries map[string]*lockoutEntry
	logger  *slog.Logger
	now     func() time.Time
}

// NewLockoutLimiter creates a LockoutLimiter with the given policy.
func NewLockoutLimiter(config LockoutConfig, logger *slog.Logger) *LockoutLimiter {
	return &LockoutLimiter{
		config:  config,
		entries: make(map[string]*lockoutEntry),
		logger:  logger,
		now:     time.Now,
	}
}

// Check reports whether a request for key may proceed. When denied it returns
// the number of seconds until the block expires. Checking never mutates the
// failure count, so a blocked key is not penalized further for retrying.
func (l *LockoutLimiter) Check(key string) (allowed bool, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return true, 0
	}

	now := l.now()

	if entry.blockedUntil.After(now) {
		return false, secondsUntil(now, entry.blockedUntil)
	}

	// Block expired, or the attempt window ran out without a block. Either
	// way the key starts fresh.
	if !entry.blockedUntil.IsZero() || now.Sub(entry.firstFailure) > l.config.AttemptWindow {
		delete(l.entries, key)
	}

	return true, 0
}

// RecordFailure registers a failed attempt for key and returns true when this
// failure pushed the key over the threshold into a block.
func (l *LockoutLimiter) RecordFailure(key string) (blocked bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	entry, ok := l.entries[key]
	if !ok {
		l.entries[key] = &lockoutEntry{count: 1, firstFailure: now}
		l.evictLocked(now)
		return false
	}

	// An active block absorbs further failures without extending itself.
	if entry.blockedUntil.After(now) {
		return false
	}

	if !entry.blockedUntil.IsZero() || now.Sub(entry.firstFailure) > l.config.AttemptWindow {
		entry.count = 1
		entry.firstFailure = now
		entry.blockedUntil = time.Time{}
		return false
	}

	entry.count++
	if entry.count >= l.config.MaxAttempts {
		entry.blockedUntil = now.Add(l.config.BlockDuration)
		l.logger.Warn("login key blocked after repeated failures",
			slog.String("key", key),
			slog.Int("failures", entry.count),
			slog.Duration("block_duration", l.config.BlockDuration))
		return true
	}

	return false
}

// Clear removes all failure bookkeeping for key. Called on successful login,
// so the next failure after a success counts as failure #1.
func (l *LockoutLimiter) Clear(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// Sweep drops stale entries and returns the number removed. Invoked
// periodically by the background sweeper.
func (l *LockoutLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, entry := range l.entries {
		if l.stale(entry, now) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the current table size.
func (l *LockoutLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// evictLocked performs the opportunistic size-capped eviction. Best effort:
// it only runs once the table outgrows MaxEntries. Caller holds l.mu.
func (l *LockoutLimiter) evictLocked(now time.Time) {
	if len(l.entries) <= l.config.MaxEntries {
		return
	}
	for key, entry := range l.entries {
		if l.stale(entry, now) {
			delete(l.entries, key)
		}
	}
}

func (l *LockoutLimiter) stale(entry *lockoutEntry, now time.Time) bool {
	if entry.blockedUntil.After(now) {
		return false
	}
	ref := entry.firstFailure
	if entry.blockedUntil.After(ref) {
		ref = entry.blockedUntil
	}
	return now.Sub(ref) > 2*l.config.AttemptWindow
}

func secondsUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Seconds()))
}
