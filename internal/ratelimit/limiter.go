// Package ratelimit provides per-user operation quotas and per-IP throttling
// for the theme procedures.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Rule allows Limit calls per Window for one user and operation.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Config holds rate limit configuration.
type Config struct {
	// Rules keyed by operation name, e.g. "themes.create".
	Rules map[string]Rule

	// How often expired entries are swept (default: 5m)
	CleanupInterval time.Duration

	// Clock for testing (nil uses real time)
	Clock Clock
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// entry is the sliding-window log of accepted calls for one key.
type entry struct {
	window time.Duration
	hits   []time.Time
}

// prune drops hits that fell out of the window ending at now.
func (e *entry) prune(now time.Time) {
	cutoff := now.Add(-e.window)
	i := 0
	for i < len(e.hits) && !e.hits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		e.hits = append(e.hits[:0], e.hits[i:]...)
	}
}

// Limiter enforces sliding-window quotas per user and operation.
type Limiter struct {
	rules           map[string]Rule
	cleanupInterval time.Duration
	clock           Clock

	mu sync.Mutex
	// Keyed by operation plus hash of the user id
	entries map[string]*entry

	// Cleanup goroutine management
	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	rules := make(map[string]Rule, len(cfg.Rules))
	for op, rule := range cfg.Rules {
		rules[op] = rule
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		rules:           rules,
		cleanupInterval: interval,
		clock:           clock,
		entries:         make(map[string]*entry),
		cleanupCtx:      ctx,
		cleanupCancel:   cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Rule returns the configured rule for operation.
func (l *Limiter) Rule(operation string) (Rule, bool) {
	rule, ok := l.rules[operation]
	return rule, ok
}

// Allow checks the quota for userID on operation and records the call when it
// is accepted. Check and record happen under one lock so concurrent callers
// cannot both take the last slot. Operations without a rule are always allowed.
func (l *Limiter) Allow(userID, operation string) LimitResult {
	rule, ok := l.rules[operation]
	if !ok || rule.Limit <= 0 || rule.Window <= 0 {
		return LimitResult{Allowed: true}
	}

	l.startCleanup()
	now := l.clock.Now()
	key := userKey(operation, userID)

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	if e == nil {
		e = &entry{window: rule.Window}
		l.entries[key] = e
	}
	e.window = rule.Window
	e.prune(now)

	if len(e.hits) >= rule.Limit {
		return LimitResult{
			Allowed:    false,
			Limit:      rule.Limit,
			Remaining:  0,
			RetryAfter: e.hits[0].Add(rule.Window).Sub(now),
		}
	}

	e.hits = append(e.hits, now)
	return LimitResult{
		Allowed:   true,
		Limit:     rule.Limit,
		Remaining: rule.Limit - len(e.hits),
	}
}

func hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// userKey keys quotas by operation and user id. User ids are opaque token
// subjects, so they are compared exactly and never case folded.
func userKey(operation, userID string) string {
	return hashKey(operation+":", userID)
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(l.cleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.entries {
		e.prune(now)
		if len(e.hits) == 0 {
			delete(l.entries, k)
		}
	}
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
