package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemory is a process-local fixed-window limiter. The zero value is not
// usable; call NewInMemory.
type InMemory struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]Entry

	// opportunistic GC of expired keys, every cleanupN checks
	checks   int
	cleanupN int
}

// Option customizes an InMemory limiter.
type Option func(*InMemory)

// WithClock injects the time source. Tests pass a ManualClock's Now.
func WithClock(now func() time.Time) Option {
	return func(l *InMemory) {
		if now != nil {
			l.now = now
		}
	}
}

// NewInMemory validates cfg and returns a ready limiter.
func NewInMemory(cfg Config, opts ...Option) (*InMemory, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &InMemory{
		window:   cfg.Window,
		max:      cfg.Max,
		now:      time.Now,
		entries:  make(map[string]Entry),
		cleanupN: 5000,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check consumes one unit of key's budget and reports whether the request is
// allowed.
func (l *InMemory) Check(key string) bool {
	return l.take(key).Allowed
}

// Get returns key's entry if its window is still open. Expired entries are
// reported as absent but not removed.
func (l *InMemory) Get(key string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok || l.now().After(e.ResetAt) {
		return Entry{}, false
	}
	return e, true
}

// Allow implements Limiter. It never returns an error.
func (l *InMemory) Allow(_ context.Context, key string) (Decision, error) {
	return l.take(key), nil
}

// Reset implements Limiter by deleting key's entry.
func (l *InMemory) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
	return nil
}

// Len returns the number of tracked keys, expired ones included.
func (l *InMemory) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *InMemory) take(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.checks++
	if l.checks%l.cleanupN == 0 {
		for k, e := range l.entries {
			if now.After(e.ResetAt) {
				delete(l.entries, k)
			}
		}
	}

	e, ok := l.entries[key]
	if !ok || now.After(e.ResetAt) {
		e = Entry{Count: 1, ResetAt: now.Add(l.window)}
		l.entries[key] = e
		return Decision{Allowed: true, Remaining: l.max - 1, ResetAt: e.ResetAt}
	}
	if e.Count >= l.max {
		return Decision{Allowed: false, Remaining: 0, ResetAt: e.ResetAt}
	}
	e.Count++
	l.entries[key] = e
	return Decision{Allowed: true, Remaining: l.max - e.Count, ResetAt: e.ResetAt}
}

// ManualClock is a settable time source for tests.
type ManualClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewManualClock starts the clock at t.
func NewManualClock(t time.Time) *ManualClock { return &ManualClock{t: t} }

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
