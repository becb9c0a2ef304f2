// Package ratelimit implements fixed-window request counters used by the
// sensitive endpoints (login, registration, AI generation).
//
// Two stores share the Limiter contract:
//
//   - InMemory: process-local map guarded by a mutex. Each server instance (or
//     test) constructs and owns its own limiter.
//   - Redis: the same window semantics evaluated atomically in Redis so that
//     several instances share one budget per key.
//
// Window semantics for a key with limit N:
//
//	no entry            -> create {count: 1, resetAt: now+window}, allow
//	active, count < N   -> count++, allow
//	active, count >= N  -> deny, no mutation
//	expired (now > resetAt) -> treated as no entry
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Config sets the window length and the maximum requests per window.
type Config struct {
	Window time.Duration
	Max    int
}

func (c Config) validate() error {
	if c.Window <= 0 {
		return errors.New("ratelimit: window must be > 0")
	}
	if c.Max <= 0 {
		return errors.New("ratelimit: max must be > 0")
	}
	return nil
}

// Entry is the state of one key.
type Entry struct {
	Count   int
	ResetAt time.Time
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long a denied caller should wait, rounded up to a
// whole second and never less than one.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	return (wait + time.Second - 1).Truncate(time.Second)
}

// Limiter is the contract consumed by HTTP handlers.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}

// Key joins the parts into a limiter key. Parts are trimmed and case-folded
// so that "Bob@Example.com" and "bob@example.com " share one budget.
func Key(parts ...string) string {
	folder := cases.Fold()
	norm := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		norm = append(norm, folder.String(p))
	}
	return strings.Join(norm, ":")
}
