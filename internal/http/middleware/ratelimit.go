package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/problem"
	"github.com/tbourn/tenx-cards/internal/ratelimit"
)

// KeyFunc selects the identity a request is counted against.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP counts signed-in users as "user:<id>" and everybody else as
// "ip:<addr>".
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

// KeyByUser counts per signed-in user. Mount after RequireSession.
func KeyByUser() KeyFunc {
	return func(c *gin.Context) string { return "user:" + UserID(c) }
}

// ----- global token bucket -----

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token bucket per key, used as a coarse
// abuse guard in front of the whole API. Idle buckets are dropped every few
// thousand lookups.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc
	ttl   time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (coerced to at least 1).
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		ttl:      10 * time.Minute,
		visitors: make(map[string]*visitor),
	}
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// evict before touching key so a stale bucket is not refreshed
	rl.lookups++
	if rl.lookups >= 5000 {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Handler rejects requests over budget with system/rate-limited. Idempotent
// replays pass without spending a token.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) || rl.bucket(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		WriteProblem(c, apperr.SystemRateLimited.New("Too many requests. Please slow down.",
			problemMeta("retryAfter", 1)))
	}
}

// ----- fixed windows -----

// Enforce spends one unit of key's budget on l. When the budget is exhausted
// it returns an error of kind k with meta.retryAfter in seconds. A failing
// store is logged and the request allowed.
func Enforce(c *gin.Context, l ratelimit.Limiter, k *problem.Kind, key string) error {
	if l == nil {
		return nil
	}
	d, err := l.Allow(c.Request.Context(), key)
	if err != nil {
		LoggerFrom(c).Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		return nil
	}
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if d.Allowed {
		return nil
	}
	secs := int(d.RetryAfter(time.Now()).Seconds())
	return k.New("Too many requests. Please try again later.", problemMeta("retryAfter", secs))
}

// WindowLimit mounts Enforce as middleware keyed by keyFn. Idempotent
// replays bypass it.
func WindowLimit(l ratelimit.Limiter, k *problem.Kind, keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		if err := Enforce(c, l, k, keyFn(c)); err != nil {
			WriteProblem(c, err)
			return
		}
		c.Next()
	}
}

// IsRateBypass reports whether IdempotencyKey marked the request as a replay.
func IsRateBypass(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyRateBypass)
	b, _ := v.(bool)
	return b
}
