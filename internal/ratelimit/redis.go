package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindow evaluates the window transition atomically.
// KEYS[1] counter key; ARGV[1] window in ms; ARGV[2] max.
// Returns {allowed(0|1), count, pttl}.
var fixedWindow = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local max = tonumber(ARGV[2])
if count >= max then
  return {0, count, redis.call('PTTL', KEYS[1])}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {1, count, redis.call('PTTL', KEYS[1])}
`)

// Redis is a fixed-window limiter shared by every instance pointing at the
// same Redis database. Keys expire with their window, so an expired window
// simply starts over.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	window time.Duration
	max    int
	now    func() time.Time
}

// RedisOption customizes a Redis limiter.
type RedisOption func(*Redis)

// WithPrefix namespaces the counter keys (default "ratelimit").
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = strings.Trim(prefix, ":") }
}

// WithRedisClock injects the time source used to compute reset times.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *Redis) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRedis returns a limiter backed by rdb.
func NewRedis(rdb redis.Cmdable, cfg Config, opts ...RedisOption) (*Redis, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if rdb == nil {
		return nil, fmt.Errorf("ratelimit: nil redis client")
	}
	r := &Redis{
		rdb:    rdb,
		prefix: "ratelimit",
		window: cfg.Window,
		max:    cfg.Max,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Redis) key(k string) string { return r.prefix + ":" + k }

// Allow implements Limiter.
func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := fixedWindow.Run(ctx, r.rdb, []string{r.key(key)}, r.window.Milliseconds(), r.max).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis allow: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}

	pttl := time.Duration(res[2]) * time.Millisecond
	if pttl < 0 {
		pttl = r.window
	}
	remaining := r.max - int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   res[0] == 1,
		Remaining: remaining,
		ResetAt:   r.now().Add(pttl),
	}, nil
}

// Reset implements Limiter.
func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis reset: %w", err)
	}
	return nil
}
