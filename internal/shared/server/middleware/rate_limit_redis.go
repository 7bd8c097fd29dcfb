package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"smartmail-backend/internal/shared/telemetry"
	"smartmail-backend/internal/shared/util"
)

// windowScript counts hits in a fixed window and returns the count and the
// remaining window in milliseconds.
var windowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {n, ttl}
`)

// RedisRateLimiter shares limits across API instances. Each key may make
// Burst requests per Burst/Rate seconds. Redis errors let requests through.
type RedisRateLimiter struct {
	prefix string
	hit    func(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// NewRedisRateLimiter builds a limiter on client. Keys are hashed and
// namespaced by prefix.
func NewRedisRateLimiter(client redis.Scripter, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "smartmail:ratelimit:"
	}
	return &RedisRateLimiter{
		prefix: prefix,
		hit: func(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
			vals, err := windowScript.Run(ctx, client, []string{key}, window.Milliseconds()).Int64Slice()
			if err != nil {
				return 0, 0, err
			}
			if len(vals) != 2 {
				return 0, 0, fmt.Errorf("unexpected script reply %v", vals)
			}
			return vals[0], time.Duration(vals[1]) * time.Millisecond, nil
		},
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.disabled() {
		return true, 0
	}
	window := time.Duration(math.Ceil(float64(rule.Burst)/rule.Rate*1000)) * time.Millisecond
	count, ttl, err := l.hit(ctx, l.prefix+util.HashKey(key), window)
	if err != nil {
		telemetry.Warn("ratelimit.redis_unavailable", map[string]any{"error": err.Error()})
		return true, 0
	}
	if count <= int64(rule.Burst) {
		return true, 0
	}
	if ttl <= 0 {
		ttl = window
	}
	return false, ttl
}

