package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key template: ratelimit:{policy}:{identifier}
const keyRateLimit = "ratelimit:%s:%s"

// Redis is a fixed-window counter shared by every instance pointing at the
// same Redis. The increment and TTL read run in one MULTI/EXEC.
type Redis struct {
	rdb    *redis.Client
	policy Policy
	now    func() time.Time
}

func NewRedis(rdb *redis.Client, p Policy) (*Redis, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb, policy: p, now: time.Now}, nil
}

func (l *Redis) Limit(ctx context.Context, identifier string) (Result, error) {
	key := fmt.Sprintf(keyRateLimit, l.policy.Name, identifier)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := incr.Val()
	window := ttl.Val()
	if window < 0 {
		// First hit of the window (or a key that lost its TTL).
		if err := l.rdb.PExpire(ctx, key, l.policy.Window).Err(); err != nil {
			return Result{}, fmt.Errorf("rate limit expire %s: %w", key, err)
		}
		window = l.policy.Window
	}

	remaining := int64(l.policy.Quota) - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Success:   count <= int64(l.policy.Quota),
		Limit:     l.policy.Quota,
		Remaining: int(remaining),
		Reset:     l.now().Add(window),
	}, nil
}
