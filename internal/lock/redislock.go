// Package lock serializes cart mutations across processes. The in-process
// cart mutex only covers a single instance; deployments running several
// instances against shared stock take a Redis lease around commit.
package lock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lease is a Redis-backed mutual exclusion lease keyed per cart line.
type Lease struct {
	Client *redis.Client
	Retry  time.Duration
}

// CartKey names the lease guarding one (cart, variant) line.
func CartKey(cartID, variantID string) string {
	return "cartlock:" + cartID + ":" + variantID
}

// Do runs fn while holding the lease for key. The lease is released when fn
// returns, error or not. Acquisition retries until the context is cancelled.
func (l Lease) Do(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.Client == nil {
		return errors.New("lock: redis client not configured")
	}
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	retry := l.Retry
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	token := uuid.NewString()

	for {
		acquired, err := l.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return err
		}
		if acquired {
			defer l.release(context.Background(), key, token)
			return fn(ctx)
		}
		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// release deletes the lease only when it still carries our token, so an
// expired lease taken over by another holder is left alone.
func (l Lease) release(ctx context.Context, key, token string) {
	const script = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`
	if err := l.Client.Eval(ctx, script, []string{key}, token).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unknown command") {
			_ = l.Client.Del(ctx, key).Err()
		}
	}
}
