package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/zlog"
)

const (
	defaultPrefix   = "graphics:lock:"
	releaseTimeout  = 2 * time.Second
	defaultInterval = 50 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lease never removes somebody else's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a Locker shared between processes through SET NX leases.
type Redis struct {
	client   redis.UniversalClient
	ttl      time.Duration
	interval time.Duration
	prefix   string
}

// NewRedis creates a Redis locker. ttl bounds how long a crashed holder can
// block others and should exceed the render timeout.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{
		client:   client,
		ttl:      ttl,
		interval: defaultInterval,
		prefix:   defaultPrefix,
	}
}

// Acquire polls until the lease is granted or ctx is done.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	k := r.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()

			if err := releaseScript.Run(rctx, r.client, []string{k}, token).Err(); err != nil {
				zlog.Logger.Err(err).Str("key", key).Msg("failed to release lock")
			}
		})
	}, nil
}
