package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes queue mutations per restaurant across processes with a
// SET NX lease. The lease TTL bounds how long a crashed holder can stall a
// restaurant's queue.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl, retry: 25 * time.Millisecond}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *Locker) Acquire(ctx context.Context, restaurant string) (func(), error) {
	key := "qlock:" + restaurant
	holder := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, holder, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	release := func() {
		// Only the holder may delete the key, so an expired lease taken
		// over by another caller is never released from here.
		releaseScript.Run(context.Background(), l.client, []string{key}, holder)
	}
	return release, nil
}
