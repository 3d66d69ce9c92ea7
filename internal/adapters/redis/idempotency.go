package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempPrefix = "tableq:idemp:"

// Idempotency stores rendered join responses keyed by the caller's
// Idempotency-Key, so a retried POST replays the original 201 instead of
// joining the queue twice.
type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

// CachedResponse is the replayable part of an HTTP response.
type CachedResponse struct {
	Status int    `json:"status"`
	Result []byte `json:"result"`
}

// Get returns the cached response for key, or nil when none was stored.
func (i *Idempotency) Get(ctx context.Context, key string) (*CachedResponse, error) {
	val, err := i.client.Get(ctx, idempPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resp CachedResponse
	err = json.Unmarshal(val, &resp)
	return &resp, err
}

func (i *Idempotency) Set(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return i.client.Set(ctx, idempPrefix+key, data, ttl).Err()
}
