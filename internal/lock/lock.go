// Package lock provides per-restaurant mutual exclusion. Every mutating
// queue operation for a restaurant runs under its lock so count-then-insert
// and recompute passes never interleave.
package lock

import (
	"context"
	"sync"
)

// Locker serializes work scoped to a single restaurant. Acquire blocks until
// the lock is held or ctx is done; the returned function releases it.
type Locker interface {
	Acquire(ctx context.Context, restaurant string) (release func(), err error)
}

// Keyed is an in-process Locker backed by one single-slot semaphore per
// restaurant, so a waiter can still be cancelled through ctx. Sufficient for
// a single API instance and for tests; deployments running several instances
// use the Redis locker instead.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]chan struct{})}
}

func (k *Keyed) Acquire(ctx context.Context, restaurant string) (func(), error) {
	k.mu.Lock()
	sem, ok := k.locks[restaurant]
	if !ok {
		sem = make(chan struct{}, 1)
		k.locks[restaurant] = sem
	}
	k.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
