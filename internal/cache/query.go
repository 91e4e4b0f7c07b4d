package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Query loads a value once and serves it until Invalidate. Concurrent callers
// of a cold query share a single load.
type Query[T any] struct {
	load  func(ctx context.Context) (T, error)
	group singleflight.Group

	mu     sync.RWMutex
	value  T
	loaded bool
	gen    uint64
}

func NewQuery[T any](load func(ctx context.Context) (T, error)) *Query[T] {
	return &Query[T]{load: load}
}

func (q *Query[T]) cached() (T, bool, uint64) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.value, q.loaded, q.gen
}

// Get returns the cached value, loading it first if needed. Failed loads are
// not cached. The shared load is detached from the cancellation of whichever
// caller started it.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	if v, ok, _ := q.cached(); ok {
		return v, nil
	}

	v, err, _ := q.group.Do("load", func() (any, error) {
		cur, ok, gen := q.cached()
		if ok {
			return cur, nil
		}

		val, err := q.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		q.mu.Lock()
		if q.gen == gen {
			q.value = val
			q.loaded = true
		}
		q.mu.Unlock()

		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the cached value. A load already in flight still answers
// its callers but is not kept.
func (q *Query[T]) Invalidate() {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	q.value = zero
	q.loaded = false
	q.gen++
}

func (q *Query[T]) Loaded() bool {
	_, ok, _ := q.cached()
	return ok
}
