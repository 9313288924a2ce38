// Package dedupe remembers rating idempotency keys so a replayed submission is
// answered without being applied twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 10_000

// Deduper records seen keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so it can be retried. Used when a recorded
	// submission could not be applied.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper keeps keys in insertion order. When bounded, recording past
// the limit evicts the oldest key.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is newest
	maxSize int        // <= 0 means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushFront(key)
	d.size.Store(int64(d.order.Len()))
	return false
}

// Unrecord implements Deduper.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Store(int64(d.order.Len()))
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Back()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.seen, el.Value.(string))
}

// Size implements Deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
