// Package queue is a bounded in-memory FIFO used as the mailbox between command
// runners and the single loop that applies their results.
package queue

import (
	"context"
	"sync"

	"github.com/okian/lojista/pkg/metrics"
)

const defaultCapacity = 64

// Queue provides enqueue and channel-based dequeue semantics.
type Queue[T any] interface {
	// Enqueue adds an item without blocking. It returns false when the queue
	// is full or closed.
	Enqueue(ctx context.Context, item T) bool

	// Put adds an item, waiting for room until ctx is done or the queue closes.
	Put(ctx context.Context, item T) error

	// Dequeue returns the receive side. It is closed by Close.
	Dequeue() <-chan T

	// Len returns the number of buffered items.
	Len() int

	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue[T any] struct {
	items    chan T
	capacity int
	gauge    bool

	closing   chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewInMemoryQueue creates a queue.
func NewInMemoryQueue[T any](opts ...Option) *InMemoryQueue[T] {
	o := options{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	q := &InMemoryQueue[T]{
		items:    make(chan T, o.capacity),
		capacity: o.capacity,
		gauge:    o.name != "",
		closing:  make(chan struct{}),
	}
	q.report()
	return q
}

// Enqueue adds an item if there is room.
func (q *InMemoryQueue[T]) Enqueue(ctx context.Context, item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed || ctx.Err() != nil {
		return false
	}
	select {
	case q.items <- item:
		q.report()
		return true
	default:
		return false
	}
}

// Put adds an item, blocking while the queue is full.
func (q *InMemoryQueue[T]) Put(ctx context.Context, item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.items <- item:
		q.report()
		return nil
	case <-q.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue[T]) Dequeue() <-chan T { return q.items }

// Len returns the current number of queued items.
func (q *InMemoryQueue[T]) Len() int {
	n := len(q.items)
	if q.gauge {
		metrics.UpdateMailboxDepth(n)
	}
	return n
}

// Close stops accepting items. Buffered items stay readable until drained.
func (q *InMemoryQueue[T]) Close() error {
	q.closeOnce.Do(func() { close(q.closing) })

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true once Close has been called.
func (q *InMemoryQueue[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue[T]) report() {
	if q.gauge {
		metrics.UpdateMailboxDepth(len(q.items))
	}
}
