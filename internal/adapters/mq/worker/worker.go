// Package worker runs commands off the caller's goroutine and hands their
// results to a sink.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/okian/lojista/internal/adapters/mq/queue"
	"github.com/okian/lojista/pkg/logger"
	"github.com/okian/lojista/pkg/metrics"
)

const (
	defaultWorkerCount  = 4
	defaultTaskCapacity = 64
)

// ErrStopped is returned by Submit after Shutdown.
var ErrStopped = errors.New("worker pool stopped")

// Task is one unit of work producing a result.
type Task[R any] func(ctx context.Context) R

// Source is where workers receive tasks from.
type Source[R any] interface {
	Dequeue() <-chan Task[R]
}

// Sink receives task results.
type Sink[R any] interface {
	Put(ctx context.Context, r R) error
}

// Worker runs tasks until its source is drained or it is told to stop.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker[R any] struct {
	source Source[R]
	sink   Sink[R]
	name   string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from source and writing to sink.
func NewInMemoryWorker[R any](source Source[R], sink Sink[R], opts ...Option) *InMemoryWorker[R] {
	s := settings{name: "worker", logger: logger.Discard()}
	for _, opt := range opts {
		opt(&s)
	}
	return &InMemoryWorker[R]{
		source:   source,
		sink:     sink,
		name:     s.name,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   s.logger.Named(s.name),
	}
}

// Run starts the worker loop.
func (w *InMemoryWorker[R]) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			w.process(ctx, task)
		}
	}
}

func (w *InMemoryWorker[R]) process(ctx context.Context, task Task[R]) {
	defer metrics.AddPendingCommands(-1)

	result := task(ctx)
	if err := w.sink.Put(ctx, result); err != nil {
		w.logger.Warn(ctx, "result dropped", logger.Error(err))
	}
}

// Shutdown signals the worker and waits for it to return.
func (w *InMemoryWorker[R]) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool owns a task queue and the workers draining it.
type Pool[R any] struct {
	tasks   *queue.InMemoryQueue[Task[R]]
	workers []*InMemoryWorker[R]
	logger  logger.Logger

	startOnce sync.Once
	started   atomic.Bool
}

// NewPool creates a pool of workerCount workers delivering results to sink.
func NewPool[R any](workerCount int, sink Sink[R], opts ...Option) *Pool[R] {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	s := settings{logger: logger.Discard(), capacity: defaultTaskCapacity}
	for _, opt := range opts {
		opt(&s)
	}

	p := &Pool[R]{
		tasks:   queue.NewInMemoryQueue[Task[R]](queue.WithCapacity(s.capacity)),
		workers: make([]*InMemoryWorker[R], workerCount),
		logger:  s.logger.Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker[R](p.tasks, sink,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(s.logger),
		)
	}
	return p
}

// Start launches the workers. Calling it twice has no effect.
func (p *Pool[R]) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.started.Store(true)
		for _, w := range p.workers {
			go w.Run(ctx)
		}
	})
}

// Submit queues a task, waiting for room.
func (p *Pool[R]) Submit(ctx context.Context, task Task[R]) error {
	metrics.AddPendingCommands(1)
	if err := p.tasks.Put(ctx, task); err != nil {
		metrics.AddPendingCommands(-1)
		if errors.Is(err, queue.ErrClosed) {
			return ErrStopped
		}
		return err
	}
	return nil
}

// Shutdown stops accepting tasks, lets the workers drain what is queued and
// waits for them until ctx is done.
func (p *Pool[R]) Shutdown(ctx context.Context) error {
	if err := p.tasks.Close(); err != nil {
		p.logger.Error(ctx, "error closing task queue", logger.Error(err))
	}
	if !p.started.Load() {
		return nil
	}

	var errs []error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, w.Shutdown(ctx))
		}
	}
	return errors.Join(errs...)
}
