package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/panics"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

// ProcessFunc handles one task
type ProcessFunc[T any] func(ctx context.Context, task T) error

// ErrorFunc receives the error of a failed task
type ErrorFunc[T any] func(err error, task T)

// Options configures a queue
type Options[T any] struct {
	// OnError is called for every failed task; the default logs it
	OnError ErrorFunc[T]
	Logger  *slog.Logger
}

// Queue is a FIFO task queue with exactly one worker.
// All methods are safe for concurrent use.
type Queue[T any] struct {
	process ProcessFunc[T]
	onError ErrorFunc[T]
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	cond    *sync.Cond
	pending []T
	running bool
	closed  bool

	done chan struct{}
}

// New creates a queue and starts its worker
func New[T any](process ProcessFunc[T], opts Options[T]) *Queue[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue[T]{
		process: process,
		onError: opts.OnError,
		logger:  logger,
		done:    make(chan struct{}),
	}
	if q.onError == nil {
		q.onError = func(err error, task T) {
			q.logger.Error("task failed", "task", fmt.Sprint(task), "error", err)
		}
	}
	q.cond = sync.NewCond(&q.mu)
	q.ctx, q.cancel = context.WithCancel(context.Background())

	go q.run()

	return q
}

// Push appends task to the queue. It never blocks.
func (q *Queue[T]) Push(task T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return domain.ErrQueueClosed
	}
	q.pending = append(q.pending, task)
	q.cond.Broadcast()
	return nil
}

// Len returns the number of tasks waiting to start
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Idle returns true if nothing is pending or running
func (q *Queue[T]) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) == 0 && !q.running
}

// Wait blocks until the queue is drained, or until the worker has exited
// after Close.
func (q *Queue[T]) Wait() {
	q.mu.Lock()
	for (len(q.pending) > 0 || q.running) && !q.closed {
		q.cond.Wait()
	}
	closed := q.closed
	q.mu.Unlock()

	if closed {
		<-q.done
	}
}

// Close stops accepting tasks and drops the ones not yet started.
// A task already running is allowed to finish.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	dropped := len(q.pending)
	q.pending = nil
	q.cond.Broadcast()
	q.mu.Unlock()

	if dropped > 0 {
		q.logger.Debug("queue closed with pending tasks", "dropped", dropped)
	}
}

// Shutdown closes the queue, cancels the in-flight task's context and
// waits for the worker to exit.
func (q *Queue[T]) Shutdown() {
	q.Close()
	q.cancel()
	<-q.done
}

func (q *Queue[T]) run() {
	defer close(q.done)
	defer q.cancel()

	for {
		task, ok := q.next()
		if !ok {
			return
		}
		q.exec(task)
	}
}

// next blocks until a task is available or the queue is closed
func (q *Queue[T]) next() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) == 0 && !q.closed {
		q.cond.Wait()
	}

	var zero T
	if q.closed {
		return zero, false
	}

	task := q.pending[0]
	q.pending[0] = zero
	q.pending = q.pending[1:]
	q.running = true
	return task, true
}

func (q *Queue[T]) exec(task T) {
	var err error
	var pc panics.Catcher
	pc.Try(func() {
		err = q.process(q.ctx, task)
	})
	if r := pc.Recovered(); r != nil {
		err = r.AsError()
	}

	if err != nil {
		q.handleError(err, task)
	}

	q.mu.Lock()
	q.running = false
	q.cond.Broadcast()
	q.mu.Unlock()
}

// handleError shields the worker from a panicking error handler
func (q *Queue[T]) handleError(err error, task T) {
	var pc panics.Catcher
	pc.Try(func() { q.onError(err, task) })
	if r := pc.Recovered(); r != nil {
		q.logger.Error("error handler panicked", "task", fmt.Sprint(task), "panic", r.String())
	}
}
