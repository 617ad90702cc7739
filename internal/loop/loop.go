// Package loop provides a single-goroutine executor.
//
// Entity state in package ha is not safe for concurrent use. Transport
// callbacks, timers and input readers therefore never touch entities
// directly: they post closures onto a Loop, and the Loop runs them one at
// a time on its own goroutine.
package loop

import (
	"context"
	"fmt"
	"sync"
)

// DefaultQueueLen is the task queue length used when New is given 0.
const DefaultQueueLen = 64

// Logger defines the logging interface used by the Loop.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// Loop runs posted tasks sequentially on the goroutine that called Run.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	once   sync.Once
	logger Logger
}

// New creates a loop with a task queue of queueLen entries.
func New(queueLen int) *Loop {
	if queueLen <= 0 {
		queueLen = DefaultQueueLen
	}
	return &Loop{
		tasks:  make(chan func(), queueLen),
		done:   make(chan struct{}),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the loop.
func (l *Loop) SetLogger(logger Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Run executes tasks until ctx is cancelled. Tasks still queued at that
// point are discarded. A task that panics is logged and the loop carries on.
//
// Run must be called once.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })

	l.logger.Debug("loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("loop stopped", "pending", len(l.tasks))
			return
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in loop task", "panic", fmt.Sprintf("%v", r))
		}
	}()
	fn()
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Post queues fn, blocking while the queue is full. It returns ErrStopped
// once the loop has exited.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// TryPost queues fn without blocking. Transport callbacks use it so a
// stalled loop cannot stall the network client.
func (l *Loop) TryPost(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Call runs fn on the loop and waits for its result. If fn panics, Call
// returns ErrPanicked.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() {
		err := ErrPanicked
		defer func() { result <- err }()
		err = fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-l.done:
		// The task may have run just before the loop exited.
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
