// Package loop serializes work from many goroutines onto one.
//
// Machines, managers and pools are single-threaded. Hosts that receive events on
// other goroutines (timers, HTTP handlers, signal handlers) submit them to a Loop,
// which runs them one at a time, each to completion, on the goroutine calling Run.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/tinyfsm/internal/logging"
)

var (
	// ErrClosed is returned when work is submitted to a closed loop.
	ErrClosed = errors.New("loop closed")
	// ErrPanicked is returned by Call when the function panics.
	ErrPanicked = errors.New("loop task panicked")
)

// Loop runs submitted functions sequentially.
type Loop struct {
	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to report panicking tasks.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithBacklog sets how many tasks may be queued before Do blocks.
func WithBacklog(n int) Option {
	return func(l *Loop) {
		l.tasks = make(chan func(), n)
	}
}

// New creates a loop. It does nothing until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		tasks:  make(chan func(), 64),
		done:   make(chan struct{}),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes tasks until ctx is cancelled or Close is called.
// It returns ctx.Err() on cancellation and nil after Close.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

// Do queues fn. It reports false if the loop is closed.
func (l *Loop) Do(fn func()) bool {
	return l.submit(context.Background(), fn) == nil
}

// Call runs fn on the loop and waits for its result.
// It must not be called from a task running on the same loop.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("%w: %v", ErrPanicked, r)
				l.logger.Error("loop task panicked", "err", err)
				errc <- err
			}
		}()
		errc <- fn()
	}
	if err := l.submit(ctx, task); err != nil {
		return err
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// AfterFunc runs fn on the loop once d has elapsed.
// Calling stop before fn starts guarantees fn never runs, even if the timer
// already fired and the task is waiting in the queue.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (stop func()) {
	var stopped atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Do(func() {
			if stopped.Load() {
				return
			}
			fn()
		})
	})
	return func() {
		stopped.Store(true)
		t.Stop()
	}
}

// Close stops Run and rejects further work. Queued tasks are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

func (l *Loop) submit(ctx context.Context, fn func()) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}

	select {
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case l.tasks <- fn:
		return nil
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked", "err", fmt.Errorf("panic: %v", r))
		}
	}()
	fn()
}
