package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrLoopStopped is returned when work is handed to a stopped Loop.
var ErrLoopStopped = errors.New("app: loop stopped")

// Loop runs submitted functions one at a time on a single goroutine. Cells
// are not safe for concurrent use; routing every access through one Loop
// keeps each cell confined to one goroutine.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewLoop creates a Loop with room for buffer pending tasks.
func NewLoop(logger *slog.Logger, buffer int) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		tasks:  make(chan func(), buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run processes tasks until ctx is cancelled or Stop is called. Either
// way the loop is stopped afterwards and Dispatch reports false.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.tasks:
			l.execute(fn)
		case <-l.done:
			return nil
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		}
	}
}

// Stop makes Run return. Pending tasks are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Dispatch queues fn. It reports false if the loop has been stopped.
func (l *Loop) Dispatch(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for its result. It must not be called
// from the loop goroutine itself.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	res := make(chan error, 1)
	ok := l.Dispatch(func() {
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("loop task panic", "panic", r, "stack", string(debug.Stack()))
				res <- fmt.Errorf("app: task panicked: %v", r)
			}
		}()
		res <- fn()
	})
	if !ok {
		return ErrLoopStopped
	}

	select {
	case err := <-res:
		return err
	case <-l.done:
		select {
		case err := <-res:
			return err
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// execute runs fn and keeps the loop alive if it panics.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
