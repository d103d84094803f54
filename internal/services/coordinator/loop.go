package coordinator

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

// DefaultQueueSize is the event buffer used by NewLoop when size is not positive
const DefaultQueueSize = 256

// Dispatcher serializes work onto the goroutine that owns coordinator state
type Dispatcher interface {
	Post(fn func())
	PostContext(ctx context.Context, fn func()) error
}

// Loop runs posted closures one at a time on a single goroutine
type Loop struct {
	events   chan func()
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// NewLoop creates a Loop. Call Run to start processing.
func NewLoop(size int, logger *slog.Logger) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		events: make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger.With(slog.String("component", "coordinator-loop")),
	}
}

// Post enqueues fn. It blocks while the queue is full and drops fn once
// the loop has stopped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// PostContext enqueues fn like Post but gives up when ctx is done first
func (l *Loop) PostContext(ctx context.Context, fn func()) error {
	select {
	case <-l.done:
		return nil
	default:
	}
	select {
	case l.events <- fn:
		return nil
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is cancelled or Stop is called
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.done:
			return
		case fn := <-l.events:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("panic in event",
				slog.Any("error", err),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	fn()
}

// Stop halts the loop. Pending events are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Done is closed once the loop has stopped
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// InlineDispatcher runs closures immediately on the caller's goroutine.
// It is only safe when callers are already serialized, as in tests.
type InlineDispatcher struct{}

// Post runs fn
func (InlineDispatcher) Post(fn func()) {
	fn()
}

// PostContext runs fn unless ctx is already done
func (InlineDispatcher) PostContext(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
}

var (
	_ Dispatcher = (*Loop)(nil)
	_ Dispatcher = InlineDispatcher{}
)
