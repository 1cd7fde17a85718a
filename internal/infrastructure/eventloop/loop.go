// Package eventloop provides the single thread on which decks are mutated
// and the schedulers that post timer callbacks back onto it.
package eventloop

import (
	"context"
	"fmt"
	"sync"

	"dopamine-deck/internal/core/domain/exceptions"

	"go.uber.org/zap"
)

// Loop runs posted functions one at a time, in arrival order, on a single
// goroutine.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
	log   *zap.Logger
}

func New(buffer int, log *zap.Logger) *Loop {
	if log == nil {
		panic("logger is nil")
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
		log:   log,
	}
}

// Run executes posted functions until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	l.log.Info("event loop started")
	defer l.log.Info("event loop stopped")
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.done:
			return
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("event loop: task panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}

// Post enqueues fn. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it to return.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return exceptions.ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return exceptions.ErrLoopStopped
	}
}

func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}
