// Package loop provides a serial event loop.
//
// A flow controller is not safe for concurrent use; every call into it and
// every operation completion must run on one goroutine. Hosts without their
// own event loop (the websocket server, the headless runner) create a Loop,
// call Run on a dedicated goroutine and Post work to it from anywhere.
package loop

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrStopped is returned when work is submitted to a stopped loop
	ErrStopped = errors.New("event loop stopped")

	// ErrRunning is returned when Run is called twice
	ErrRunning = errors.New("event loop already running")
)

// Loop runs posted functions one at a time in arrival order
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool
	running bool

	wake chan struct{}
	done chan struct{}
}

// New creates a Loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn and returns immediately. It reports false, dropping fn, once
// the loop has been stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	l.signal()
	return true
}

// Do runs fn on the loop and waits for it to finish.
// It must not be called from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The loop drains its queue before exiting
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Run processes events until Stop is called or ctx is done. Events queued
// before Stop still run. Run returns nil after Stop and ctx.Err() on
// cancellation.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrRunning
	}
	l.running = true
	l.mu.Unlock()

	defer close(l.done)

	for {
		batch, stopped := l.take()
		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if stopped {
			return nil
		}

		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Stop rejects further posts and lets Run return once the queue is empty.
// It is safe to call more than once and from any goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.signal()
}

// Done is closed when Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) take() ([]func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := l.queue
	l.queue = nil
	return batch, l.stopped
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
