// Package task runs deferred work whose lifetime is bound to a context.
package task

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCanceled is returned by Wait when a task was canceled before it ran.
var ErrCanceled = errors.New("task canceled")

// Task is a unit of deferred work. A Task runs at most once.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// After schedules fn to run once delay has elapsed, unless ctx is canceled or
// Cancel is called first. A zero delay runs fn on a new goroutine at once.
func After(ctx context.Context, delay time.Duration, fn func(context.Context) error) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer cancel()

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				t.setErr(ErrCanceled)
				return
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			t.setErr(ErrCanceled)
			return
		}
		t.setErr(fn(ctx))
	}()

	return t
}

func (t *Task) setErr(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

// Cancel stops the task if it has not started. A running fn sees its context
// canceled.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed when the task has finished or was canceled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its result.
func (t *Task) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Debouncer collapses bursts of triggers into one call made delay after the
// last trigger. Calls never overlap.
type Debouncer struct {
	ctx   context.Context
	delay time.Duration

	mu      sync.Mutex
	pending *Task
	idle    chan struct{} // closed once every triggered task has settled
	closed  bool
}

// NewDebouncer creates a Debouncer whose tasks are canceled with ctx.
func NewDebouncer(ctx context.Context, delay time.Duration) *Debouncer {
	idle := make(chan struct{})
	close(idle)
	return &Debouncer{ctx: ctx, delay: delay, idle: idle}
}

// Trigger cancels any pending call and schedules fn. A call that already
// started runs to completion before fn does. It returns the scheduled task,
// or nil once the debouncer is closed.
func (d *Debouncer) Trigger(fn func(context.Context) error) *Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	if d.pending != nil {
		d.pending.Cancel()
	}

	prevIdle := d.idle
	idle := make(chan struct{})
	t := After(d.ctx, d.delay, func(ctx context.Context) error {
		<-prevIdle
		if ctx.Err() != nil {
			return ErrCanceled
		}
		return fn(ctx)
	})
	go func() {
		<-t.Done()
		<-prevIdle
		close(idle)
	}()

	d.pending = t
	d.idle = idle
	return t
}

// Flush waits for the pending call, if any, and every call before it.
func (d *Debouncer) Flush() error {
	d.mu.Lock()
	p, idle := d.pending, d.idle
	d.mu.Unlock()
	<-idle
	if p == nil {
		return nil
	}
	err := p.Wait()
	if errors.Is(err, ErrCanceled) {
		return nil
	}
	return err
}

// Close cancels the pending call and rejects further triggers. Calls that
// already started finish before Close returns.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	p, idle := d.pending, d.idle
	d.pending = nil
	d.mu.Unlock()

	if p != nil {
		p.Cancel()
	}
	<-idle
}
