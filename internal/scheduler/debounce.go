// Package scheduler defers and coalesces repeated calls.
//
// A [Debouncer] collapses a burst of calls into one trailing invocation that
// receives the arguments of the last call in the burst. There is no
// leading-edge call and no throttling. [Wrap] picks between a Debouncer and a
// plain synchronous runner from a [Config].
package scheduler

import (
	"sync"
	"time"
)

// Timer is a pending timer that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock creates timers. The default clock uses time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall clock.
func RealClock() Clock {
	return realClock{}
}

// Option configures a Debouncer.
type Option func(*options)

type options struct {
	clock    Clock
	dispatch func(func())
}

// WithClock sets the timer source.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithDispatcher sets where a fired call runs. The dispatcher receives a
// closure and must run it exactly once, on any goroutine. Hosts with their
// own event loop use this to post fired calls onto that loop. The default
// runs the call on the timer goroutine.
func WithDispatcher(dispatch func(func())) Option {
	return func(o *options) {
		if dispatch != nil {
			o.dispatch = dispatch
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		clock:    realClock{},
		dispatch: func(f func()) { f() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Debouncer coalesces calls to fn that arrive within wait of each other.
// It is safe for concurrent use.
type Debouncer[A any] struct {
	fn       func(A)
	wait     time.Duration
	clock    Clock
	dispatch func(func())

	mu      sync.Mutex
	timer   Timer
	gen     uint64 // bumped on every Call, Cancel and Flush
	args    A
	pending bool
}

// New returns a Debouncer around fn with the given window.
func New[A any](fn func(A), wait time.Duration, opts ...Option) *Debouncer[A] {
	o := buildOptions(opts)
	return &Debouncer[A]{
		fn:       fn,
		wait:     wait,
		clock:    o.clock,
		dispatch: o.dispatch,
	}
}

// Wait returns the coalescing window.
func (d *Debouncer[A]) Wait() time.Duration {
	return d.wait
}

// Call schedules fn(a) after the window, replacing any pending call.
func (d *Debouncer[A]) Call(a A) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.args = a
	d.pending = true
	d.timer = d.clock.AfterFunc(d.wait, func() {
		d.dispatch(func() { d.fire(gen) })
	})
}

// fire runs the pending call if it still belongs to generation gen. The
// check happens when the dispatched closure runs, so a Cancel issued after
// the timer fired but before the host ran the closure still wins.
func (d *Debouncer[A]) fire(gen uint64) {
	d.mu.Lock()
	if !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	a := d.take()
	d.mu.Unlock()

	d.fn(a)
}

// take clears the pending state and returns its arguments. Caller holds mu.
func (d *Debouncer[A]) take() A {
	a := d.args
	var zero A
	d.args = zero
	d.pending = false
	d.timer = nil
	return a
}

// Cancel discards the pending call. It reports whether one was pending.
func (d *Debouncer[A]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.take()
	return true
}

// Flush runs the pending call immediately on the caller's goroutine.
// It reports whether one was pending.
func (d *Debouncer[A]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	a := d.take()
	d.mu.Unlock()

	d.fn(a)
	return true
}

// Pending reports whether a call is waiting to fire.
func (d *Debouncer[A]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
