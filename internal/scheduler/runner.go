package scheduler

// Runner invokes a function now or later depending on how it was built.
type Runner[A any] interface {
	// Call requests an invocation with a.
	Call(a A)
	// Cancel discards a pending invocation, if any.
	Cancel() bool
	// Flush runs a pending invocation now, if any.
	Flush() bool
	// Pending reports whether an invocation is waiting.
	Pending() bool
}

// Immediate runs fn synchronously on every Call. It never has anything
// pending.
type Immediate[A any] struct {
	fn func(A)
}

// NewImmediate returns a synchronous runner around fn.
func NewImmediate[A any](fn func(A)) *Immediate[A] {
	return &Immediate[A]{fn: fn}
}

// Call runs fn(a) before returning.
func (r *Immediate[A]) Call(a A) { r.fn(a) }

func (r *Immediate[A]) Cancel() bool { return false }

func (r *Immediate[A]) Flush() bool { return false }

func (r *Immediate[A]) Pending() bool { return false }

// Wrap resolves cfg: a disabled config returns an Immediate runner, anything
// else a Debouncer with the resolved window. The result is fixed for its
// lifetime; changing the window means calling Wrap again.
func Wrap[A any](fn func(A), cfg Config, opts ...Option) Runner[A] {
	wait, enabled := cfg.Resolve()
	if !enabled {
		return NewImmediate(fn)
	}
	return New(fn, wait, opts...)
}
