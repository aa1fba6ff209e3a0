package searchable

// Context is what a presentation callback receives.
type Context[T any] struct {
	// Items is the current result set.
	Items []T
	// Query is the current query, already reflecting the latest input.
	Query string
	// OnChange feeds raw input back into the Searchable.
	OnChange func(text string)
}

// PresentFunc turns the current state into presentation output.
type PresentFunc[T, O any] func(ctx Context[T]) O

// PresentationMode records which callback slot was supplied.
type PresentationMode int

const (
	PresentNone PresentationMode = iota
	PresentChildren
	PresentRender
)

func (m PresentationMode) String() string {
	switch m {
	case PresentChildren:
		return "children"
	case PresentRender:
		return "render"
	default:
		return "none"
	}
}

type presentation[T, O any] struct {
	mode PresentationMode
	fn   PresentFunc[T, O]
}

// selectPresentation picks exactly one callback. Supplying both is an error.
func selectPresentation[T, O any](children, render PresentFunc[T, O]) (presentation[T, O], error) {
	switch {
	case children != nil && render != nil:
		return presentation[T, O]{}, ErrConflictingPresentation
	case children != nil:
		return presentation[T, O]{mode: PresentChildren, fn: children}, nil
	case render != nil:
		return presentation[T, O]{mode: PresentRender, fn: render}, nil
	default:
		return presentation[T, O]{mode: PresentNone}, nil
	}
}

func (p presentation[T, O]) present(ctx Context[T]) (O, bool) {
	if p.fn == nil {
		var zero O
		return zero, false
	}
	return p.fn(ctx), true
}
