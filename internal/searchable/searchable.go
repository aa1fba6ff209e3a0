// Package searchable tracks a live query over a candidate list and keeps a
// filtered result set in step with it.
//
// Input is captured synchronously: OnChange makes the new query visible to
// the next Render straight away. Acting on it is decoupled: the filter pass
// runs either inline or after a debounce window, depending on the
// scheduler config. Only one recompute is ever pending, and it reads the
// candidate list when it runs, not when it was requested.
//
//	s, err := searchable.New(searchable.Options[user, string]{
//		Items:     users,
//		Predicate: filter.ContainsFold(func(u user) string { return u.Name }),
//		Render:    renderList,
//	})
//	s.OnChange("jake")
//	out, _ := s.Render()
package searchable

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"searchable/internal/domain"
	"searchable/internal/eventbus"
	"searchable/internal/filter"
	"searchable/internal/scheduler"
	"searchable/internal/state"
)

var (
	// ErrNilPredicate is returned by New when no predicate is supplied.
	ErrNilPredicate = errors.New("searchable: predicate is required")
	// ErrConflictingPresentation is returned by New when both Children and
	// Render are supplied.
	ErrConflictingPresentation = errors.New("searchable: supply either Children or Render, not both")
)

// Phase is the reconciliation state.
type Phase int

const (
	Idle Phase = iota
	PendingRecompute
)

func (p Phase) String() string {
	if p == PendingRecompute {
		return "pending"
	}
	return "idle"
}

// Change identifies what an OnUpdate notification is about.
type Change int

const (
	ChangeQuery Change = iota
	ChangeItems
)

// Options configures a Searchable.
type Options[T, O any] struct {
	// Items is the candidate list. It stays owned by the caller.
	Items []T
	// Predicate decides whether an item matches the query. Required.
	Predicate filter.Predicate[T]
	// InitialQuery seeds the query and the initial result set.
	InitialQuery string
	// Debounce controls recompute scheduling. The zero value debounces with
	// scheduler.DefaultDuration.
	Debounce scheduler.Config

	// Children and Render are mutually exclusive presentation callbacks.
	Children PresentFunc[T, O]
	Render   PresentFunc[T, O]

	// Clock and Dispatch are passed through to the debouncer.
	Clock    scheduler.Clock
	Dispatch func(func())

	// Bus receives domain events. Nil means no events.
	Bus eventbus.EventBus
	// Logger receives debug output. The zero value is silent.
	Logger *zerolog.Logger
	// OnUpdate is called synchronously after every state change.
	OnUpdate func(Change)
}

type request struct {
	query string
	seq   uint64
}

// Searchable reconciles a query with a filtered result set.
type Searchable[T, O any] struct {
	predicate filter.Predicate[T]
	present   presentation[T, O]
	state     *state.QueryState[T]
	runner    scheduler.Runner[request]
	bus       eventbus.EventBus
	log       zerolog.Logger
	onUpdate  func(Change)
	deferred  bool

	mu         sync.Mutex
	candidates []T
	observed   string // query seen by the previous reconciliation
	requested  uint64
	applied    uint64
	running    int
	closed     bool
}

// New builds a Searchable and computes its initial result set synchronously.
func New[T, O any](opts Options[T, O]) (*Searchable[T, O], error) {
	if opts.Predicate == nil {
		return nil, ErrNilPredicate
	}
	present, err := selectPresentation(opts.Children, opts.Render)
	if err != nil {
		return nil, err
	}

	s := &Searchable[T, O]{
		predicate:  opts.Predicate,
		present:    present,
		bus:        opts.Bus,
		log:        zerolog.Nop(),
		onUpdate:   opts.OnUpdate,
		candidates: opts.Items,
		observed:   opts.InitialQuery,
	}
	if s.bus == nil {
		s.bus = eventbus.Nop()
	}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("component", "searchable").Logger()
	}

	initial := filter.Apply(opts.Items, opts.InitialQuery, opts.Predicate)
	s.state = state.New(opts.InitialQuery, initial)

	var schedOpts []scheduler.Option
	if opts.Clock != nil {
		schedOpts = append(schedOpts, scheduler.WithClock(opts.Clock))
	}
	if opts.Dispatch != nil {
		schedOpts = append(schedOpts, scheduler.WithDispatcher(opts.Dispatch))
	}
	s.runner = scheduler.Wrap(s.recompute, opts.Debounce, schedOpts...)
	_, s.deferred = opts.Debounce.Resolve()

	s.log.Debug().
		Str("query", opts.InitialQuery).
		Int("candidates", len(opts.Items)).
		Int("matches", len(initial)).
		Stringer("debounce", opts.Debounce).
		Stringer("presentation", present.mode).
		Msg("initialized")

	return s, nil
}

// OnChange records raw input. The query is updated before OnChange returns;
// the result set follows on the recompute path.
func (s *Searchable[T, O]) OnChange(text string) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	s.state.SetQuery(text)
	s.bus.Publish(domain.QueryChangedEvent{Query: text})
	s.notify(ChangeQuery)
	s.Reconcile()
}

// Reconcile requests a recompute if the query differs from the one seen at
// the previous reconciliation. It reports whether a recompute was requested.
// Calling it again without a query change is a no-op.
func (s *Searchable[T, O]) Reconcile() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	query := s.state.Query()
	if query == s.observed {
		s.mu.Unlock()
		return false
	}
	s.observed = query
	req := s.nextRequest(query)
	s.mu.Unlock()

	s.request(req)
	return true
}

// Refresh requests a recompute of the current query even though it has not
// changed. Use it after SetCandidates.
func (s *Searchable[T, O]) Refresh() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	query := s.state.Query()
	s.observed = query
	req := s.nextRequest(query)
	s.mu.Unlock()

	s.request(req)
}

// nextRequest allocates a sequence number. Caller holds mu.
func (s *Searchable[T, O]) nextRequest(query string) request {
	s.requested++
	return request{query: query, seq: s.requested}
}

func (s *Searchable[T, O]) request(req request) {
	s.bus.Publish(domain.RecomputeRequestedEvent{Query: req.query, Deferred: s.deferred})
	s.runner.Call(req)
}

// recompute is the scheduled function. It runs inline when debouncing is
// disabled and on the dispatcher otherwise.
func (s *Searchable[T, O]) recompute(req request) {
	s.mu.Lock()
	if s.closed || req.seq <= s.applied {
		s.mu.Unlock()
		return
	}
	candidates := s.candidates
	s.running++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running--
		s.mu.Unlock()
	}()

	start := time.Now()
	items := filter.Apply(candidates, req.query, s.predicate)

	s.mu.Lock()
	if s.closed || req.seq <= s.applied {
		s.mu.Unlock()
		return
	}
	s.applied = req.seq
	s.state.SetItems(items)
	s.mu.Unlock()

	s.log.Debug().
		Str("query", req.query).
		Int("candidates", len(candidates)).
		Int("matches", len(items)).
		Dur("took", time.Since(start)).
		Msg("recomputed results")
	s.bus.Publish(domain.ResultsUpdatedEvent{
		Query:      req.query,
		Matches:    len(items),
		Candidates: len(candidates),
	})
	s.notify(ChangeItems)
}

func (s *Searchable[T, O]) notify(c Change) {
	if s.onUpdate != nil {
		s.onUpdate(c)
	}
}

// SetCandidates replaces the candidate list. It does not recompute by
// itself; a pending recompute picks up the new list when it runs.
func (s *Searchable[T, O]) SetCandidates(items []T) {
	s.mu.Lock()
	s.candidates = items
	s.mu.Unlock()

	s.bus.Publish(domain.CandidatesChangedEvent{Count: len(items)})
}

// Candidates returns the current candidate list.
func (s *Searchable[T, O]) Candidates() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates
}

// Query returns the current query.
func (s *Searchable[T, O]) Query() string {
	return s.state.Query()
}

// Items returns the current result set.
func (s *Searchable[T, O]) Items() []T {
	return s.state.Items()
}

// Snapshot returns the query and result set read together.
func (s *Searchable[T, O]) Snapshot() state.Snapshot[T] {
	return s.state.Snapshot()
}

// Pending reports whether a recompute is waiting or running.
func (s *Searchable[T, O]) Pending() bool {
	return s.Phase() == PendingRecompute
}

// Phase returns the reconciliation state.
func (s *Searchable[T, O]) Phase() Phase {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if running > 0 || s.runner.Pending() {
		return PendingRecompute
	}
	return Idle
}

// Flush runs a pending recompute now. It reports whether one was pending.
func (s *Searchable[T, O]) Flush() bool {
	return s.runner.Flush()
}

// Mode reports which presentation callback is in use.
func (s *Searchable[T, O]) Mode() PresentationMode {
	return s.present.mode
}

// Render invokes the presentation callback with the current state. It
// returns false when no callback was supplied.
func (s *Searchable[T, O]) Render() (O, bool) {
	snap := s.state.Snapshot()
	return s.present.present(Context[T]{
		Items:    snap.Items,
		Query:    snap.Query,
		OnChange: s.OnChange,
	})
}

// Close cancels any pending recompute. After Close the state is frozen:
// input and recomputes are ignored.
func (s *Searchable[T, O]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.runner.Cancel() {
		s.log.Debug().Msg("cancelled pending recompute")
		s.bus.Publish(domain.RecomputeCancelledEvent{})
	}
}
