// Package state holds the query text and the derived result set.
package state

import "sync"

// Snapshot is a consistent view of a QueryState.
type Snapshot[T any] struct {
	Query    string
	Items    []T
	Revision uint64
}

// QueryState holds the current query and the current result set.
// The result set is replaced wholesale on every SetItems; the slice handed
// in must not be modified afterwards.
type QueryState[T any] struct {
	mu       sync.RWMutex
	query    string
	items    []T
	revision uint64
}

// New creates a QueryState seeded with query and items.
func New[T any](query string, items []T) *QueryState[T] {
	return &QueryState[T]{
		query: query,
		items: items,
	}
}

// Query returns the current query.
func (s *QueryState[T]) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Items returns the current result set.
func (s *QueryState[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Revision increments on every SetQuery and SetItems.
func (s *QueryState[T]) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot returns query, items and revision read under one lock.
func (s *QueryState[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[T]{
		Query:    s.query,
		Items:    s.items,
		Revision: s.revision,
	}
}

// SetQuery replaces the query.
func (s *QueryState[T]) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.revision++
}

// SetItems replaces the result set.
func (s *QueryState[T]) SetItems(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.revision++
}
