// Package filter applies caller-supplied match predicates to candidate lists.
//
// Filtering is a strict boolean test: an item is either kept or dropped, and
// kept items stay in the order they had in the input. There is no ranking.
//
// An empty query passes every candidate through unfiltered (see [Apply]).
package filter

import "slices"

// Predicate reports whether item matches query.
type Predicate[T any] func(item T, query string) bool

// Filter returns the items for which pred returns true, preserving input
// order. The returned slice is never nil and never aliases items.
// A panic raised by pred is not recovered.
func Filter[T any](items []T, query string, pred Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item, query) {
			out = append(out, item)
		}
	}
	return out
}

// Apply is Filter with the empty-query policy applied: an empty query
// returns a copy of the full candidate list without consulting pred.
func Apply[T any](items []T, query string, pred Predicate[T]) []T {
	if query == "" {
		out := slices.Clone(items)
		if out == nil {
			out = []T{}
		}
		return out
	}
	return Filter(items, query, pred)
}
