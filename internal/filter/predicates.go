package filter

import (
	"sort"
	"strings"
)

// Contains matches when field(item) contains the query, case-sensitively.
func Contains[T any](field func(T) string) Predicate[T] {
	return func(item T, query string) bool {
		return strings.Contains(field(item), query)
	}
}

// ContainsFold matches when field(item) contains the query, ignoring case.
func ContainsFold[T any](field func(T) string) Predicate[T] {
	return func(item T, query string) bool {
		return strings.Contains(strings.ToLower(field(item)), strings.ToLower(query))
	}
}

// Fields is a named set of string accessors used to build a scoped predicate.
type Fields[T any] map[string]func(T) string

// Names returns the field names in sorted order.
func (f Fields[T]) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Only returns the subset of f named by names. Unknown names are ignored.
func (f Fields[T]) Only(names ...string) Fields[T] {
	out := make(Fields[T], len(names))
	for _, name := range names {
		if fn, ok := f[name]; ok {
			out[name] = fn
		}
	}
	return out
}

// Predicate builds a predicate matching the query against any field.
//
// A query of the form "name:value" restricts the match to the named field,
// e.g. "path:internal/ui". If name is not a known field the whole query is
// matched as plain text, so a query containing a colon still works.
func (f Fields[T]) Predicate(caseSensitive bool) Predicate[T] {
	fold := func(s string) string {
		if caseSensitive {
			return s
		}
		return strings.ToLower(s)
	}

	return func(item T, query string) bool {
		if name, value, ok := strings.Cut(query, ":"); ok {
			if field, known := f[strings.ToLower(name)]; known {
				return strings.Contains(fold(field(item)), fold(value))
			}
		}

		q := fold(query)
		for _, field := range f {
			if strings.Contains(fold(field(item)), q) {
				return true
			}
		}
		return false
	}
}
