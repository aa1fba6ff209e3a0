package ui

import (
	"searchable/internal/domain"
	"searchable/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// CandidatesMsg replaces the candidate list, e.g. after a rescan
type CandidatesMsg struct {
	Entries []domain.Entry
}

// recomputeMsg carries a fired recompute onto the event loop
type recomputeMsg struct {
	run func()
}

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	err error
}
