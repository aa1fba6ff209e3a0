package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQueryChanged       EventType = "QueryChanged"
	EventRecomputeRequested EventType = "RecomputeRequested"
	EventRecomputeCancelled EventType = "RecomputeCancelled"
	EventResultsUpdated     EventType = "ResultsUpdated"
	EventCandidatesChanged  EventType = "CandidatesChanged"
	EventScanStarted        EventType = "ScanStarted"
	EventScanCompleted      EventType = "ScanCompleted"
	EventError              EventType = "Error"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// QueryChangedEvent is emitted when the query text changes
type QueryChangedEvent struct {
	Query string
}

func (e QueryChangedEvent) Type() EventType { return EventQueryChanged }

// RecomputeRequestedEvent is emitted when a recompute is requested.
// Deferred is true when the recompute waits for the debounce window.
type RecomputeRequestedEvent struct {
	Query    string
	Deferred bool
}

func (e RecomputeRequestedEvent) Type() EventType { return EventRecomputeRequested }

// RecomputeCancelledEvent is emitted when a pending recompute is discarded
type RecomputeCancelledEvent struct{}

func (e RecomputeCancelledEvent) Type() EventType { return EventRecomputeCancelled }

// ResultsUpdatedEvent is emitted after a new result set is applied
type ResultsUpdatedEvent struct {
	Query      string
	Matches    int
	Candidates int
}

func (e ResultsUpdatedEvent) Type() EventType { return EventResultsUpdated }

// CandidatesChangedEvent is emitted when the candidate list is replaced
type CandidatesChangedEvent struct {
	Count int
}

func (e CandidatesChangedEvent) Type() EventType { return EventCandidatesChanged }

// ScanStartedEvent is emitted when a filesystem scan begins
type ScanStartedEvent struct {
	Paths []string
}

func (e ScanStartedEvent) Type() EventType { return EventScanStarted }

// ScanCompletedEvent is emitted when a filesystem scan finishes
type ScanCompletedEvent struct {
	EntriesFound int
}

func (e ScanCompletedEvent) Type() EventType { return EventScanCompleted }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted after the config file is read
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted after the config file is written
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
