package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New(zerolog.Nop())
	defer b.Close()

	got := make(chan ResultsUpdatedEvent, 1)
	b.Subscribe(EventResultsUpdated, func(e DomainEvent) {
		if ev, ok := e.(ResultsUpdatedEvent); ok {
			got <- ev
		}
	})

	b.Publish(ResultsUpdatedEvent{Query: "Jake", Matches: 1, Candidates: 2})

	select {
	case ev := <-got:
		assert.Equal(t, "Jake", ev.Query)
		assert.Equal(t, 1, ev.Matches)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSubscribersOnlySeeTheirType(t *testing.T) {
	b := New(zerolog.Nop())
	defer b.Close()

	var mu sync.Mutex
	var seen []EventType
	b.Subscribe(EventScanCompleted, func(e DomainEvent) {
		mu.Lock()
		seen = append(seen, e.Type())
		mu.Unlock()
	})

	b.Publish(QueryChangedEvent{Query: "x"})
	b.Publish(ScanCompletedEvent{EntriesFound: 3})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []EventType{EventScanCompleted}, seen)
	mu.Unlock()
}

func TestUnsubscribe(t *testing.T) {
	b := New(zerolog.Nop())
	defer b.Close()

	var mu sync.Mutex
	first, second := 0, 0
	unsubscribe := b.Subscribe(EventQueryChanged, func(DomainEvent) {
		mu.Lock()
		first++
		mu.Unlock()
	})
	b.Subscribe(EventQueryChanged, func(DomainEvent) {
		mu.Lock()
		second++
		mu.Unlock()
	})

	unsubscribe()
	b.Publish(QueryChangedEvent{Query: "a"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return second == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Zero(t, first, "unsubscribed handler must not run")
	mu.Unlock()
}

func TestHandlerPanicDoesNotStopDelivery(t *testing.T) {
	b := New(zerolog.Nop())
	defer b.Close()

	done := make(chan struct{})
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, func(DomainEvent) { close(done) })

	b.Publish(ErrorEvent{Message: "x"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler not called after first panicked")
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	b := New(zerolog.Nop())
	b.Close()

	assert.NotPanics(t, func() {
		b.Publish(QueryChangedEvent{Query: "late"})
	})
	b.Close()
}

func TestNopBus(t *testing.T) {
	b := Nop()
	unsubscribe := b.Subscribe(EventError, func(DomainEvent) { t.Fatal("nop bus delivered an event") })
	b.Publish(ErrorEvent{})
	unsubscribe()
	b.Close()
}
