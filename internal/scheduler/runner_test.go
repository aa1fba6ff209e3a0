package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"searchable/internal/scheduler"
	"searchable/internal/scheduler/schedulertest"
)

func TestConfigResolve(t *testing.T) {
	tests := []struct {
		name        string
		cfg         scheduler.Config
		wantWait    time.Duration
		wantEnabled bool
	}{
		{"zero value", scheduler.Config{}, scheduler.DefaultDuration, true},
		{"default", scheduler.Default(), scheduler.DefaultDuration, true},
		{"explicit", scheduler.After(250 * time.Millisecond), 250 * time.Millisecond, true},
		{"non-positive falls back", scheduler.After(-time.Second), scheduler.DefaultDuration, true},
		{"disabled", scheduler.Disabled(), 0, false},
		{"disabled ignores duration", scheduler.Config{Disabled: true, Duration: time.Second}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wait, enabled := tt.cfg.Resolve()
			assert.Equal(t, tt.wantWait, wait)
			assert.Equal(t, tt.wantEnabled, enabled)
		})
	}
}

func TestConfigString(t *testing.T) {
	assert.Equal(t, "disabled", scheduler.Disabled().String())
	assert.Equal(t, "100ms", scheduler.Default().String())
}

func TestWrapDisabledRunsSynchronously(t *testing.T) {
	rec := &recorder{}
	r := scheduler.Wrap(rec.record, scheduler.Disabled())

	_, ok := r.(*scheduler.Immediate[string])
	assert.True(t, ok)

	for _, q := range []string{"J", "Ja", "Jak", "Jake"} {
		r.Call(q)
	}
	assert.Equal(t, []string{"J", "Ja", "Jak", "Jake"}, rec.get())
	assert.False(t, r.Pending())
	assert.False(t, r.Cancel())
	assert.False(t, r.Flush())
}

func TestWrapEnabledUsesResolvedWindow(t *testing.T) {
	clock := schedulertest.New()
	rec := &recorder{}
	r := scheduler.Wrap(rec.record, scheduler.After(40*time.Millisecond), scheduler.WithClock(clock))

	d, ok := r.(*scheduler.Debouncer[string])
	if assert.True(t, ok) {
		assert.Equal(t, 40*time.Millisecond, d.Wait())
	}

	r.Call("x")
	clock.Advance(39 * time.Millisecond)
	assert.Empty(t, rec.get())
	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"x"}, rec.get())
}

func TestWrapDefaultWindow(t *testing.T) {
	r := scheduler.Wrap(func(string) {}, scheduler.Default())
	d, ok := r.(*scheduler.Debouncer[string])
	if assert.True(t, ok) {
		assert.Equal(t, scheduler.DefaultDuration, d.Wait())
	}
}
