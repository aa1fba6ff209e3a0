package scheduler

import "time"

// DefaultDuration is the coalescing window used when debouncing is enabled
// without an explicit duration.
const DefaultDuration = 100 * time.Millisecond

// Config selects how a function is scheduled. The zero value enables
// debouncing with DefaultDuration.
type Config struct {
	// Disabled runs the function synchronously on every call.
	Disabled bool
	// Duration is the coalescing window. Zero or negative means DefaultDuration.
	Duration time.Duration
}

// Default enables debouncing with DefaultDuration.
func Default() Config {
	return Config{}
}

// After enables debouncing with an explicit duration.
func After(d time.Duration) Config {
	return Config{Duration: d}
}

// Disabled turns debouncing off.
func Disabled() Config {
	return Config{Disabled: true}
}

// Resolve returns the effective window and whether debouncing is enabled.
func (c Config) Resolve() (time.Duration, bool) {
	if c.Disabled {
		return 0, false
	}
	if c.Duration <= 0 {
		return DefaultDuration, true
	}
	return c.Duration, true
}

// String describes the config for logs.
func (c Config) String() string {
	d, ok := c.Resolve()
	if !ok {
		return "disabled"
	}
	return d.String()
}
