package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"searchable/internal/eventbus"
	"searchable/internal/scheduler"
)

// FileName is the per-directory config file name
const FileName = ".searchable.toml"

// Filter fields understood by the entry predicate
var KnownFields = []string{"name", "path", "rel"}

// Config represents the application configuration
type Config struct {
	Version      int            `toml:"version"`
	InitialQuery string         `toml:"initial_query"`
	Debounce     DebounceConfig `toml:"debounce"`
	Filter       FilterConfig   `toml:"filter"`
	Scan         ScanConfig     `toml:"scan"`
	UI           UISettings     `toml:"ui"`
	Watch        WatchConfig    `toml:"watch"`
}

// DebounceConfig controls how query changes are coalesced
type DebounceConfig struct {
	Enabled    bool `toml:"enabled"`
	DurationMs int  `toml:"duration_ms"` // 0 uses the built-in default
}

// FilterConfig controls how entries are matched
type FilterConfig struct {
	Fields        []string `toml:"fields"`
	CaseSensitive bool     `toml:"case_sensitive"`
}

// ScanConfig controls candidate discovery
type ScanConfig struct {
	MaxDepth      int      `toml:"max_depth"`
	IncludeDirs   bool     `toml:"include_dirs"`
	IncludeHidden bool     `toml:"include_hidden"`
	SkipDirs      []string `toml:"skip_dirs"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowCount bool `toml:"show_count"`
	MaxRows   int  `toml:"max_rows"` // 0 fills the terminal
}

// WatchConfig controls rescanning when the filesystem changes
type WatchConfig struct {
	Enabled  bool `toml:"enabled"`
	RescanMs int  `toml:"rescan_ms"`
}

// Scheduler converts the debounce settings into a scheduler config
func (d DebounceConfig) Scheduler() scheduler.Config {
	if !d.Enabled {
		return scheduler.Disabled()
	}
	return scheduler.After(time.Duration(d.DurationMs) * time.Millisecond)
}

// RescanDelay returns the watch coalescing window
func (w WatchConfig) RescanDelay() time.Duration {
	if w.RescanMs <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(w.RescanMs) * time.Millisecond
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Debounce.DurationMs < 0 {
		return fmt.Errorf("debounce.duration_ms must not be negative, got %d", c.Debounce.DurationMs)
	}
	if c.Scan.MaxDepth < 0 {
		return fmt.Errorf("scan.max_depth must not be negative, got %d", c.Scan.MaxDepth)
	}
	if c.UI.MaxRows < 0 {
		return fmt.Errorf("ui.max_rows must not be negative, got %d", c.UI.MaxRows)
	}
	if c.Watch.RescanMs < 0 {
		return fmt.Errorf("watch.rescan_ms must not be negative, got %d", c.Watch.RescanMs)
	}
	if len(c.Filter.Fields) == 0 {
		return errors.New("filter.fields must name at least one field")
	}
	for _, f := range c.Filter.Fields {
		if !isKnownField(f) {
			return fmt.Errorf("filter.fields: unknown field %q (known: %v)", f, KnownFields)
		}
	}
	return nil
}

func isKnownField(name string) bool {
	for _, k := range KnownFields {
		if k == name {
			return true
		}
	}
	return false
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service bound to the config file in dir
func NewConfigService(dir string) ConfigService {
	return &configService{
		filePath: filepath.Join(dir, FileName),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(dir string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(dir).(*configService)
	cs.bus = bus
	return cs
}

// Load loads the configuration from the bound file, falling back to the
// defaults when the file does not exist
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save saves the configuration to the bound file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Debounce: DebounceConfig{
			Enabled:    true,
			DurationMs: int(scheduler.DefaultDuration / time.Millisecond),
		},
		Filter: FilterConfig{
			Fields: []string{"name", "rel"},
		},
		Scan: ScanConfig{
			MaxDepth: 5,
			SkipDirs: []string{
				"node_modules", "vendor", "dist", "build", "target",
				"__pycache__", ".venv", "venv",
			},
		},
		UI: UISettings{
			ShowCount: true,
		},
		Watch: WatchConfig{
			RescanMs: 250,
		},
	}
}
