// Package logging configures the zerolog logger used across searchable.
//
// The TUI owns the terminal, so the logger writes to a file by default.
// Console output is only used for non-interactive runs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FileName is the base name of the default log file.
const FileName = "searchable.log"

// DefaultPath returns the log file used when no path is given. It lives in
// the user cache directory so it never lands inside a scanned tree.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "searchable", FileName)
}

// ResolvePath returns the absolute log file path for opts, or "" when
// logging to the console.
func ResolvePath(opts Options) (string, error) {
	if opts.Console {
		return "", nil
	}
	path := opts.Path
	if path == "" {
		path = DefaultPath()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve log path: %w", err)
	}
	return abs, nil
}

// Options controls logger setup.
type Options struct {
	// Path of the log file. Empty means DefaultPath.
	Path string
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Console writes human-readable output to stderr instead of a file.
	Console bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the process logger and installs it as the zerolog global.
// The returned closer releases the log file.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)

	if opts.Console {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	} else {
		path, err := ResolvePath(opts)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = f
	}

	logger := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("app", "searchable").
		Logger()
	log.Logger = logger

	return logger, closer, nil
}

// ParseLevel converts a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
