package discovery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"searchable/internal/domain"
	"searchable/internal/eventbus"
)

// Scanner walks directory trees and collects candidate entries
type Scanner struct {
	MaxDepth      int      // 0 means unlimited
	SkipDirs      []string // directory names never descended into
	IncludeDirs   bool     // emit directories as entries, not only files
	IncludeHidden bool     // descend into and emit dot-prefixed names
	Exclude       []string // absolute paths never emitted, such as our own log file

	Bus    eventbus.EventBus
	Logger zerolog.Logger
}

// Result is the outcome of a scan
type Result struct {
	Entries []domain.Entry
	// Dirs lists every directory visited, for watching
	Dirs []string
}

// Scan walks each root and returns the entries found. Unreadable roots are
// reported on the bus and skipped; the scan only fails when ctx is done.
func (s *Scanner) Scan(ctx context.Context, roots []string) (Result, error) {
	bus := s.Bus
	if bus == nil {
		bus = eventbus.Nop()
	}

	bus.Publish(eventbus.ScanStartedEvent{Paths: roots})

	var res Result
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}

		if err := s.scanDirectory(ctx, abs, &res); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return res, err
			}
			s.Logger.Error().Err(err).Str("root", abs).Msg("scan failed")
			bus.Publish(eventbus.ErrorEvent{
				Message: fmt.Sprintf("Failed to scan %s", root),
				Err:     err,
			})
		}
	}

	bus.Publish(eventbus.ScanCompletedEvent{EntriesFound: len(res.Entries)})
	s.Logger.Debug().
		Strs("roots", roots).
		Int("entries", len(res.Entries)).
		Int("dirs", len(res.Dirs)).
		Msg("scan completed")

	return res, nil
}

// scanDirectory walks one root, appending to res
func (s *Scanner) scanDirectory(ctx context.Context, root string, res *Result) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subtree, keep walking
			s.Logger.Warn().Err(err).Str("path", path).Msg("error walking path")
			return nil
		}

		if path == root {
			res.Dirs = append(res.Dirs, path)
			return nil
		}

		if s.Excluded(path) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !s.IncludeHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		depth := strings.Count(relPath, string(filepath.Separator)) + 1

		if d.IsDir() {
			if s.skip(name) {
				return fs.SkipDir
			}
			if s.MaxDepth > 0 && depth > s.MaxDepth {
				return fs.SkipDir
			}
			res.Dirs = append(res.Dirs, path)
			if !s.IncludeDirs {
				return nil
			}
		}

		res.Entries = append(res.Entries, domain.Entry{
			Path:  path,
			Rel:   filepath.ToSlash(relPath),
			Name:  name,
			IsDir: d.IsDir(),
		})
		return nil
	})
}

// Excluded reports whether path is one of the Exclude paths
func (s *Scanner) Excluded(path string) bool {
	if len(s.Exclude) == 0 {
		return false
	}
	clean := filepath.Clean(path)
	for _, ex := range s.Exclude {
		if clean == filepath.Clean(ex) {
			return true
		}
	}
	return false
}

func (s *Scanner) skip(name string) bool {
	for _, skipDir := range s.SkipDirs {
		if name == skipDir {
			return true
		}
	}
	return false
}

// ReadLines builds entries from newline-separated input. Blank lines are
// skipped and surrounding whitespace is trimmed.
func ReadLines(r io.Reader) ([]domain.Entry, error) {
	var entries []domain.Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, domain.Entry{
			Path: line,
			Rel:  line,
			Name: filepath.Base(line),
		})
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read candidates: %w", err)
	}

	return entries, nil
}
