// Package watch rescans the candidate tree when the filesystem changes.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"searchable/internal/discovery"
	"searchable/internal/domain"
	"searchable/internal/eventbus"
	"searchable/internal/scheduler"
)

// Watcher watches scanned directories and delivers a fresh candidate list
// after each burst of changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	scanner   *discovery.Scanner
	roots     []string
	onChange  func([]domain.Entry)
	bus       eventbus.EventBus
	log       zerolog.Logger
	rescan    *scheduler.Debouncer[struct{}]

	mu      sync.Mutex
	watched map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures a Watcher
type Option func(*Watcher, *[]scheduler.Option)

// WithBus publishes CandidatesChanged and error events on bus
func WithBus(bus eventbus.EventBus) Option {
	return func(w *Watcher, _ *[]scheduler.Option) {
		if bus != nil {
			w.bus = bus
		}
	}
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(w *Watcher, _ *[]scheduler.Option) {
		w.log = log.With().Str("component", "watch").Logger()
	}
}

// WithClock sets the clock used to coalesce bursts
func WithClock(c scheduler.Clock) Option {
	return func(_ *Watcher, opts *[]scheduler.Option) {
		*opts = append(*opts, scheduler.WithClock(c))
	}
}

// New creates a watcher that rescans roots with scanner and passes the
// result to onChange. Events closer together than delay are coalesced.
func New(scanner *discovery.Scanner, roots []string, delay time.Duration, onChange func([]domain.Entry), opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsWatcher: fsWatcher,
		scanner:   scanner,
		roots:     roots,
		onChange:  onChange,
		bus:       eventbus.Nop(),
		log:       zerolog.Nop(),
		watched:   make(map[string]bool),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	var schedOpts []scheduler.Option
	for _, opt := range opts {
		opt(w, &schedOpts)
	}
	w.rescan = scheduler.New(func(struct{}) { w.Rescan() }, delay, schedOpts...)

	return w, nil
}

// Start watches dirs and begins processing events
func (w *Watcher) Start(dirs []string) error {
	for _, dir := range dirs {
		if err := w.add(dir); err != nil {
			return err
		}
	}

	w.wg.Add(1)
	go w.eventLoop()

	return nil
}

// Stop shuts down the watcher. Pending rescans are discarded. It is safe to
// call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.cancel()
		w.rescan.Cancel()
		w.wg.Wait()
		err = w.fsWatcher.Close()
	})
	return err
}

// Watched returns the number of watched directories
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

func (w *Watcher) add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watched[dir] {
		return nil
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	return nil
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watched, path)
}

// eventLoop handles fsnotify events
func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
			w.bus.Publish(eventbus.ErrorEvent{Message: "Filesystem watch error", Err: err})
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	// Writes to an excluded file (our own log) would keep re-arming the rescan
	if w.scanner.Excluded(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && w.shouldWatch(event.Name) {
			if err := w.add(event.Name); err != nil {
				w.log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
			}
		}
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.forget(event.Name)
	}

	w.log.Debug().Str("path", event.Name).Stringer("op", event.Op).Msg("change detected")
	w.rescan.Call(struct{}{})
}

func (w *Watcher) shouldWatch(dir string) bool {
	name := filepath.Base(dir)
	if !w.scanner.IncludeHidden && len(name) > 0 && name[0] == '.' {
		return false
	}
	for _, skip := range w.scanner.SkipDirs {
		if name == skip {
			return false
		}
	}
	return true
}

// Rescan scans the roots now and delivers the result
func (w *Watcher) Rescan() {
	res, err := w.scanner.Scan(w.ctx, w.roots)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.log.Error().Err(err).Msg("rescan failed")
		}
		return
	}

	for _, dir := range res.Dirs {
		if err := w.add(dir); err != nil {
			w.log.Debug().Err(err).Str("path", dir).Msg("failed to watch directory")
		}
	}

	w.log.Debug().Int("entries", len(res.Entries)).Msg("rescanned")
	w.bus.Publish(eventbus.CandidatesChangedEvent{Count: len(res.Entries)})
	if w.onChange != nil {
		w.onChange(res.Entries)
	}
}
