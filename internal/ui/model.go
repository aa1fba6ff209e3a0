package ui

import (
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"searchable/internal/config"
	"searchable/internal/domain"
	"searchable/internal/eventbus"
	"searchable/internal/filter"
	"searchable/internal/scheduler"
	"searchable/internal/searchable"
)

// E2EEnv enables the ready marker used by the end-to-end tests
const E2EEnv = "SEARCHABLE_E2E_TEST"

// readyMarker is printed in the first line when E2EEnv is set
const readyMarker = "__READY__"

// EntryFields are the fields a query can be scoped to with "name:value"
func EntryFields() filter.Fields[domain.Entry] {
	return filter.Fields[domain.Entry]{
		"name": func(e domain.Entry) string { return e.Name },
		"path": func(e domain.Entry) string { return e.Path },
		"rel":  func(e domain.Entry) string { return e.Rel },
	}
}

// Options configures a Model
type Options struct {
	Entries []domain.Entry
	Config  *config.Config
	Bus     eventbus.EventBus
	Logger  zerolog.Logger
	// Clock overrides the debounce timer source
	Clock scheduler.Clock
}

// Model represents the UI state
type Model struct {
	search *searchable.Searchable[domain.Entry, string]
	config *config.Config
	log    zerolog.Logger

	input  textinput.Model
	help   help.Model
	keys   keyMap
	styles *Styles
	pager  *Pager

	width  int
	height int
	cursor int
	offset int

	status   string // last error shown in the status line
	chosen   *domain.Entry
	quitting bool
	e2e      bool

	// Program reference for dispatching fired recomputes
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(opts Options) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := &Model{
		config: cfg,
		log:    opts.Logger.With().Str("component", "ui").Logger(),
		help:   help.New(),
		keys:   defaultKeyMap(),
		styles: NewStyles(),
		pager:  NewPager(),
		e2e:    os.Getenv(E2EEnv) == "1",
	}

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.PromptStyle = m.styles.Prompt
	m.input.Placeholder = "type to filter"
	m.input.SetValue(cfg.InitialQuery)
	m.input.Focus()

	logger := opts.Logger
	search, err := searchable.New(searchable.Options[domain.Entry, string]{
		Items:        opts.Entries,
		Predicate:    EntryFields().Only(cfg.Filter.Fields...).Predicate(cfg.Filter.CaseSensitive),
		InitialQuery: cfg.InitialQuery,
		Debounce:     cfg.Debounce.Scheduler(),
		Render:       m.renderResults,
		Clock:        opts.Clock,
		Dispatch:     m.dispatch,
		Bus:          opts.Bus,
		Logger:       &logger,
	})
	if err != nil {
		return nil, err
	}
	m.search = search

	return m, nil
}

// SetProgram sets the program reference for dispatching and the pager
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// dispatch posts a fired recompute onto the event loop. Without a program
// it runs the recompute on the calling goroutine.
func (m *Model) dispatch(run func()) {
	if m.program == nil {
		run()
		return
	}
	m.program.Send(recomputeMsg{run: run})
}

// Selection returns the entry chosen with enter, if any
func (m *Model) Selection() (domain.Entry, bool) {
	if m.chosen == nil {
		return domain.Entry{}, false
	}
	return *m.chosen, true
}

// Query returns the current query
func (m *Model) Query() string {
	return m.search.Query()
}

// Matches returns the current result set
func (m *Model) Matches() []domain.Entry {
	return m.search.Items()
}

// Close cancels any pending recompute
func (m *Model) Close() {
	m.search.Close()
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 4
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case recomputeMsg:
		msg.run()
		m.clampCursor()
		return m, nil

	case CandidatesMsg:
		m.search.SetCandidates(msg.Entries)
		m.search.Refresh()
		m.clampCursor()
		return m, nil

	case EventMsg:
		if e, ok := msg.Event.(eventbus.ErrorEvent); ok {
			m.status = e.Message
		}
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("pager failed")
			m.status = "Pager failed: " + msg.err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Choose):
		items := m.search.Items()
		if len(items) == 0 {
			return m, nil
		}
		m.clampCursor()
		chosen := items[m.cursor]
		m.chosen = &chosen
		m.log.Info().Str("path", chosen.Path).Msg("entry chosen")
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.visibleRows())
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.visibleRows())
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		m.search.Refresh()
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Pager):
		return m, m.showPager(m.search.Items())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != m.search.Query() {
		m.search.OnChange(value)
		m.cursor = 0
		m.offset = 0
		m.clampCursor()
	}
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.search.Close()
	return m, tea.Quit
}

// showPager returns a command that shows the entries in the ov pager
func (m *Model) showPager(entries []domain.Entry) tea.Cmd {
	content := pagerContent(entries)
	return func() tea.Msg {
		return pagerMsg{err: m.pager.Show(content)}
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// clampCursor keeps the cursor on a result and inside the viewport
func (m *Model) clampCursor() {
	n := len(m.search.Items())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset > n-rows {
		m.offset = n - rows
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// visibleRows returns how many results fit on screen
func (m *Model) visibleRows() int {
	if m.config.UI.MaxRows > 0 {
		return m.config.UI.MaxRows
	}
	if m.height == 0 {
		return 10
	}
	// input, status and help lines plus spacing
	rows := m.height - 5
	if m.help.ShowAll {
		rows -= 4
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}
