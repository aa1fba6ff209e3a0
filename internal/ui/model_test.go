package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchable/internal/config"
	"searchable/internal/domain"
	"searchable/internal/eventbus"
	"searchable/internal/scheduler/schedulertest"
)

var testEntries = []domain.Entry{
	{Path: "/repo/cmd/app/main.go", Rel: "cmd/app/main.go", Name: "main.go"},
	{Path: "/repo/internal/ui/model.go", Rel: "internal/ui/model.go", Name: "model.go"},
	{Path: "/repo/internal/ui/view.go", Rel: "internal/ui/view.go", Name: "view.go"},
	{Path: "/repo/README.md", Rel: "README.md", Name: "README.md"},
}

func newTestModel(t *testing.T, mutate func(*config.Config), clock *schedulertest.Clock) *Model {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Debounce.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	opts := Options{
		Entries: testEntries,
		Config:  cfg,
		Logger:  zerolog.Nop(),
	}
	if clock != nil {
		opts.Clock = clock
	}

	m, err := NewModel(opts)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func rels(entries []domain.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Rel
	}
	return out
}

func TestTypingFiltersImmediatelyWithoutDebounce(t *testing.T) {
	m := newTestModel(t, nil, nil)

	typeText(m, "ui/")
	assert.Equal(t, "ui/", m.Query())
	assert.Equal(t, []string{"internal/ui/model.go", "internal/ui/view.go"}, rels(m.Matches()))

	view := m.View()
	assert.Contains(t, view, "model.go")
	assert.NotContains(t, view, "README.md")
	assert.Contains(t, view, "2/4")
}

func TestTypingIsDebounced(t *testing.T) {
	clock := schedulertest.New()
	m := newTestModel(t, func(c *config.Config) {
		c.Debounce = config.DebounceConfig{Enabled: true, DurationMs: 100}
	}, clock)

	typeText(m, "view")
	assert.Equal(t, "view", m.Query(), "query is visible before the recompute")
	assert.Len(t, m.Matches(), 4)
	assert.Contains(t, m.View(), "filtering…")

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"internal/ui/view.go"}, rels(m.Matches()))
	assert.NotContains(t, m.View(), "filtering…")
}

func TestRecomputeMsgRunsOnLoop(t *testing.T) {
	m := newTestModel(t, nil, nil)

	ran := false
	m.Update(recomputeMsg{run: func() { ran = true }})
	assert.True(t, ran)
}

func TestDispatchWithoutProgramRunsInline(t *testing.T) {
	m := newTestModel(t, nil, nil)

	ran := false
	m.dispatch(func() { ran = true })
	assert.True(t, ran)
}

func TestCursorNavigationAndChoose(t *testing.T) {
	m := newTestModel(t, nil, nil)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.cursor)

	// cursor stays inside the results
	for i := 0; i < 10; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	}
	assert.Equal(t, 3, m.cursor)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	chosen, ok := m.Selection()
	require.True(t, ok)
	assert.Equal(t, "README.md", chosen.Rel)
	assert.Empty(t, m.View(), "nothing is drawn after quitting")
}

func TestCursorResetsWhenQueryChanges(t *testing.T) {
	m := newTestModel(t, nil, nil)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	typeText(m, "main")
	assert.Equal(t, 0, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	chosen, ok := m.Selection()
	require.True(t, ok)
	assert.Equal(t, "main.go", chosen.Name)
}

func TestChooseWithNoMatchesDoesNothing(t *testing.T) {
	m := newTestModel(t, nil, nil)

	typeText(m, "zzz")
	assert.Contains(t, m.View(), "no matches")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	_, ok := m.Selection()
	assert.False(t, ok)
}

func TestQuitDiscardsPendingRecompute(t *testing.T) {
	clock := schedulertest.New()
	m := newTestModel(t, func(c *config.Config) {
		c.Debounce = config.DebounceConfig{Enabled: true}
	}, clock)

	typeText(m, "view")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	clock.Advance(time.Second)
	assert.Len(t, m.Matches(), 4, "results are frozen after quit")
	_, ok := m.Selection()
	assert.False(t, ok)
}

func TestCandidatesMsgRefreshesResults(t *testing.T) {
	m := newTestModel(t, nil, nil)
	typeText(m, "ui/")
	require.Len(t, m.Matches(), 2)

	m.Update(CandidatesMsg{Entries: append(testEntries, domain.Entry{
		Path: "/repo/internal/ui/keys.go", Rel: "internal/ui/keys.go", Name: "keys.go",
	})})

	assert.Len(t, m.Matches(), 3)
	assert.Contains(t, m.View(), "3/5")
}

func TestFieldScopedQuery(t *testing.T) {
	m := newTestModel(t, nil, nil)

	typeText(m, "name:m")
	assert.Equal(t, []string{"cmd/app/main.go", "internal/ui/model.go", "README.md"}, rels(m.Matches()))
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, nil, nil)

	assert.NotContains(t, m.View(), "page up")
	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Contains(t, m.View(), "page up")
	assert.Empty(t, m.Query(), "help key does not reach the input")
}

func TestQuestionMarkReachesQuery(t *testing.T) {
	m := newTestModel(t, nil, nil)

	typeText(m, "?")
	assert.Equal(t, "?", m.Query())
	assert.NotContains(t, m.View(), "page up")
	assert.Contains(t, m.View(), "no matches")
}

func TestErrorEventShownInStatus(t *testing.T) {
	m := newTestModel(t, nil, nil)

	m.Update(EventMsg{Event: eventbus.ErrorEvent{Message: "Failed to scan /nope"}})
	assert.Contains(t, m.View(), "Failed to scan /nope")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.NotContains(t, m.View(), "Failed to scan /nope")
}

func TestPagerWithoutProgramReportsError(t *testing.T) {
	m := newTestModel(t, nil, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, pagerMsg{}, msg)
	assert.Error(t, msg.(pagerMsg).err)

	m.Update(msg)
	assert.Contains(t, m.View(), "Pager failed")
}

func TestPagerFailureMessage(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m.Update(pagerMsg{err: errors.New("boom")})
	assert.Contains(t, m.View(), "boom")
}

func TestScrollIndicators(t *testing.T) {
	m := newTestModel(t, func(c *config.Config) { c.UI.MaxRows = 2 }, nil)

	view := m.View()
	assert.Contains(t, view, "↓ 2 more")

	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	view = m.View()
	assert.Contains(t, view, "↑ 1 more")
}

func TestReadyMarker(t *testing.T) {
	t.Setenv(E2EEnv, "1")
	m := newTestModel(t, nil, nil)
	assert.Contains(t, m.View(), readyMarker)
}

func TestInitialQueryFromConfig(t *testing.T) {
	m := newTestModel(t, func(c *config.Config) { c.InitialQuery = "README" }, nil)

	assert.Equal(t, "README", m.Query())
	assert.Equal(t, []string{"README.md"}, rels(m.Matches()))
}

func TestHighlight(t *testing.T) {
	plain := lipgloss.NewStyle()

	assert.Equal(t, "internal/ui/model.go", highlight("internal/ui/model.go", "", false, plain))
	assert.Equal(t, "README.md", highlight("README.md", "readme", false, plain))
	assert.Equal(t, "README.md", highlight("README.md", "readme", true, plain))
	assert.Equal(t, "model", highlightTerm("name:model"))
	assert.Equal(t, "foo:bar", highlightTerm("foo:bar"))
}

func TestPagerContent(t *testing.T) {
	assert.Equal(t, "/repo/README.md\n", pagerContent(testEntries[3:]))
}
