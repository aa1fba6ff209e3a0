package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"searchable/internal/domain"
	"searchable/internal/searchable"
)

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.e2e {
		b.WriteString(readyMarker)
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	m.clampCursor()
	results, _ := m.search.Render()
	b.WriteString(results)
	b.WriteString("\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return m.styles.Main.Render(b.String())
}

// renderResults is the presentation callback handed to the searchable core
func (m *Model) renderResults(ctx searchable.Context[domain.Entry]) string {
	if len(ctx.Items) == 0 {
		if ctx.Query == "" {
			return m.styles.Dim.Render("  no candidates")
		}
		return m.styles.Dim.Render("  no matches")
	}

	rows := m.visibleRows()
	offset := m.offset
	if offset >= len(ctx.Items) {
		offset = 0
	}
	end := offset + rows
	if end > len(ctx.Items) {
		end = len(ctx.Items)
	}

	needle := highlightTerm(ctx.Query)
	lines := make([]string, 0, rows+2)
	if offset > 0 {
		lines = append(lines, m.styles.Scroll.Render(fmt.Sprintf("  ↑ %d more", offset)))
	}
	for i := offset; i < end; i++ {
		lines = append(lines, m.renderEntry(ctx.Items[i], needle, i == m.cursor))
	}
	if rest := len(ctx.Items) - end; rest > 0 {
		lines = append(lines, m.styles.Scroll.Render(fmt.Sprintf("  ↓ %d more", rest)))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderEntry(e domain.Entry, needle string, selected bool) string {
	text := highlight(e.Display(), needle, m.config.Filter.CaseSensitive, m.styles.Highlight)
	if e.IsDir {
		text = m.styles.Dir.Render(text + "/")
	}
	if selected {
		return m.styles.Cursor.Render("> ") + m.styles.SelectionBg.Render(text)
	}
	return "  " + text
}

// statusLine shows the match count, a pending marker and the last error
func (m *Model) statusLine() string {
	var parts []string

	if m.config.UI.ShowCount {
		parts = append(parts, m.styles.Status.Render(
			fmt.Sprintf("%d/%d", len(m.search.Items()), len(m.search.Candidates()))))
	}
	if m.search.Pending() {
		parts = append(parts, m.styles.Pending.Render("filtering…"))
	}
	if m.status != "" {
		parts = append(parts, m.styles.StatusError.Render(m.status))
	}

	return strings.Join(parts, "  ")
}

// highlightTerm strips a "field:" scope from the query
func highlightTerm(query string) string {
	if name, value, ok := strings.Cut(query, ":"); ok {
		if _, known := EntryFields()[strings.ToLower(name)]; known {
			return value
		}
	}
	return query
}

// highlight styles every occurrence of needle in text
func highlight(text, needle string, caseSensitive bool, style lipgloss.Style) string {
	if needle == "" {
		return text
	}

	haystack := text
	if !caseSensitive {
		haystack = strings.ToLower(text)
		needle = strings.ToLower(needle)
		// Lowering changed byte offsets, indexes would not line up
		if len(haystack) != len(text) {
			return text
		}
	}

	var b strings.Builder
	for {
		i := strings.Index(haystack, needle)
		if i < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:i])
		b.WriteString(style.Render(text[i : i+len(needle)]))
		text = text[i+len(needle):]
		haystack = haystack[i+len(needle):]
	}
	return b.String()
}
