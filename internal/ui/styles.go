package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Prompt      lipgloss.Style
	Dim         lipgloss.Style
	Status      lipgloss.Style
	Pending     lipgloss.Style
	StatusError lipgloss.Style
	Highlight   lipgloss.Style
	Cursor      lipgloss.Style
	SelectionBg lipgloss.Style
	Dir         lipgloss.Style
	Scroll      lipgloss.Style
	Main        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Dim:         lipgloss.NewStyle().Faint(true),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Highlight:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		SelectionBg: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Dir:         lipgloss.NewStyle().Foreground(lipgloss.Color("33")), // blue
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Main:        lipgloss.NewStyle().Padding(0, 1),
	}
}
