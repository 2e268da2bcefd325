// Package terminal holds the command-line and full-screen terminal front ends
// of the roster editor.
package terminal

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent      = lipgloss.Color("#8BC34A")
	colorMuted       = lipgloss.Color("#6b7280")
	colorWarning     = lipgloss.Color("#FFC107")
	colorDestructive = lipgloss.Color("#e53935")
)

// Styles are the lipgloss styles shared by the CLI table and the TUI.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style
	Badge  lipgloss.Style
	Notice lipgloss.Style
	Prompt lipgloss.Style
	Focus  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Header: lipgloss.NewStyle().Bold(true),
		Body:   lipgloss.NewStyle(),
		Muted:  lipgloss.NewStyle().Foreground(colorMuted),
		Badge:  lipgloss.NewStyle().Foreground(colorAccent).Italic(true),
		Notice: lipgloss.NewStyle().Foreground(colorWarning),
		Prompt: lipgloss.NewStyle().Bold(true).Foreground(colorDestructive),
		Focus:  lipgloss.NewStyle().Foreground(colorAccent),
	}
}
