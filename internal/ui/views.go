package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000"))
	groupStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#888888"))
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AA00"))
	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))
	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7AF00"))
)

// View implements tea.Model.
func (m Model) View() string {
	if m.Done {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Audio filters"))
	b.WriteString("\n\n")

	b.WriteString(renderRows(&m))
	b.WriteString("\n")

	if m.state.EqualizerPending != nil {
		b.WriteString(pendingStyle.Render("Equalizer layout changed: press s to save"))
		b.WriteString("\n")
	}
	b.WriteString(renderStatus(m))
	b.WriteString("\n")
	b.WriteString(renderHelp())

	return b.String()
}

// renderRows renders every row under its group heading.
func renderRows(m *Model) string {
	var b strings.Builder
	group := ""
	for i, r := range m.rows {
		if r.group != group {
			if group != "" {
				b.WriteString("\n")
			}
			group = r.group
			b.WriteString(groupStyle.Render(group))
			b.WriteString("\n")
		}

		line := fmt.Sprintf("  %-16s %s", r.label, r.value(m))
		switch {
		case i == m.Cursor:
			line = selectedStyle.Render("> " + strings.TrimPrefix(line, "  "))
		case r.disabled != nil && r.disabled(m):
			line = disabledStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderStatus(m Model) string {
	if m.Err != nil {
		return errorStyle.Render("Error: " + m.Err.Error())
	}
	return m.Status
}

func renderHelp() string {
	return disabledStyle.Render("↑/↓ select  ←/→ adjust  space toggle  s save layout  r reset bands  q quit")
}
