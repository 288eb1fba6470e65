package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/edubot/edubot"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserMsg lipgloss.Style
	Bot     lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Active  lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t edubot.Theme) Styles {
	return Styles{
		UserMsg: lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		Bot:     lipgloss.NewStyle().Foreground(ansiColor(t.Bot)),
		Error:   lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Muted:   lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:  lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Active:  lipgloss.NewStyle().Foreground(ansiColor(t.Active)).Bold(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
