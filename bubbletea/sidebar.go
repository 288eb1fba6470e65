package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/edubot/edubot"
	"github.com/mattn/go-runewidth"
)

const (
	maxSidebarWidth = 28
	minSidebarTotal = 60 // terminals narrower than this hide the sidebar
)

// sidebarWidth returns the sidebar's content width for a terminal of the
// given width, or 0 when the sidebar is hidden.
func sidebarWidth(termWidth int) int {
	if termWidth < minSidebarTotal {
		return 0
	}
	return min(maxSidebarWidth, termWidth/3)
}

// renderSidebar lists session titles, one per line, marking the current
// session. Titles are truncated by display width so wide characters never
// push the border out of line. The result is width+1 columns wide
// including the right border.
func renderSidebar(sessions []edubot.Session, currentID string, width, height int, styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Accent.Render(runewidth.Truncate("Sessions", width, "…")))
	if len(sessions) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render(runewidth.Truncate("No sessions yet", width, "…")))
	}
	for _, s := range sessions {
		b.WriteString("\n")
		title := runewidth.Truncate(s.Title, width-2, "…")
		if s.ID == currentID {
			b.WriteString(styles.Active.Render("▸ " + title))
			continue
		}
		b.WriteString("  " + title)
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(styles.Muted.GetForeground()).
		Render(b.String())
}
