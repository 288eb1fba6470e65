package bubbletea

import "github.com/edubot/edubot"

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// RenderSidebar exports renderSidebar for testing.
func RenderSidebar(sessions []edubot.Session, currentID string, width, height int, styles Styles) string {
	return renderSidebar(sessions, currentID, width, height, styles)
}

// SidebarWidth exports sidebarWidth for testing.
func SidebarWidth(termWidth int) int {
	return sidebarWidth(termWidth)
}

// Sanitize exports sanitize for testing.
func Sanitize(s string) string {
	return sanitize(s)
}
