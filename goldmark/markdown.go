// Package goldmark renders assistant replies, which are markdown, to
// ANSI-styled terminal output using goldmark for parsing and lipgloss for
// styling. GitHub-flavored tables, strikethrough and task lists are
// supported since tutoring answers use them often.
package goldmark

import "github.com/edubot/edubot"

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width. Code blocks
// and tables are rendered without reflow.
func Render(source string, width int, theme edubot.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme).render([]byte(source), width)
}
