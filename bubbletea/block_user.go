package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a user message behind a "> " prompt. Wrapped
// lines are indented to align with the first.
type UserMessageBlock struct {
	text   string
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, styles: styles}
}

func (b *UserMessageBlock) View(width int) string {
	body := lipgloss.NewStyle().Width(max(width-2, 1)).Render(b.text)
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = b.styles.UserMsg.Render("> ") + line
			continue
		}
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
