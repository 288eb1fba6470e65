package bubbletea

import (
	"github.com/edubot/edubot"
	"github.com/edubot/edubot/goldmark"
)

var _ MessageBlock = (*BotMessageBlock)(nil)

// BotMessageBlock renders an assistant reply as markdown. Replies never
// change once stored, so the rendering is cached per width.
type BotMessageBlock struct {
	text    string
	theme   edubot.Theme
	byWidth map[int]string
}

// NewBotMessageBlock creates a BotMessageBlock.
func NewBotMessageBlock(text string, theme edubot.Theme) *BotMessageBlock {
	return &BotMessageBlock{
		text:    text,
		theme:   theme,
		byWidth: make(map[int]string),
	}
}

func (b *BotMessageBlock) View(width int) string {
	if width <= 0 {
		return ""
	}
	if cached, ok := b.byWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.text, width, b.theme)
	b.byWidth[width] = rendered
	return rendered
}
