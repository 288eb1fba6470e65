package bubbletea

import "github.com/edubot/edubot"

// MessageBlock is a renderable element in the conversation. View takes a
// width so the root model controls layout and blocks are testable in
// isolation.
type MessageBlock interface {
	View(width int) string
}

// newBlock picks the block type for a message. Content comes from the
// backend, so it is sanitized first.
func newBlock(msg edubot.Message, theme edubot.Theme, styles Styles) MessageBlock {
	text := sanitize(msg.Content)
	switch {
	case msg.IsError:
		return NewErrorBlock(text, styles)
	case msg.Sender == edubot.SenderUser:
		return NewUserMessageBlock(text, styles)
	default:
		return NewBotMessageBlock(text, theme)
	}
}
