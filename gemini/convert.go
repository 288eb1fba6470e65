package gemini

import (
	"strings"

	"github.com/edubot/edubot"
	"google.golang.org/genai"
)

// ConvertMessages converts edubot Messages to genai Contents. Error
// messages and empty messages are skipped, and consecutive messages from
// the same sender are merged into one turn.
// Exported for testing.
func ConvertMessages(msgs []edubot.Message) []*genai.Content {
	var result []*genai.Content
	for _, m := range msgs {
		if m.IsError || strings.TrimSpace(m.Content) == "" {
			continue
		}
		role, ok := roleOf(m.Sender)
		if !ok {
			continue
		}
		part := &genai.Part{Text: m.Content}
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Parts = append(result[n-1].Parts, part)
			continue
		}
		result = append(result, &genai.Content{Role: role, Parts: []*genai.Part{part}})
	}
	return result
}

func roleOf(s edubot.Sender) (string, bool) {
	switch s {
	case edubot.SenderUser:
		return string(genai.RoleUser), true
	case edubot.SenderBot:
		return string(genai.RoleModel), true
	default:
		return "", false
	}
}
