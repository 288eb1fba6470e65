package memory

import (
	"context"
	"errors"

	"github.com/edubot/edubot"
)

// Interface compliance check.
var _ edubot.Responder = Echo{}

// Echo is an [edubot.Responder] that repeats the latest user message. It
// lets the local backend run without a model.
type Echo struct{}

// Respond answers with the content of the last user message in history.
func (Echo) Respond(_ context.Context, history []edubot.Message) (edubot.Reply, error) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == edubot.SenderUser {
			return edubot.Reply{
				Content:  history[i].Content,
				Metadata: map[string]any{"type": "text", "responder": "echo"},
			}, nil
		}
	}
	return edubot.Reply{}, errors.New("memory: echo: no user message in history")
}
