package mock

import (
	"context"

	"github.com/edubot/edubot"
)

// Interface compliance check.
var _ edubot.Responder = (*Responder)(nil)

// Responder is a test double for edubot.Responder.
type Responder struct {
	RespondFn func(ctx context.Context, history []edubot.Message) (edubot.Reply, error)
}

// Respond delegates to RespondFn.
func (r *Responder) Respond(ctx context.Context, history []edubot.Message) (edubot.Reply, error) {
	return r.RespondFn(ctx, history)
}
