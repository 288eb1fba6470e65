package edubot

import "context"

// DefaultSystemInstruction frames a model as a tutor. Responders backed by a
// language model send it unless configured otherwise.
const DefaultSystemInstruction = "You are an educational assistant for students and teachers. " +
	"Explain concepts step by step, check understanding with short questions, " +
	"and answer in the language the user writes in. Use Markdown for structure."

// Reply is an assistant's answer to a conversation.
type Reply struct {
	Content  string
	Metadata map[string]any
}

// Responder produces the assistant's reply to a conversation. History holds
// the most recent messages of the session, oldest first, ending with the
// user's latest message.
type Responder interface {
	Respond(ctx context.Context, history []Message) (Reply, error)
}
