package edubot

import (
	"maps"
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ApologyMessage is the content of the error message injected into the log
// when a send fails.
const ApologyMessage = "Sorry, something went wrong. Please try again."

// Message is a single entry in a session's message log.
//
// Messages are values: the log stores its own copy on append and hands out
// copies, so a Message obtained from the orchestrator can never be used to
// mutate the log.
type Message struct {
	ID        string
	Content   string
	Sender    Sender
	Metadata  map[string]any
	Timestamp time.Time
	IsError   bool
}

// UserMessage returns a message authored by the user.
func UserMessage(content string, metadata map[string]any) Message {
	return Message{Content: content, Sender: SenderUser, Metadata: metadataOrEmpty(metadata)}
}

// BotMessage returns a message authored by the assistant.
func BotMessage(content string, metadata map[string]any) Message {
	return Message{Content: content, Sender: SenderBot, Metadata: metadataOrEmpty(metadata)}
}

// ErrorMessage returns an assistant message flagged as an error. The chat
// surfaces failures as conversation content rather than as returned errors.
func ErrorMessage(content string) Message {
	return Message{
		Content:  content,
		Sender:   SenderBot,
		Metadata: map[string]any{"error": true},
		IsError:  true,
	}
}

// clone returns a copy of m that shares no mutable state with it.
func (m Message) clone() Message {
	m.Metadata = maps.Clone(m.Metadata)
	return m
}

func metadataOrEmpty(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return maps.Clone(metadata)
}
