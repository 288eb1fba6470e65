package edubot_test

import (
	"testing"

	"github.com/edubot/edubot"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	t.Parallel()
	meta := map[string]any{"source": "cli"}
	m := edubot.UserMessage("hello", meta)
	meta["source"] = "changed"

	assert.Equal(t, edubot.SenderUser, m.Sender)
	assert.Equal(t, "hello", m.Content)
	assert.Equal(t, "cli", m.Metadata["source"])
	assert.False(t, m.IsError)
}

func TestBotMessage_NilMetadata(t *testing.T) {
	t.Parallel()
	m := edubot.BotMessage("hi", nil)
	assert.Equal(t, edubot.SenderBot, m.Sender)
	assert.NotNil(t, m.Metadata)
	assert.Empty(t, m.Metadata)
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()
	m := edubot.ErrorMessage(edubot.ApologyMessage)
	assert.Equal(t, edubot.SenderBot, m.Sender)
	assert.True(t, m.IsError)
	assert.Equal(t, true, m.Metadata["error"])
	assert.Equal(t, edubot.ApologyMessage, m.Content)
}

func TestSession_NeedsTitle(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		session edubot.Session
		want    bool
	}{
		{"empty title", edubot.Session{ID: "s"}, true},
		{"placeholder", edubot.Session{ID: "s", Title: edubot.DefaultTitle, TitleIsDefault: true}, true},
		{"named", edubot.Session{ID: "s", Title: "Fractions"}, false},
		{"named like placeholder", edubot.Session{ID: "s", Title: edubot.DefaultTitle}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.session.NeedsTitle())
		})
	}
}
