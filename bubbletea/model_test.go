package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/edubot/edubot"
	bt "github.com/edubot/edubot/bubbletea"
	"github.com/edubot/edubot/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyWith(reply, sessionID string) func(context.Context, edubot.SendRequest) (*edubot.SendResponse, error) {
	return func(context.Context, edubot.SendRequest) (*edubot.SendResponse, error) {
		return &edubot.SendResponse{Reply: reply, SessionID: sessionID}, nil
	}
}

func sessionsOf(sessions ...edubot.Session) func(context.Context) ([]edubot.Session, error) {
	return func(context.Context) ([]edubot.Session, error) {
		return sessions, nil
	}
}

// historyRecorder serves per-session histories and records which sessions
// were loaded.
type historyRecorder struct {
	mu      sync.Mutex
	loaded  []string
	history map[string][]edubot.Message
}

func (h *historyRecorder) History(_ context.Context, id string) ([]edubot.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = append(h.loaded, id)
	return h.history[id], nil
}

func (h *historyRecorder) Loaded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.loaded...)
}

func threeSessions() []edubot.Session {
	return []edubot.Session{
		{ID: "s1", Title: "Algebra"},
		{ID: "s2", Title: "Biology"},
		{ID: "s3", Title: "Chemistry"},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := bt.New(newChat(&mock.Transport{}), nil, edubot.DefaultTheme())

	assert.False(t, m.Pending())
	assert.NoError(t, m.Err())
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_WindowSize(t *testing.T) {
	t.Parallel()

	t.Run("sidebar takes a third of the width", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newChat(&mock.Transport{}))

		assert.Equal(t, 80-26-1, m.Viewport.Width)
		assert.Equal(t, 20, m.Viewport.Height) // 24 - 1 - 1 - 2
		assert.Contains(t, m.View(), "Sessions")
	})

	t.Run("resize updates dimensions", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newChat(&mock.Transport{}))

		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

		assert.Equal(t, 120-28-1, m.Viewport.Width)
		assert.Equal(t, 36, m.Viewport.Height)
	})

	t.Run("narrow terminal hides sidebar", func(t *testing.T) {
		t.Parallel()
		m := initModelWithSize(t, newChat(&mock.Transport{}), 50, 20)

		assert.Equal(t, 50, m.Viewport.Width)
		assert.NotContains(t, m.View(), "Sessions")
	})

	t.Run("resize re-renders content", func(t *testing.T) {
		t.Parallel()
		chat := newChat(&mock.Transport{})
		chat.AddMessage(edubot.BotMessage("word1 word2 word3 word4 word5 word6 word7 word8", nil))
		m := initModelWithSize(t, chat, 40, 20)

		m = updateModel(t, m, tea.WindowSizeMsg{Width: 150, Height: 20})

		found := false
		for _, line := range strings.Split(m.Viewport.View(), "\n") {
			if strings.Contains(line, "word1") && strings.Contains(line, "word8") {
				found = true
				break
			}
		}
		assert.True(t, found, "expected word1 and word8 on the same line after resize, got:\n%s", m.Viewport.View())
	})
}

func TestModel_Send(t *testing.T) {
	t.Parallel()

	t.Run("enter sends and shows reply", func(t *testing.T) {
		t.Parallel()
		var got edubot.SendRequest
		chat := newChat(&mock.Transport{
			SendMessageFn: func(_ context.Context, req edubot.SendRequest) (*edubot.SendResponse, error) {
				got = req
				return &edubot.SendResponse{Reply: "Plants turn **light** into sugar.", SessionID: "s1"}, nil
			},
		})
		m := initModelWithSize(t, chat, 100, 24)
		m.Input.SetValue("What is photosynthesis?")

		m, cmd := press(t, m, tea.KeyEnter)
		assert.True(t, m.Pending())
		assert.Empty(t, m.Input.Value())

		m = complete(t, m, cmd)

		assert.False(t, m.Pending())
		assert.NoError(t, m.Err())
		assert.Equal(t, "What is photosynthesis?", got.Content)
		view := m.View()
		assert.Contains(t, view, "> What is photosynthesis?")
		assert.Contains(t, view, "Plants turn light into sugar.")
		assert.Contains(t, view, "▸ What is photosynthesis?")
	})

	t.Run("enter with empty input does nothing", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newChat(&mock.Transport{}))
		m.Input.SetValue("   ")

		m, cmd := press(t, m, tea.KeyEnter)

		assert.False(t, m.Pending())
		assert.Nil(t, cmd)
	})

	t.Run("enter while pending is ignored", func(t *testing.T) {
		t.Parallel()
		chat := newChat(&mock.Transport{SendMessageFn: replyWith("ok", "s1")})
		m := initModel(t, chat)
		m.Input.SetValue("first")
		m, _ = press(t, m, tea.KeyEnter)
		m.Input.SetValue("second")

		m, cmd := press(t, m, tea.KeyEnter)

		assert.Nil(t, cmd)
		assert.Equal(t, "second", m.Input.Value())
	})

	t.Run("transport failure shows apology", func(t *testing.T) {
		t.Parallel()
		chat := newChat(&mock.Transport{
			SendMessageFn: func(context.Context, edubot.SendRequest) (*edubot.SendResponse, error) {
				return nil, errors.New("connection refused")
			},
		})
		m := initModel(t, chat)
		m.Input.SetValue("hello")

		m, cmd := press(t, m, tea.KeyEnter)
		m = complete(t, m, cmd)

		assert.NoError(t, m.Err())
		assert.Contains(t, bt.RenderContent(m), "! "+edubot.ApologyMessage)
	})

	t.Run("ctrl+c while pending cancels the request", func(t *testing.T) {
		t.Parallel()
		started := make(chan struct{})
		chat := newChat(&mock.Transport{
			SendMessageFn: func(ctx context.Context, _ edubot.SendRequest) (*edubot.SendResponse, error) {
				close(started)
				<-ctx.Done()
				return nil, ctx.Err()
			},
		})
		m := initModel(t, chat)
		m.Input.SetValue("slow question")
		m, cmd := press(t, m, tea.KeyEnter)

		done := make(chan tea.Msg, 1)
		go func() { done <- cmd() }()
		<-started

		m, quit := press(t, m, tea.KeyCtrlC)
		assert.Nil(t, quit)

		select {
		case msg := <-done:
			m = updateModel(t, m, msg)
		case <-time.After(5 * time.Second):
			t.Fatal("request was not cancelled")
		}
		assert.False(t, m.Pending())
		assert.NoError(t, m.Err())
	})

	t.Run("ctrl+c when idle quits", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newChat(&mock.Transport{}))

		_, cmd := press(t, m, tea.KeyCtrlC)

		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})
}

func TestModel_Sessions(t *testing.T) {
	t.Parallel()

	t.Run("ctrl+n creates and switches", func(t *testing.T) {
		t.Parallel()
		h := &historyRecorder{}
		chat := newChat(&mock.Transport{
			CreateSessionFn: func(context.Context) (edubot.Session, error) {
				return edubot.Session{ID: "s9"}, nil
			},
			HistoryFn: h.History,
		})
		m := initModel(t, chat)

		m, cmd := press(t, m, tea.KeyCtrlN)
		m = complete(t, m, cmd)

		assert.NoError(t, m.Err())
		assert.Equal(t, []string{"s9"}, h.Loaded())
		assert.Equal(t, "s9", chat.CurrentSessionID())
		assert.Contains(t, m.View(), "▸ "+edubot.DefaultTitle)
	})

	t.Run("ctrl+n failure shows error", func(t *testing.T) {
		t.Parallel()
		chat := newChat(&mock.Transport{
			CreateSessionFn: func(context.Context) (edubot.Session, error) {
				return edubot.Session{}, errors.New("server down")
			},
		})
		m := initModelWithSize(t, chat, 160, 24)

		m, cmd := press(t, m, tea.KeyCtrlN)
		m = complete(t, m, cmd)

		require.Error(t, m.Err())
		assert.Contains(t, m.View(), "Error: new session")
		assert.Contains(t, m.View(), "server down")
	})

	t.Run("ctrl+d deletes and navigates to the next session", func(t *testing.T) {
		t.Parallel()
		h := &historyRecorder{history: map[string][]edubot.Message{
			"s2": {edubot.BotMessage("cells are small", nil)},
		}}
		var deleted string
		chat := newChat(&mock.Transport{
			SessionsFn: sessionsOf(threeSessions()...),
			HistoryFn:  h.History,
			DeleteSessionFn: func(_ context.Context, id string) error {
				deleted = id
				return nil
			},
		})
		require.NoError(t, chat.LoadSessions(context.Background()))
		require.NoError(t, chat.SwitchToSession(context.Background(), "s1"))
		m := initModel(t, chat)

		m, cmd := press(t, m, tea.KeyCtrlD)
		m = complete(t, m, cmd)

		assert.Equal(t, "s1", deleted)
		assert.Equal(t, "s2", chat.CurrentSessionID())
		view := m.View()
		assert.NotContains(t, view, "Algebra")
		assert.Contains(t, view, "▸ Biology")
		assert.Contains(t, view, "cells are small")
	})

	t.Run("ctrl+d deleting the last session leaves chat cleared", func(t *testing.T) {
		t.Parallel()
		chat := newChat(&mock.Transport{
			SessionsFn:      sessionsOf(edubot.Session{ID: "s1", Title: "Only"}),
			HistoryFn:       (&historyRecorder{}).History,
			DeleteSessionFn: func(context.Context, string) error { return nil },
		})
		require.NoError(t, chat.LoadSessions(context.Background()))
		require.NoError(t, chat.SwitchToSession(context.Background(), "s1"))
		m := initModel(t, chat)

		m, cmd := press(t, m, tea.KeyCtrlD)
		m = complete(t, m, cmd)

		assert.Empty(t, chat.CurrentSessionID())
		assert.Contains(t, m.View(), "No sessions yet")
	})

	t.Run("ctrl+d without a current session does nothing", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newChat(&mock.Transport{}))

		m, cmd := press(t, m, tea.KeyCtrlD)

		assert.Nil(t, cmd)
		assert.False(t, m.Pending())
	})

	t.Run("ctrl+down and ctrl+up walk the session list", func(t *testing.T) {
		t.Parallel()
		h := &historyRecorder{}
		chat := newChat(&mock.Transport{
			SessionsFn: sessionsOf(threeSessions()...),
			HistoryFn:  h.History,
		})
		require.NoError(t, chat.LoadSessions(context.Background()))
		m := initModel(t, chat)

		m, cmd := press(t, m, tea.KeyCtrlDown)
		m = complete(t, m, cmd)
		m, cmd = press(t, m, tea.KeyCtrlDown)
		m = complete(t, m, cmd)
		m, cmd = press(t, m, tea.KeyCtrlUp)
		m = complete(t, m, cmd)

		assert.Equal(t, []string{"s1", "s2", "s1"}, h.Loaded())
		assert.Contains(t, m.View(), "▸ Algebra")

		_, cmd = press(t, m, tea.KeyCtrlUp)
		assert.Nil(t, cmd, "already at the first session")
	})

	t.Run("ctrl+up without a current session picks the last", func(t *testing.T) {
		t.Parallel()
		h := &historyRecorder{}
		chat := newChat(&mock.Transport{
			SessionsFn: sessionsOf(threeSessions()...),
			HistoryFn:  h.History,
		})
		require.NoError(t, chat.LoadSessions(context.Background()))
		m := initModel(t, chat)

		m, cmd := press(t, m, tea.KeyCtrlUp)
		complete(t, m, cmd)

		assert.Equal(t, []string{"s3"}, h.Loaded())
	})

	t.Run("failed switch keeps the current session", func(t *testing.T) {
		t.Parallel()
		chat := newChat(&mock.Transport{
			SessionsFn: sessionsOf(threeSessions()...),
			HistoryFn: func(context.Context, string) ([]edubot.Message, error) {
				return nil, errors.New("timeout")
			},
		})
		require.NoError(t, chat.LoadSessions(context.Background()))
		m := initModel(t, chat)

		m, cmd := press(t, m, tea.KeyCtrlDown)
		m = complete(t, m, cmd)

		require.Error(t, m.Err())
		assert.Empty(t, chat.CurrentSessionID())
	})

	t.Run("ctrl+l clears the chat", func(t *testing.T) {
		t.Parallel()
		chat := newChat(&mock.Transport{})
		chat.AddMessage(edubot.UserMessage("old question", nil))
		m := initModel(t, chat)
		require.Contains(t, bt.RenderContent(m), "old question")

		m, cmd := press(t, m, tea.KeyCtrlL)

		assert.Nil(t, cmd)
		assert.NotContains(t, bt.RenderContent(m), "old question")
		assert.Contains(t, bt.RenderContent(m), "Ask anything to start learning.")
	})
}

func TestModel_StateMsg(t *testing.T) {
	t.Parallel()

	t.Run("renders messages by sender", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newChat(&mock.Transport{}))

		m = updateModel(t, m, bt.StateMsg{State: edubot.State{Messages: []edubot.Message{
			{ID: "1", Sender: edubot.SenderUser, Content: "hi"},
			{ID: "2", Sender: edubot.SenderBot, Content: "# Welcome"},
			{ID: "3", Sender: edubot.SenderBot, Content: "oops", IsError: true},
		}}})

		content := bt.RenderContent(m)
		assert.Contains(t, content, "> hi")
		assert.Contains(t, content, "Welcome")
		assert.NotContains(t, content, "# Welcome")
		assert.Contains(t, content, "! oops")
	})

	t.Run("sending phase shows thinking", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newChat(&mock.Transport{}))

		m = updateModel(t, m, bt.StateMsg{State: edubot.State{Phase: edubot.PhaseSending, Loading: true}})

		assert.Contains(t, m.View(), "Thinking...")
	})

	t.Run("switching phase shows loading", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newChat(&mock.Transport{}))

		m = updateModel(t, m, bt.StateMsg{State: edubot.State{Phase: edubot.PhaseSwitching}})

		assert.Contains(t, m.View(), "Loading session...")
	})

	t.Run("keeps listening when wired to a feed", func(t *testing.T) {
		t.Parallel()
		feed := bt.NewStateFeed()
		m := bt.New(newChat(&mock.Transport{}), feed.States(), edubot.DefaultTheme())

		_, cmd := m.Update(bt.StateMsg{})

		assert.NotNil(t, cmd)
	})
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("full send cycle", func(t *testing.T) {
		t.Parallel()
		feed := bt.NewStateFeed()
		chat := newChat(&mock.Transport{SendMessageFn: replyWith("Hello, learner!", "s1")},
			edubot.WithChangeHandler(feed.Publish))
		m := bt.New(chat, feed.States(), edubot.DefaultTheme())

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 24))

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Hello, learner!")) &&
				bytes.Contains(out, []byte("Enter send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Pending())
		assert.NoError(t, final.Err())
		assert.Len(t, chat.Messages(), 2)
	})

	t.Run("existing session renders on init", func(t *testing.T) {
		t.Parallel()
		chat := newChat(&mock.Transport{
			SessionsFn: sessionsOf(edubot.Session{ID: "s1", Title: "Greetings"}),
			HistoryFn: func(context.Context, string) ([]edubot.Message, error) {
				return []edubot.Message{
					edubot.UserMessage("hello there", nil),
					edubot.BotMessage("Hi! How can I help?", nil),
				}, nil
			},
		})
		require.NoError(t, chat.LoadSessions(context.Background()))
		require.NoError(t, chat.SwitchToSession(context.Background(), "s1"))

		tm := teatest.NewTestModel(t, bt.New(chat, nil, edubot.DefaultTheme()),
			teatest.WithInitialTermSize(100, 24),
		)

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("hello there")) &&
				bytes.Contains(out, []byte("Hi! How can I help?")) &&
				bytes.Contains(out, []byte("Greetings"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	})
}
