// Package bubbletea provides a Bubble Tea TUI for chatting with the
// educational assistant through an edubot orchestrator.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/edubot/edubot"
)

// Chat is the part of [edubot.Orchestrator] the TUI drives.
type Chat interface {
	SendMessage(ctx context.Context, content string, metadata map[string]any) error
	CreateNewSession(ctx context.Context) (string, error)
	SwitchToSession(ctx context.Context, sessionID string) error
	DeleteSession(ctx context.Context, sessionID string) (edubot.DeleteResult, error)
	ClearChat()
	State() edubot.State
}

var _ Chat = (*edubot.Orchestrator)(nil)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StateMsg delivers an orchestrator state change to the model.
type StateMsg struct {
	State edubot.State
}

// OpDoneMsg signals that an orchestrator call started by the model returned.
type OpDoneMsg struct {
	Op  string
	Err error
}

// StateFeed turns orchestrator change notifications into a channel the
// model listens on. Only the latest undelivered state is kept, so a slow
// UI never blocks the orchestrator.
type StateFeed struct {
	ch chan edubot.State
}

// NewStateFeed creates an empty StateFeed.
func NewStateFeed() *StateFeed {
	return &StateFeed{ch: make(chan edubot.State, 1)}
}

// Publish replaces any pending state with s. Pass it to
// [edubot.WithChangeHandler].
func (f *StateFeed) Publish(s edubot.State) {
	for {
		select {
		case f.ch <- s:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// States returns the channel the model receives from.
func (f *StateFeed) States() <-chan edubot.State {
	return f.ch
}
