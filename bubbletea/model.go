package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/edubot/edubot"
)

var _ tea.Model = Model{}

const helpText = "Enter send · ^N new · ^D delete · ^↑/^↓ switch · ^L clear · ^C quit"

// Model is the Bubble Tea model for the edubot TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation area. Exported for test access.
	Viewport viewport.Model

	chat   Chat
	states <-chan edubot.State
	theme  edubot.Theme
	styles Styles

	state edubot.State
	// blocks are cached by message id; stored messages never change.
	blocks map[string]MessageBlock

	sidebar int // sidebar content width, 0 when hidden
	height  int

	pending bool
	cancel  context.CancelFunc
	err     error
	ready   bool
}

// New creates a TUI Model driving chat. states delivers change
// notifications, usually from a [StateFeed]; it may be nil, in which case
// the model refreshes only after its own calls return.
func New(chat Chat, states <-chan edubot.State, theme edubot.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	styles := NewStyles(theme)
	ti.PromptStyle = styles.UserMsg

	return Model{
		Input:  ti,
		chat:   chat,
		states: states,
		theme:  theme,
		styles: styles,
		state:  chat.State(),
		blocks: make(map[string]MessageBlock),
	}
}

// Pending returns whether an orchestrator call started by the model is in
// flight.
func (m Model) Pending() bool { return m.pending }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForState(m.states))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		m = m.applyState(msg.State)
		return m, listenForState(m.states)

	case OpDoneMsg:
		m.pending = false
		m.cancel = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = fmt.Errorf("%s: %w", msg.Op, msg.Err)
		}
		m = m.applyState(m.chat.State())
		return m, m.Input.Focus()
	}

	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.pending {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())

	if m.sidebar == 0 {
		return b.String()
	}
	side := renderSidebar(m.state.Sessions, m.state.CurrentSessionID, m.sidebar, m.height, m.styles)
	return lipgloss.JoinHorizontal(lipgloss.Top, side, b.String())
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	m.sidebar = sidebarWidth(msg.Width)
	m.height = msg.Height
	vpWidth := msg.Width
	if m.sidebar > 0 {
		vpWidth -= m.sidebar + 1 // border
	}

	if !m.ready {
		m.Viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = vpWidth
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.Input.Width = vpWidth - lipgloss.Width(m.Input.Prompt) - 1
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.pending {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if m.pending || text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		return m.start("send", func(ctx context.Context, chat Chat) error {
			return chat.SendMessage(ctx, text, nil)
		})

	case tea.KeyCtrlN:
		if m.pending {
			return m, nil
		}
		return m.start("new session", func(ctx context.Context, chat Chat) error {
			id, err := chat.CreateNewSession(ctx)
			if err != nil {
				return err
			}
			return chat.SwitchToSession(ctx, id)
		})

	case tea.KeyCtrlD:
		id := m.state.CurrentSessionID
		if m.pending || id == "" {
			return m, nil
		}
		return m.start("delete session", func(ctx context.Context, chat Chat) error {
			res, err := chat.DeleteSession(ctx, id)
			if err != nil {
				return err
			}
			if res.NextSessionID != "" {
				return chat.SwitchToSession(ctx, res.NextSessionID)
			}
			return nil
		})

	case tea.KeyCtrlUp, tea.KeyCtrlDown:
		if m.pending {
			return m, nil
		}
		next := m.adjacentSession(msg.Type == tea.KeyCtrlDown)
		if next == "" || next == m.state.CurrentSessionID {
			return m, nil
		}
		return m.start("switch session", func(ctx context.Context, chat Chat) error {
			return chat.SwitchToSession(ctx, next)
		})

	case tea.KeyCtrlL:
		if m.pending {
			return m, nil
		}
		m.err = nil
		m.chat.ClearChat()
		m = m.applyState(m.chat.State())
		return m, nil
	}

	// Only forward non-character keys to the viewport so typing "j" or "k"
	// never scrolls.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !m.pending {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// start runs op against the chat in a tea.Cmd. Only one call started by the
// model is in flight at a time.
func (m Model) start(name string, op func(context.Context, Chat) error) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.pending = true
	m.err = nil
	m.Input.Blur()

	chat := m.chat
	return m, func() tea.Msg {
		defer cancel()
		return OpDoneMsg{Op: name, Err: op(ctx, chat)}
	}
}

// adjacentSession returns the id of the session after (or before) the
// current one in registry order. With no current session it starts from
// the first (or last) session.
func (m Model) adjacentSession(forward bool) string {
	sessions := m.state.Sessions
	if len(sessions) == 0 {
		return ""
	}
	idx := -1
	for i, s := range sessions {
		if s.ID == m.state.CurrentSessionID {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && forward:
		return sessions[0].ID
	case idx < 0:
		return sessions[len(sessions)-1].ID
	case forward && idx < len(sessions)-1:
		return sessions[idx+1].ID
	case !forward && idx > 0:
		return sessions[idx-1].ID
	}
	return ""
}

func (m Model) applyState(s edubot.State) Model {
	m.state = s

	live := make(map[string]bool, len(s.Messages))
	for _, msg := range s.Messages {
		live[msg.ID] = true
	}
	for id := range m.blocks {
		if !live[id] {
			delete(m.blocks, id)
		}
	}

	if m.ready {
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) renderContent() string {
	if len(m.state.Messages) == 0 {
		return m.styles.Muted.Render("Ask anything to start learning.")
	}
	var b strings.Builder
	for i, msg := range m.state.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		block, ok := m.blocks[msg.ID]
		if !ok {
			block = newBlock(msg, m.theme, m.styles)
			if msg.ID != "" {
				m.blocks[msg.ID] = block
			}
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	switch m.state.Phase {
	case edubot.PhaseSending:
		return m.styles.Bot.Render("Thinking...")
	case edubot.PhaseSwitching:
		return m.styles.Muted.Render("Loading session...")
	}
	return m.styles.Muted.Render(helpText)
}

// listenForState waits for the next state change.
func listenForState(ch <-chan edubot.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return StateMsg{State: s}
	}
}
