package edubot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Phase is the orchestrator's position in its state machine. Every
// operation that leaves PhaseIdle returns to it on all exit paths.
type Phase int

const (
	PhaseIdle      Phase = iota
	PhaseSending         // a SendMessage round trip is in flight
	PhaseSwitching       // a history load for a session switch is in flight
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseSwitching:
		return "switching"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is a point-in-time snapshot of everything the orchestrator owns.
type State struct {
	Messages         []Message
	Sessions         []Session
	CurrentSessionID string
	Loading          bool
	Phase            Phase
}

// DeleteResult describes where the caller should navigate after a session
// was deleted. Whenever WasActive is set the log and current session id
// have already been cleared.
type DeleteResult struct {
	// WasActive reports whether the deleted session was the current one.
	WasActive bool
	// NextSessionID is the first remaining session when the active session
	// was deleted and others remain. The orchestrator does not switch to it;
	// navigation is the caller's decision.
	NextSessionID string
	// NoSessionsLeft reports that the active session was the last one, so
	// there is nowhere to navigate.
	NoSessionsLeft bool
}

// Orchestrator owns a message log, a session registry, the current session
// id and the loading flag, and keeps them consistent across the request and
// response lifecycle of a chat. It is safe for concurrent use: transport
// calls are made without holding the lock, and operations that would race
// on the log are rejected with ErrBusy.
type Orchestrator struct {
	transport Transport
	logger    *log.Logger
	clock     clockwork.Clock
	newID     func() string
	onChange  func(State)

	mu        sync.Mutex
	log       *MessageLog
	registry  *Registry
	currentID string
	phase     Phase
	// generation increments whenever the log is replaced or cleared. A
	// send compares it before appending the reply so a late reply never
	// lands in another session's log.
	generation uint64
	// loadingID is the session whose history is in flight. Deleting it
	// sets loadAborted and the loaded history is discarded.
	loadingID   string
	loadAborted bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger that receives transport failures. The default
// discards everything.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock sets the clock used to timestamp messages.
func WithClock(c clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithIDGenerator sets the function that assigns message ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// WithChangeHandler sets a callback invoked with a fresh snapshot after
// every state change. It runs without the orchestrator's lock held and may
// call back into the orchestrator's read methods.
func WithChangeHandler(fn func(State)) Option {
	return func(o *Orchestrator) { o.onChange = fn }
}

// NewOrchestrator creates an Orchestrator with an empty log and registry.
func NewOrchestrator(t Transport, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		transport: t,
		logger:    log.New(io.Discard),
		clock:     clockwork.NewRealClock(),
		newID:     newMessageID,
		log:       &MessageLog{},
		registry:  &Registry{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// newMessageID returns a time-ordered UUID so ids sort in creation order.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SendMessage appends content as a user message, sends it to the assistant
// and appends the reply.
//
// The user message is visible before the round trip starts. A transport
// failure is not returned: it is logged and an error message is appended to
// the conversation instead. The returned error is ErrValidation for empty
// content or ErrBusy when another send or a session switch is in flight.
func (o *Orchestrator) SendMessage(ctx context.Context, content string, metadata map[string]any) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message content is empty: %w", ErrValidation)
	}

	o.mu.Lock()
	if o.phase != PhaseIdle {
		phase := o.phase
		o.mu.Unlock()
		return fmt.Errorf("send while %s: %w", phase, ErrBusy)
	}
	o.phase = PhaseSending
	o.appendLocked(UserMessage(content, metadata))
	sessionID := o.currentID
	gen := o.generation
	o.unlockAndNotify()

	defer o.finish()

	resp, err := o.transport.SendMessage(ctx, SendRequest{
		Content:   content,
		SessionID: sessionID,
		Metadata:  metadata,
	})
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation != gen {
		o.logger.Debug("discarding reply for replaced message log", "op", "send", "session", sessionID)
		return nil
	}
	if err != nil {
		o.logger.Error("send message failed", "op", "send", "session", sessionID, "err", err)
		o.appendLocked(ErrorMessage(ApologyMessage))
		return nil
	}

	o.appendLocked(BotMessage(resp.Reply, resp.Metadata))
	o.adoptLocked(resp.SessionID, content)
	return nil
}

// adoptLocked applies the session id returned with a reply: it becomes the
// current session if none was set, and the session is titled from the
// user's message if its title is still a placeholder.
func (o *Orchestrator) adoptLocked(id, content string) {
	if id == "" {
		return
	}
	switch o.currentID {
	case "":
		o.currentID = id
		o.registry.SetActive(id)
	case id:
	default:
		o.logger.Warn("reply names a different session; keeping current", "op", "send", "session", o.currentID, "reply_session", id)
	}

	s, ok := o.registry.Get(id)
	if !ok {
		now := o.clock.Now()
		o.registry.Prepend(Session{
			ID:        id,
			Title:     DeriveTitle(content),
			IsActive:  id == o.currentID,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return
	}
	if s.NeedsTitle() {
		o.registry.SetTitle(id, DeriveTitle(content))
	}
}

// LoadChatHistory replaces the message log with the stored history of
// sessionID and makes it the current session. An empty history is valid.
// On failure the existing state is kept and the error is logged and
// returned.
func (o *Orchestrator) LoadChatHistory(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id is empty: %w", ErrValidation)
	}
	o.mu.Lock()
	if o.phase != PhaseIdle {
		phase := o.phase
		o.mu.Unlock()
		return fmt.Errorf("load history while %s: %w", phase, ErrBusy)
	}
	o.startLoadLocked(sessionID)
	o.unlockAndNotify()

	defer o.finish()

	msgs, err := o.transport.History(ctx, sessionID)
	if err != nil {
		o.logger.Error("load chat history failed", "op", "history", "session", sessionID, "err", err)
		return fmt.Errorf("load chat history: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.loadAborted {
		return fmt.Errorf("load chat history %s: session deleted: %w", sessionID, ErrNotFound)
	}
	o.replaceLogLocked(msgs)
	o.currentID = sessionID
	o.registry.SetActive(sessionID)
	return nil
}

// LoadSessions replaces the registry with the transport's session list. An
// empty list clears the registry. On failure the registry is kept and the
// error is logged and returned.
func (o *Orchestrator) LoadSessions(ctx context.Context) error {
	sessions, err := o.transport.Sessions(ctx)
	if err != nil {
		o.logger.Error("load sessions failed", "op", "sessions", "err", err)
		return fmt.Errorf("load sessions: %w", err)
	}

	o.mu.Lock()
	o.registry.Replace(sessions)
	o.registry.SetActive(o.currentID)
	o.unlockAndNotify()
	return nil
}

// CreateNewSession asks the transport for a new session and puts it at the
// front of the registry. It does not switch to the new session. On failure
// it returns an empty id and the error, leaving the registry untouched.
func (o *Orchestrator) CreateNewSession(ctx context.Context) (string, error) {
	s, err := o.transport.CreateSession(ctx)
	if err == nil && s.ID == "" {
		err = errors.New("transport returned a session without id")
	}
	if err != nil {
		o.logger.Error("create session failed", "op", "create", "err", err)
		return "", fmt.Errorf("create session: %w", err)
	}
	if s.Title == "" {
		s.Title = DefaultTitle
		s.TitleIsDefault = true
	}

	o.mu.Lock()
	s.IsActive = s.ID == o.currentID
	o.registry.Prepend(s)
	o.unlockAndNotify()
	return s.ID, nil
}

// SwitchToSession makes sessionID the current session, loading its history
// and marking it the only active session. Switching to the current session
// is a no-op. The switch is applied only once the history has arrived, so a
// failed load leaves the previous session in place.
func (o *Orchestrator) SwitchToSession(ctx context.Context, sessionID string) error {
	o.mu.Lock()
	if sessionID == o.currentID {
		o.mu.Unlock()
		return nil
	}
	if sessionID == "" {
		o.mu.Unlock()
		return fmt.Errorf("session id is empty: %w", ErrValidation)
	}
	if o.phase != PhaseIdle {
		phase := o.phase
		o.mu.Unlock()
		return fmt.Errorf("switch while %s: %w", phase, ErrBusy)
	}
	o.startLoadLocked(sessionID)
	o.unlockAndNotify()

	defer o.finish()

	msgs, err := o.transport.History(ctx, sessionID)
	if err != nil {
		o.logger.Error("switch session failed", "op", "switch", "session", sessionID, "err", err)
		return fmt.Errorf("switch to session %s: %w", sessionID, err)
	}

	o.mu.Lock()
	if o.loadAborted {
		o.mu.Unlock()
		return fmt.Errorf("switch to session %s: session deleted: %w", sessionID, ErrNotFound)
	}
	o.currentID = sessionID
	o.replaceLogLocked(msgs)
	o.registry.SetActive(sessionID)
	o.mu.Unlock()
	return nil
}

// DeleteSession deletes a session through the transport and, on success,
// removes it from the registry. When the deleted session was the current
// one the log and current id are cleared, and the result names the first
// remaining session as the navigation target. Deleting a session whose
// history is being loaded cancels that switch. On failure the registry is
// left untouched.
func (o *Orchestrator) DeleteSession(ctx context.Context, sessionID string) (DeleteResult, error) {
	if err := o.transport.DeleteSession(ctx, sessionID); err != nil {
		o.logger.Error("delete session failed", "op", "delete", "session", sessionID, "err", err)
		return DeleteResult{}, fmt.Errorf("delete session: %w", err)
	}

	o.mu.Lock()
	o.registry.Remove(sessionID)
	if o.phase == PhaseSwitching && o.loadingID == sessionID {
		o.loadAborted = true
	}
	var res DeleteResult
	if sessionID != "" && sessionID == o.currentID {
		res.WasActive = true
		o.clearLocked()
		if next, ok := o.registry.First(); ok {
			res.NextSessionID = next.ID
		} else {
			res.NoSessionsLeft = true
		}
	}
	o.unlockAndNotify()
	return res, nil
}

// ClearChat empties the message log and unsets the current session. It
// makes no transport call.
func (o *Orchestrator) ClearChat() {
	o.mu.Lock()
	o.clearLocked()
	o.unlockAndNotify()
}

// AddMessage assigns m an id and timestamp and appends it to the log. It is
// used for messages that need no round trip, such as local notices.
func (o *Orchestrator) AddMessage(m Message) Message {
	o.mu.Lock()
	stored := o.appendLocked(m)
	o.unlockAndNotify()
	return stored
}

// UpdateSessionTitle renames a session locally. It reports whether the
// session was found.
func (o *Orchestrator) UpdateSessionTitle(sessionID, title string) bool {
	o.mu.Lock()
	ok := o.registry.SetTitle(sessionID, title)
	o.unlockAndNotify()
	return ok
}

// State returns a snapshot of the orchestrator's state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Messages returns a copy of the current message log.
func (o *Orchestrator) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.log.Messages()
}

// Sessions returns a copy of the registry in order.
func (o *Orchestrator) Sessions() []Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.registry.Sessions()
}

// CurrentSessionID returns the id of the session whose log is exposed, or
// an empty string when there is none.
func (o *Orchestrator) CurrentSessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentID
}

// Loading reports whether a send is in flight.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase == PhaseSending
}

// finish returns the state machine to idle. It is deferred by every
// operation that leaves PhaseIdle, so it also runs when the transport
// panics.
func (o *Orchestrator) finish() {
	o.mu.Lock()
	o.phase = PhaseIdle
	o.loadingID = ""
	o.loadAborted = false
	o.unlockAndNotify()
}

func (o *Orchestrator) startLoadLocked(sessionID string) {
	o.phase = PhaseSwitching
	o.loadingID = sessionID
	o.loadAborted = false
}

func (o *Orchestrator) appendLocked(m Message) Message {
	m.ID = o.newID()
	m.Timestamp = o.clock.Now()
	if m.Metadata == nil {
		m.Metadata = map[string]any{}
	}
	o.log.Append(m)
	return m.clone()
}

func (o *Orchestrator) replaceLogLocked(msgs []Message) {
	filled := make([]Message, len(msgs))
	for i, m := range msgs {
		if m.ID == "" {
			m.ID = o.newID()
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = o.clock.Now()
		}
		filled[i] = m
	}
	o.log.Replace(filled)
	o.generation++
}

func (o *Orchestrator) clearLocked() {
	o.log.Clear()
	o.currentID = ""
	o.registry.SetActive("")
	o.generation++
}

func (o *Orchestrator) snapshotLocked() State {
	return State{
		Messages:         o.log.Messages(),
		Sessions:         o.registry.Sessions(),
		CurrentSessionID: o.currentID,
		Loading:          o.phase == PhaseSending,
		Phase:            o.phase,
	}
}

// unlockAndNotify releases the lock and then delivers a snapshot taken
// under it to the change handler.
func (o *Orchestrator) unlockAndNotify() {
	if o.onChange == nil {
		o.mu.Unlock()
		return
	}
	s := o.snapshotLocked()
	o.mu.Unlock()
	o.onChange(s)
}
