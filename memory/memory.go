// Package memory implements [edubot.Transport] in process. Sessions and
// messages live in memory and replies come from an [edubot.Responder], so
// the chat works without the assistant service.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/edubot/edubot"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultContextSize is the number of most recent messages passed to the
// responder.
const DefaultContextSize = 10

// Interface compliance check.
var _ edubot.Transport = (*Backend)(nil)

// Backend is an in-memory [edubot.Transport]. It is safe for concurrent use.
type Backend struct {
	responder   edubot.Responder
	clock       clockwork.Clock
	newID       func() string
	logger      *log.Logger
	contextSize int

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	meta     edubot.Session
	messages []edubot.Message
}

// Option configures a [Backend].
type Option func(*Backend)

// WithClock sets the clock used for message and session timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(b *Backend) { b.clock = c }
}

// WithIDGenerator sets the function that assigns session and message ids.
func WithIDGenerator(fn func() string) Option {
	return func(b *Backend) { b.newID = fn }
}

// WithLogger sets the logger that receives responder failures.
func WithLogger(l *log.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// WithContextSize sets how many recent messages the responder sees.
func WithContextSize(n int) Option {
	return func(b *Backend) { b.contextSize = n }
}

// New creates an empty [Backend] that answers with r.
func New(r edubot.Responder, opts ...Option) *Backend {
	b := &Backend{
		responder:   r,
		clock:       clockwork.NewRealClock(),
		newID:       uuid.NewString,
		logger:      log.New(io.Discard),
		contextSize: DefaultContextSize,
		sessions:    make(map[string]*session),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// SendMessage stores the user's message, asks the responder for a reply and
// stores that too. An empty session id starts a new session. The first
// message of a session names it.
//
// When the responder fails an error message is stored in the session, so
// it shows up on reload, and the error is returned.
func (b *Backend) SendMessage(ctx context.Context, req edubot.SendRequest) (*edubot.SendResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("memory: message content is empty: %w", edubot.ErrValidation)
	}

	b.mu.Lock()
	s, err := b.sessionForSendLocked(req.SessionID)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	id := s.meta.ID
	first := len(s.messages) == 0
	b.appendLocked(s, edubot.UserMessage(req.Content, req.Metadata))
	history := b.recentLocked(s)
	b.mu.Unlock()

	reply, respErr := b.responder.Respond(ctx, history)

	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[id]
	if !ok {
		return nil, fmt.Errorf("memory: session %s deleted during reply: %w", id, edubot.ErrNotFound)
	}
	if respErr != nil {
		b.logger.Error("responder failed", "session", id, "err", respErr)
		b.appendLocked(s, edubot.ErrorMessage(edubot.ApologyMessage))
		return nil, fmt.Errorf("memory: respond: %w", respErr)
	}

	stored := b.appendLocked(s, edubot.BotMessage(reply.Content, reply.Metadata))
	if first && s.meta.NeedsTitle() {
		s.meta.Title = edubot.DeriveTitle(req.Content)
		s.meta.TitleIsDefault = false
	}
	return &edubot.SendResponse{
		Reply:     stored.Content,
		SessionID: id,
		MessageID: stored.ID,
		Metadata:  maps.Clone(stored.Metadata),
	}, nil
}

// History returns the messages of a session, oldest first.
func (b *Backend) History(_ context.Context, sessionID string) ([]edubot.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("memory: session %s: %w", sessionID, edubot.ErrNotFound)
	}
	return cloneMessages(s.messages), nil
}

// Sessions returns all sessions, most recently updated first.
func (b *Backend) Sessions(context.Context) ([]edubot.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]edubot.Session, 0, len(b.sessions))
	for _, s := range b.sessions {
		meta := s.meta
		meta.MessageCount = len(s.messages)
		out = append(out, meta)
	}
	slices.SortFunc(out, func(x, y edubot.Session) int {
		if c := y.UpdatedAt.Compare(x.UpdatedAt); c != 0 {
			return c
		}
		if c := y.CreatedAt.Compare(x.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return out, nil
}

// CreateSession starts an empty session with the placeholder title.
func (b *Backend) CreateSession(context.Context) (edubot.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createLocked().meta, nil
}

// DeleteSession removes a session and its messages.
func (b *Backend) DeleteSession(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[sessionID]; !ok {
		return fmt.Errorf("memory: session %s: %w", sessionID, edubot.ErrNotFound)
	}
	delete(b.sessions, sessionID)
	return nil
}

func (b *Backend) sessionForSendLocked(id string) (*session, error) {
	if id == "" {
		return b.createLocked(), nil
	}
	s, ok := b.sessions[id]
	if !ok {
		return nil, fmt.Errorf("memory: session %s: %w", id, edubot.ErrNotFound)
	}
	return s, nil
}

func (b *Backend) createLocked() *session {
	now := b.clock.Now()
	s := &session{meta: edubot.Session{
		ID:             b.newID(),
		Title:          edubot.DefaultTitle,
		TitleIsDefault: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}}
	b.sessions[s.meta.ID] = s
	return s
}

func (b *Backend) appendLocked(s *session, m edubot.Message) edubot.Message {
	m.ID = b.newID()
	m.Timestamp = b.clock.Now()
	m.Metadata = maps.Clone(m.Metadata)
	s.messages = append(s.messages, m)
	s.meta.UpdatedAt = m.Timestamp
	return m
}

// recentLocked returns copies of the last contextSize messages of s.
func (b *Backend) recentLocked(s *session) []edubot.Message {
	msgs := s.messages
	if b.contextSize > 0 && len(msgs) > b.contextSize {
		msgs = msgs[len(msgs)-b.contextSize:]
	}
	return cloneMessages(msgs)
}

func cloneMessages(msgs []edubot.Message) []edubot.Message {
	out := make([]edubot.Message, len(msgs))
	for i, m := range msgs {
		m.Metadata = maps.Clone(m.Metadata)
		out[i] = m
	}
	return out
}
