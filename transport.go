package edubot

import "context"

// SendRequest is a single user turn sent to the assistant service.
type SendRequest struct {
	Content   string
	SessionID string // empty asks the service to create a session
	Metadata  map[string]any
}

// SendResponse is the assistant's reply to a SendRequest.
type SendResponse struct {
	Reply     string
	SessionID string
	MessageID string
	Metadata  map[string]any
}

// Transport performs the network calls the orchestrator depends on. Every
// method may fail with a transport error; callers do not distinguish error
// subtypes beyond the sentinels in this package.
type Transport interface {
	SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error)
	History(ctx context.Context, sessionID string) ([]Message, error)
	Sessions(ctx context.Context) ([]Session, error)
	CreateSession(ctx context.Context) (Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
