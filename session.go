package edubot

import "time"

// DefaultTitle is the placeholder title of a session that has not yet been
// named from its first exchange.
const DefaultTitle = "New Chat"

// Session is a named conversation thread with a server-assigned identity.
type Session struct {
	ID    string // empty until the transport assigns one
	Title string
	// TitleIsDefault reports whether Title is still a placeholder and may be
	// replaced by a title derived from the first exchange.
	TitleIsDefault bool
	IsActive       bool
	MessageCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NeedsTitle reports whether the session's title may be derived from a
// message.
func (s Session) NeedsTitle() bool {
	return s.Title == "" || s.TitleIsDefault
}
