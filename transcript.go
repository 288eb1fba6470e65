package edubot

// Transcript is a session together with its full message log, as exported
// for offline reading.
type Transcript struct {
	Session  Session
	Messages []Message
}
