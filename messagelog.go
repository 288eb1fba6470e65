package edubot

// MessageLog is the ordered, append-only sequence of messages belonging to
// one session. Entries are never reordered or modified; the only way to drop
// entries is to replace the whole log.
//
// A MessageLog is not safe for concurrent use. The Orchestrator guards its
// log with its own mutex.
type MessageLog struct {
	messages []Message
}

// NewMessageLog returns a log holding copies of msgs in order.
func NewMessageLog(msgs []Message) *MessageLog {
	l := &MessageLog{}
	l.Replace(msgs)
	return l
}

// Append adds a copy of m to the end of the log.
func (l *MessageLog) Append(m Message) {
	l.messages = append(l.messages, m.clone())
}

// Replace discards the current entries and installs copies of msgs.
func (l *MessageLog) Replace(msgs []Message) {
	l.messages = make([]Message, len(msgs))
	for i, m := range msgs {
		l.messages[i] = m.clone()
	}
}

// Clear empties the log.
func (l *MessageLog) Clear() {
	l.messages = nil
}

// Len returns the number of entries.
func (l *MessageLog) Len() int {
	return len(l.messages)
}

// Messages returns a copy of the entries in arrival order.
func (l *MessageLog) Messages() []Message {
	out := make([]Message, len(l.messages))
	for i, m := range l.messages {
		out[i] = m.clone()
	}
	return out
}
