package edubot

import (
	"fmt"
	"strings"
)

// ValidateMessage checks that a message has a known sender and content.
func ValidateMessage(m Message) error {
	switch m.Sender {
	case SenderUser, SenderBot:
	default:
		return fmt.Errorf("unknown sender %q: %w", m.Sender, ErrValidation)
	}
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%s message has empty content: %w", m.Sender, ErrValidation)
	}
	return nil
}

func validationError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}
