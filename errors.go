package edubot

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a message or request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrBusy indicates an operation was rejected because a send or a
	// session switch is already in flight.
	ErrBusy = errors.New("orchestrator busy")

	// ErrNotFound indicates the requested session or lecture does not exist.
	ErrNotFound = errors.New("not found")
)
