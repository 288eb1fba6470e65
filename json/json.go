// Package json persists chat transcripts as JSON files.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/edubot/edubot"
)

const envelopeVersion = 1

// envelope is the v1 wire format for a persisted transcript.
type envelope struct {
	Version        int          `json:"version"`
	SessionID      string       `json:"session_id"`
	Title          string       `json:"title"`
	TitleIsDefault bool         `json:"title_is_default,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Messages       []messageDTO `json:"messages"`
}

// messageDTO is the JSON representation of a Message.
type messageDTO struct {
	ID        string         `json:"id"`
	Sender    string         `json:"sender"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	IsError   bool           `json:"is_error,omitempty"`
}

// MarshalTranscript serializes a Transcript to JSON in v1 envelope format.
func MarshalTranscript(t edubot.Transcript) ([]byte, error) {
	env := envelope{
		Version:        envelopeVersion,
		SessionID:      t.Session.ID,
		Title:          t.Session.Title,
		TitleIsDefault: t.Session.TitleIsDefault,
		CreatedAt:      t.Session.CreatedAt,
		UpdatedAt:      t.Session.UpdatedAt,
		Messages:       make([]messageDTO, len(t.Messages)),
	}
	for i, m := range t.Messages {
		if err := edubot.ValidateMessage(m); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		env.Messages[i] = messageDTO{
			ID:        m.ID,
			Sender:    string(m.Sender),
			Content:   m.Content,
			Metadata:  m.Metadata,
			Timestamp: m.Timestamp,
			IsError:   m.IsError,
		}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript deserializes a Transcript from JSON in v1 envelope
// format. The message count of the session reflects the stored messages.
func UnmarshalTranscript(data []byte) (edubot.Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return edubot.Transcript{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return edubot.Transcript{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]edubot.Message, len(env.Messages))
	for i, dto := range env.Messages {
		m := edubot.Message{
			ID:        dto.ID,
			Sender:    edubot.Sender(dto.Sender),
			Content:   dto.Content,
			Metadata:  dto.Metadata,
			Timestamp: dto.Timestamp,
			IsError:   dto.IsError,
		}
		if err := edubot.ValidateMessage(m); err != nil {
			return edubot.Transcript{}, fmt.Errorf("message %d: %w", i, err)
		}
		if m.Metadata == nil {
			m.Metadata = map[string]any{}
		}
		msgs[i] = m
	}
	return edubot.Transcript{
		Session: edubot.Session{
			ID:             env.SessionID,
			Title:          env.Title,
			TitleIsDefault: env.TitleIsDefault,
			MessageCount:   len(msgs),
			CreatedAt:      env.CreatedAt,
			UpdatedAt:      env.UpdatedAt,
		},
		Messages: msgs,
	}, nil
}
