// Package api implements [edubot.Transport], [edubot.LectureService] and
// [edubot.SlideService] against the assistant's REST API.
package api

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/edubot/edubot"
)

const (
	defaultBaseURL        = "http://localhost:8000/api/v1"
	defaultTimeout        = 30 * time.Second
	defaultLectureTimeout = 60 * time.Second

	messagePath  = "/chat/message"
	historyPath  = "/chat/history/"
	sessionsPath = "/chat/sessions"
	sessionPath  = "/chat/session"
	lecturesPath = "/lectures"
	slidesPath   = "/slides"
)

// placeholderTitles are the titles the server assigns to sessions nobody
// has named yet.
var placeholderTitles = []string{edubot.DefaultTitle, "Chat mới", "Chat không tiêu đề"}

type apiSendRequest struct {
	Message   string         `json:"message"`
	SessionID string         `json:"sessionId,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// apiSendResponse accepts the session id in either casing. The server
// replies with session_id; older deployments used sessionId.
type apiSendResponse struct {
	Reply          string         `json:"reply"`
	SessionID      string         `json:"session_id"`
	SessionIDCamel string         `json:"sessionId"`
	MessageID      string         `json:"message_id"`
	Metadata       map[string]any `json:"metadata"`
}

func (r apiSendResponse) sessionID() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.SessionIDCamel
}

type apiHistoryResponse struct {
	SessionID  string       `json:"session_id"`
	Messages   []apiMessage `json:"messages"`
	TotalCount int          `json:"total_count"`
}

type apiMessage struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	Content     string         `json:"content"`
	Sender      string         `json:"sender"`
	MessageType string         `json:"message_type"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   timestamp      `json:"created_at"`
}

func (m apiMessage) toMessage() edubot.Message {
	isError, _ := m.Metadata["error"].(bool)
	return edubot.Message{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    edubot.Sender(m.Sender),
		Metadata:  m.Metadata,
		Timestamp: m.CreatedAt.Time,
		IsError:   isError,
	}
}

type apiSessionsResponse struct {
	Sessions []apiSession `json:"sessions"`
}

type apiSession struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    timestamp `json:"created_at"`
	UpdatedAt    timestamp `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

func (s apiSession) toSession() edubot.Session {
	title := s.Title
	isDefault := title == "" || slices.Contains(placeholderTitles, title)
	if title == "" {
		title = edubot.DefaultTitle
	}
	return edubot.Session{
		ID:             s.ID,
		Title:          title,
		TitleIsDefault: isDefault,
		MessageCount:   s.MessageCount,
		CreatedAt:      s.CreatedAt.Time,
		UpdatedAt:      s.UpdatedAt.Time,
	}
}

type apiLectureRequest struct {
	Title        string `json:"title"`
	Subject      string `json:"subject"`
	Grade        string `json:"grade,omitempty"`
	Description  string `json:"description,omitempty"`
	Requirements string `json:"requirements"`
	UserID       string `json:"user_id,omitempty"`
}

type apiCreateLectureResponse struct {
	LectureID string `json:"lecture_id"`
	Message   string `json:"message"`
	Status    string `json:"status"`
}

type apiLecture struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Subject      string    `json:"subject"`
	Grade        string    `json:"grade"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Content      any       `json:"content"`
	Status       string    `json:"status"`
	CreatedAt    timestamp `json:"created_at"`
	UpdatedAt    timestamp `json:"updated_at"`
}

func (l apiLecture) toLecture() edubot.Lecture {
	return edubot.Lecture{
		ID:           l.ID,
		Title:        l.Title,
		Subject:      l.Subject,
		Grade:        l.Grade,
		Description:  l.Description,
		Requirements: l.Requirements,
		Content:      l.Content,
		Status:       edubot.LectureStatus(l.Status),
		CreatedAt:    l.CreatedAt.Time,
		UpdatedAt:    l.UpdatedAt.Time,
	}
}

type apiDeckRequest struct {
	Title            string `json:"title"`
	Subject          string `json:"subject"`
	PresentationType string `json:"presentation_type,omitempty"`
	Duration         int    `json:"duration,omitempty"`
	Description      string `json:"description,omitempty"`
	Requirements     string `json:"requirements"`
	UserID           string `json:"user_id,omitempty"`
}

type apiDeckFromLectureRequest struct {
	IncludeIntro      bool   `json:"include_intro"`
	IncludeConclusion bool   `json:"include_conclusion"`
	IncludeQuestions  bool   `json:"include_questions"`
	SlideStyle        string `json:"slide_style,omitempty"`
	UserID            string `json:"user_id,omitempty"`
}

type apiCreateDeckResponse struct {
	SlideID string `json:"slide_id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type apiSlide struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	SlideType string `json:"slide_type,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type apiDeck struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Subject          string     `json:"subject"`
	PresentationType string     `json:"presentation_type"`
	Duration         int        `json:"duration"`
	Description      string     `json:"description"`
	Requirements     string     `json:"requirements"`
	Slides           []apiSlide `json:"slides"`
	SlideCount       int        `json:"slide_count"`
	Status           string     `json:"status"`
	SourceLectureID  string     `json:"source_lecture_id"`
	CreatedAt        timestamp  `json:"created_at"`
	UpdatedAt        timestamp  `json:"updated_at"`
}

func (d apiDeck) toDeck() edubot.Deck {
	var slides []edubot.Slide
	for _, s := range d.Slides {
		slides = append(slides, edubot.Slide{Title: s.Title, Content: s.Content, Type: s.SlideType, Notes: s.Notes})
	}
	return edubot.Deck{
		ID:               d.ID,
		Title:            d.Title,
		Subject:          d.Subject,
		PresentationType: d.PresentationType,
		Duration:         d.Duration,
		Description:      d.Description,
		Requirements:     d.Requirements,
		Slides:           slides,
		SlideCount:       d.SlideCount,
		Status:           edubot.LectureStatus(d.Status),
		SourceLectureID:  d.SourceLectureID,
		CreatedAt:        d.CreatedAt.Time,
		UpdatedAt:        d.UpdatedAt.Time,
	}
}

type apiDeckList struct {
	Slides     []apiDeck `json:"slides"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
}

// apiDeckUpdate is a partial update; omitted fields keep their value.
type apiDeckUpdate struct {
	Title            *string    `json:"title,omitempty"`
	Subject          *string    `json:"subject,omitempty"`
	PresentationType *string    `json:"presentation_type,omitempty"`
	Duration         *int       `json:"duration,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Requirements     *string    `json:"requirements,omitempty"`
	Slides           []apiSlide `json:"slides,omitempty"`
	Status           *string    `json:"status,omitempty"`
}

type apiDeckExport struct {
	Message     string `json:"message"`
	SlideID     string `json:"slide_id"`
	Format      string `json:"format"`
	DownloadURL string `json:"download_url"`
}

type apiLectureList struct {
	Lectures   []apiLecture `json:"lectures"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
}

// apiErrorResponse is the server's error body. Detail is a string for
// application errors and a list of field errors for request validation.
type apiErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// timestamp decodes the server's ISO 8601 times, which omit the zone when
// they are naive UTC.
type timestamp struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}
