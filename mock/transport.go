// Package mock provides test doubles for edubot interfaces using function fields.
package mock

import (
	"context"

	"github.com/edubot/edubot"
)

// Interface compliance checks.
var (
	_ edubot.Transport      = (*Transport)(nil)
	_ edubot.LectureService = (*LectureService)(nil)
	_ edubot.SlideService   = (*SlideService)(nil)
)

// Transport is a test double for edubot.Transport.
// Set the function fields for the methods you need.
type Transport struct {
	SendMessageFn   func(ctx context.Context, req edubot.SendRequest) (*edubot.SendResponse, error)
	HistoryFn       func(ctx context.Context, sessionID string) ([]edubot.Message, error)
	SessionsFn      func(ctx context.Context) ([]edubot.Session, error)
	CreateSessionFn func(ctx context.Context) (edubot.Session, error)
	DeleteSessionFn func(ctx context.Context, sessionID string) error
}

// SendMessage delegates to SendMessageFn.
func (t *Transport) SendMessage(ctx context.Context, req edubot.SendRequest) (*edubot.SendResponse, error) {
	return t.SendMessageFn(ctx, req)
}

// History delegates to HistoryFn.
func (t *Transport) History(ctx context.Context, sessionID string) ([]edubot.Message, error) {
	return t.HistoryFn(ctx, sessionID)
}

// Sessions delegates to SessionsFn.
func (t *Transport) Sessions(ctx context.Context) ([]edubot.Session, error) {
	return t.SessionsFn(ctx)
}

// CreateSession delegates to CreateSessionFn.
func (t *Transport) CreateSession(ctx context.Context) (edubot.Session, error) {
	return t.CreateSessionFn(ctx)
}

// DeleteSession delegates to DeleteSessionFn.
func (t *Transport) DeleteSession(ctx context.Context, sessionID string) error {
	return t.DeleteSessionFn(ctx, sessionID)
}

// LectureService is a test double for edubot.LectureService.
type LectureService struct {
	CreateLectureFn func(ctx context.Context, req edubot.LectureRequest) (edubot.Lecture, error)
	LectureFn       func(ctx context.Context, id string) (edubot.Lecture, error)
	LecturesFn      func(ctx context.Context, page, limit int) (edubot.LecturePage, error)
	DeleteLectureFn func(ctx context.Context, id string) error
}

// CreateLecture delegates to CreateLectureFn.
func (s *LectureService) CreateLecture(ctx context.Context, req edubot.LectureRequest) (edubot.Lecture, error) {
	return s.CreateLectureFn(ctx, req)
}

// Lecture delegates to LectureFn.
func (s *LectureService) Lecture(ctx context.Context, id string) (edubot.Lecture, error) {
	return s.LectureFn(ctx, id)
}

// Lectures delegates to LecturesFn.
func (s *LectureService) Lectures(ctx context.Context, page, limit int) (edubot.LecturePage, error) {
	return s.LecturesFn(ctx, page, limit)
}

// DeleteLecture delegates to DeleteLectureFn.
func (s *LectureService) DeleteLecture(ctx context.Context, id string) error {
	return s.DeleteLectureFn(ctx, id)
}

// SlideService is a test double for edubot.SlideService.
type SlideService struct {
	CreateDeckFn      func(ctx context.Context, req edubot.DeckRequest) (edubot.Deck, error)
	DeckFromLectureFn func(ctx context.Context, req edubot.DeckFromLectureRequest) (edubot.Deck, error)
	DeckFn            func(ctx context.Context, id string) (edubot.Deck, error)
	DecksFn           func(ctx context.Context, page, limit int) (edubot.DeckPage, error)
	UpdateDeckFn      func(ctx context.Context, id string, u edubot.DeckUpdate) error
	DeleteDeckFn      func(ctx context.Context, id string) error
	ExportDeckFn      func(ctx context.Context, id, format string) (edubot.DeckExport, error)
}

// CreateDeck delegates to CreateDeckFn.
func (s *SlideService) CreateDeck(ctx context.Context, req edubot.DeckRequest) (edubot.Deck, error) {
	return s.CreateDeckFn(ctx, req)
}

// DeckFromLecture delegates to DeckFromLectureFn.
func (s *SlideService) DeckFromLecture(ctx context.Context, req edubot.DeckFromLectureRequest) (edubot.Deck, error) {
	return s.DeckFromLectureFn(ctx, req)
}

// Deck delegates to DeckFn.
func (s *SlideService) Deck(ctx context.Context, id string) (edubot.Deck, error) {
	return s.DeckFn(ctx, id)
}

// Decks delegates to DecksFn.
func (s *SlideService) Decks(ctx context.Context, page, limit int) (edubot.DeckPage, error) {
	return s.DecksFn(ctx, page, limit)
}

// UpdateDeck delegates to UpdateDeckFn.
func (s *SlideService) UpdateDeck(ctx context.Context, id string, u edubot.DeckUpdate) error {
	return s.UpdateDeckFn(ctx, id, u)
}

// DeleteDeck delegates to DeleteDeckFn.
func (s *SlideService) DeleteDeck(ctx context.Context, id string) error {
	return s.DeleteDeckFn(ctx, id)
}

// ExportDeck delegates to ExportDeckFn.
func (s *SlideService) ExportDeck(ctx context.Context, id, format string) (edubot.DeckExport, error) {
	return s.ExportDeckFn(ctx, id, format)
}
