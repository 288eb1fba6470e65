package edubot

import (
	"context"
	"time"
)

// Slide types the generation pipeline assigns.
const (
	SlideTitle      = "title"
	SlideContent    = "content"
	SlideConclusion = "conclusion"
)

// Deck styles accepted when building a deck from a lecture.
const (
	DeckStyleProfessional = "professional"
	DeckStyleCreative     = "creative"
	DeckStyleMinimal      = "minimal"
)

// Slide is one slide of a deck.
type Slide struct {
	Title   string
	Content string
	Type    string
	Notes   string
}

// DeckRequest asks the generation pipeline for a new slide deck.
type DeckRequest struct {
	Title            string
	Subject          string
	PresentationType string // lecture, workshop, seminar, conference; optional
	Duration         int    // minutes; optional
	Description      string
	Requirements     string
}

// Validate checks the fields the generation pipeline requires.
func (r DeckRequest) Validate() error {
	switch {
	case r.Title == "":
		return validationError("deck title is required")
	case r.Subject == "":
		return validationError("deck subject is required")
	case r.Requirements == "":
		return validationError("deck requirements are required")
	case r.Duration < 0:
		return validationError("deck duration is negative")
	}
	return nil
}

// DeckFromLectureRequest asks for a deck built from an existing lecture.
// Use [NewDeckFromLectureRequest] for the service's defaults.
type DeckFromLectureRequest struct {
	LectureID         string
	IncludeIntro      bool
	IncludeConclusion bool
	IncludeQuestions  bool
	Style             string
}

// NewDeckFromLectureRequest returns a request with an intro and a
// conclusion slide, no question slides and the professional style.
func NewDeckFromLectureRequest(lectureID string) DeckFromLectureRequest {
	return DeckFromLectureRequest{
		LectureID:         lectureID,
		IncludeIntro:      true,
		IncludeConclusion: true,
		Style:             DeckStyleProfessional,
	}
}

// Validate checks that a lecture is named and the style is known.
func (r DeckFromLectureRequest) Validate() error {
	if r.LectureID == "" {
		return validationError("lecture id is required")
	}
	switch r.Style {
	case "", DeckStyleProfessional, DeckStyleCreative, DeckStyleMinimal:
		return nil
	default:
		return validationError("unknown deck style " + r.Style)
	}
}

// Deck is a generated slide deck. Decks share the lecture lifecycle.
type Deck struct {
	ID               string
	Title            string
	Subject          string
	PresentationType string
	Duration         int
	Description      string
	Requirements     string
	Slides           []Slide
	SlideCount       int
	Status           LectureStatus
	SourceLectureID  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DeckPage is one page of a deck listing.
type DeckPage struct {
	Decks      []Deck
	TotalCount int
	Page       int
}

// DeckUpdate changes selected fields of a deck. Nil fields are left as
// they are; a non-nil Slides replaces every slide.
type DeckUpdate struct {
	Title            *string
	Subject          *string
	PresentationType *string
	Duration         *int
	Description      *string
	Requirements     *string
	Slides           []Slide
	Status           *LectureStatus
}

// DeckExport describes where an exported deck can be downloaded.
type DeckExport struct {
	DeckID      string
	Format      string
	DownloadURL string
	Message     string
}

// SlideService reaches the slide generation endpoints.
type SlideService interface {
	CreateDeck(ctx context.Context, req DeckRequest) (Deck, error)
	DeckFromLecture(ctx context.Context, req DeckFromLectureRequest) (Deck, error)
	Deck(ctx context.Context, id string) (Deck, error)
	Decks(ctx context.Context, page, limit int) (DeckPage, error)
	UpdateDeck(ctx context.Context, id string, u DeckUpdate) error
	DeleteDeck(ctx context.Context, id string) error
	ExportDeck(ctx context.Context, id, format string) (DeckExport, error)
}
