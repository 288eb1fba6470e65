package edubot

import (
	"context"
	"time"
)

// LectureStatus is the lifecycle state of a generated lecture.
type LectureStatus string

const (
	LectureGenerating LectureStatus = "generating"
	LectureDraft      LectureStatus = "draft"
	LectureCompleted  LectureStatus = "completed"
	LecturePublished  LectureStatus = "published"
	LectureFailed     LectureStatus = "error"
)

// LectureRequest asks the generation pipeline for a new lecture.
type LectureRequest struct {
	Title        string
	Subject      string
	Grade        string // elementary, middle, high, university; optional
	Description  string
	Requirements string
}

// Validate checks the fields the generation pipeline requires.
func (r LectureRequest) Validate() error {
	switch {
	case r.Title == "":
		return validationError("lecture title is required")
	case r.Subject == "":
		return validationError("lecture subject is required")
	case r.Requirements == "":
		return validationError("lecture requirements are required")
	}
	return nil
}

// Lecture is a generated lecture as reported by the service. Content is
// opaque: the service returns either text or structured sections.
type Lecture struct {
	ID           string
	Title        string
	Subject      string
	Grade        string
	Description  string
	Requirements string
	Content      any
	Status       LectureStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LecturePage is one page of a lecture listing.
type LecturePage struct {
	Lectures   []Lecture
	TotalCount int
	Page       int
}

// LectureService reaches the lecture generation endpoints.
type LectureService interface {
	CreateLecture(ctx context.Context, req LectureRequest) (Lecture, error)
	Lecture(ctx context.Context, id string) (Lecture, error)
	Lectures(ctx context.Context, page, limit int) (LecturePage, error)
	DeleteLecture(ctx context.Context, id string) error
}
