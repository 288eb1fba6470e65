package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/edubot/edubot"
)

// CreateDeck submits a slide deck for generation. Like lectures, decks are
// generated in the background: the returned deck carries the submitted
// fields, the assigned id and the reported status.
func (c *Client) CreateDeck(ctx context.Context, req edubot.DeckRequest) (edubot.Deck, error) {
	if err := req.Validate(); err != nil {
		return edubot.Deck{}, fmt.Errorf("api: %w", err)
	}
	var out apiCreateDeckResponse
	err := c.do(ctx, c.lectureTimeout, http.MethodPost, slidesPath+"/create", apiDeckRequest{
		Title:            req.Title,
		Subject:          req.Subject,
		PresentationType: req.PresentationType,
		Duration:         req.Duration,
		Description:      req.Description,
		Requirements:     req.Requirements,
		UserID:           c.userID,
	}, &out)
	if err != nil {
		return edubot.Deck{}, err
	}
	deck, err := out.deck("create deck")
	if err != nil {
		return edubot.Deck{}, err
	}
	deck.Title = req.Title
	deck.Subject = req.Subject
	deck.PresentationType = req.PresentationType
	deck.Duration = req.Duration
	deck.Description = req.Description
	deck.Requirements = req.Requirements
	return deck, nil
}

// DeckFromLecture asks for a deck built from an existing lecture.
func (c *Client) DeckFromLecture(ctx context.Context, req edubot.DeckFromLectureRequest) (edubot.Deck, error) {
	if err := req.Validate(); err != nil {
		return edubot.Deck{}, fmt.Errorf("api: %w", err)
	}
	var out apiCreateDeckResponse
	path := slidesPath + "/from-lecture/" + url.PathEscape(req.LectureID)
	err := c.do(ctx, c.lectureTimeout, http.MethodPost, path, apiDeckFromLectureRequest{
		IncludeIntro:      req.IncludeIntro,
		IncludeConclusion: req.IncludeConclusion,
		IncludeQuestions:  req.IncludeQuestions,
		SlideStyle:        req.Style,
		UserID:            c.userID,
	}, &out)
	if err != nil {
		return edubot.Deck{}, err
	}
	deck, err := out.deck("deck from lecture")
	if err != nil {
		return edubot.Deck{}, err
	}
	deck.SourceLectureID = req.LectureID
	return deck, nil
}

func (r apiCreateDeckResponse) deck(op string) (edubot.Deck, error) {
	if r.SlideID == "" {
		return edubot.Deck{}, fmt.Errorf("api: %s: response has no id", op)
	}
	status := edubot.LectureStatus(r.Status)
	if status == "" {
		status = edubot.LectureGenerating
	}
	return edubot.Deck{ID: r.SlideID, Status: status}, nil
}

// Deck returns one deck. An unknown id yields an error wrapping
// [edubot.ErrNotFound].
func (c *Client) Deck(ctx context.Context, id string) (edubot.Deck, error) {
	var out apiDeck
	if err := c.do(ctx, c.lectureTimeout, http.MethodGet, slidesPath+"/"+url.PathEscape(id), nil, &out); err != nil {
		return edubot.Deck{}, err
	}
	return out.toDeck(), nil
}

// Decks returns one page of decks. Non-positive page or limit values are
// left to the server's defaults.
func (c *Client) Decks(ctx context.Context, page, limit int) (edubot.DeckPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("per_page", strconv.Itoa(limit))
	}
	if c.userID != "" {
		q.Set("user_id", c.userID)
	}
	path := slidesPath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out apiDeckList
	if err := c.do(ctx, c.lectureTimeout, http.MethodGet, path, nil, &out); err != nil {
		return edubot.DeckPage{}, err
	}
	decks := make([]edubot.Deck, len(out.Slides))
	for i, d := range out.Slides {
		decks[i] = d.toDeck()
	}
	return edubot.DeckPage{Decks: decks, TotalCount: out.TotalCount, Page: out.Page}, nil
}

// UpdateDeck applies a partial update. An empty update is rejected before
// any request is made.
func (c *Client) UpdateDeck(ctx context.Context, id string, u edubot.DeckUpdate) error {
	if u.Title == nil && u.Subject == nil && u.PresentationType == nil && u.Duration == nil &&
		u.Description == nil && u.Requirements == nil && u.Slides == nil && u.Status == nil {
		return errors.New("api: update deck: nothing to update")
	}
	body := apiDeckUpdate{
		Title:            u.Title,
		Subject:          u.Subject,
		PresentationType: u.PresentationType,
		Duration:         u.Duration,
		Description:      u.Description,
		Requirements:     u.Requirements,
	}
	for _, s := range u.Slides {
		body.Slides = append(body.Slides, apiSlide{Title: s.Title, Content: s.Content, SlideType: s.Type, Notes: s.Notes})
	}
	if u.Status != nil {
		status := string(*u.Status)
		body.Status = &status
	}
	return c.do(ctx, c.lectureTimeout, http.MethodPut, slidesPath+"/"+url.PathEscape(id), body, nil)
}

// DeleteDeck deletes a deck.
func (c *Client) DeleteDeck(ctx context.Context, id string) error {
	return c.do(ctx, c.lectureTimeout, http.MethodDelete, slidesPath+"/"+url.PathEscape(id), nil, nil)
}

// ExportDeck asks the server to export a deck, pptx when format is empty.
// The result names a download URL rather than carrying the file.
func (c *Client) ExportDeck(ctx context.Context, id, format string) (edubot.DeckExport, error) {
	if format == "" {
		format = "pptx"
	}
	path := slidesPath + "/" + url.PathEscape(id) + "/export?" + url.Values{"format": {format}}.Encode()
	var out apiDeckExport
	if err := c.do(ctx, c.lectureTimeout, http.MethodGet, path, nil, &out); err != nil {
		return edubot.DeckExport{}, err
	}
	return edubot.DeckExport{
		DeckID:      out.SlideID,
		Format:      out.Format,
		DownloadURL: out.DownloadURL,
		Message:     out.Message,
	}, nil
}
