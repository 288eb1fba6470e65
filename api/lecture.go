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

// CreateLecture submits a lecture for generation. The server generates
// content asynchronously, so the returned lecture carries the submitted
// fields, the assigned id and a generating status; poll [Client.Lecture]
// for the content.
func (c *Client) CreateLecture(ctx context.Context, req edubot.LectureRequest) (edubot.Lecture, error) {
	if err := req.Validate(); err != nil {
		return edubot.Lecture{}, fmt.Errorf("api: %w", err)
	}
	var out apiCreateLectureResponse
	err := c.do(ctx, c.lectureTimeout, http.MethodPost, lecturesPath+"/create", apiLectureRequest{
		Title:        req.Title,
		Subject:      req.Subject,
		Grade:        req.Grade,
		Description:  req.Description,
		Requirements: req.Requirements,
		UserID:       c.userID,
	}, &out)
	if err != nil {
		return edubot.Lecture{}, err
	}
	if out.LectureID == "" {
		return edubot.Lecture{}, errors.New("api: create lecture: response has no id")
	}
	status := edubot.LectureStatus(out.Status)
	if status == "" {
		status = edubot.LectureGenerating
	}
	return edubot.Lecture{
		ID:           out.LectureID,
		Title:        req.Title,
		Subject:      req.Subject,
		Grade:        req.Grade,
		Description:  req.Description,
		Requirements: req.Requirements,
		Status:       status,
	}, nil
}

// Lecture returns one lecture. An unknown id yields an error wrapping
// [edubot.ErrNotFound].
func (c *Client) Lecture(ctx context.Context, id string) (edubot.Lecture, error) {
	var out apiLecture
	if err := c.do(ctx, c.lectureTimeout, http.MethodGet, lecturesPath+"/"+url.PathEscape(id), nil, &out); err != nil {
		return edubot.Lecture{}, err
	}
	return out.toLecture(), nil
}

// Lectures returns one page of lectures. Pages start at 1; non-positive
// page or limit values are left to the server's defaults.
func (c *Client) Lectures(ctx context.Context, page, limit int) (edubot.LecturePage, error) {
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
	path := lecturesPath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out apiLectureList
	if err := c.do(ctx, c.lectureTimeout, http.MethodGet, path, nil, &out); err != nil {
		return edubot.LecturePage{}, err
	}
	lectures := make([]edubot.Lecture, len(out.Lectures))
	for i, l := range out.Lectures {
		lectures[i] = l.toLecture()
	}
	return edubot.LecturePage{Lectures: lectures, TotalCount: out.TotalCount, Page: out.Page}, nil
}

// DeleteLecture deletes a lecture.
func (c *Client) DeleteLecture(ctx context.Context, id string) error {
	return c.do(ctx, c.lectureTimeout, http.MethodDelete, lecturesPath+"/"+url.PathEscape(id), nil, nil)
}
