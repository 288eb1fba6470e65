package main

import (
	"context"
	"fmt"
	"io"

	"github.com/edubot/edubot"
)

// requestLecture asks the service to generate a lecture and reports its id.
// Generation finishes in the background on the server.
func requestLecture(ctx context.Context, svc edubot.LectureService, req edubot.LectureRequest, w io.Writer) error {
	l, err := svc.CreateLecture(ctx, req)
	if err != nil {
		return fmt.Errorf("create lecture: %w", err)
	}
	fmt.Fprintf(w, "lecture %s: %s (%s)\n", l.ID, l.Title, l.Status)
	return nil
}
