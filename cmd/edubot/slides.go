package main

import (
	"context"
	"fmt"
	"io"

	"github.com/edubot/edubot"
)

// requestDeck asks the service to build a slide deck from a lecture and
// reports the deck id. Like lectures, decks finish generating on the server.
func requestDeck(ctx context.Context, svc edubot.SlideService, req edubot.DeckFromLectureRequest, w io.Writer) error {
	d, err := svc.DeckFromLecture(ctx, req)
	if err != nil {
		return fmt.Errorf("create slides: %w", err)
	}
	fmt.Fprintf(w, "slides %s from lecture %s (%s)\n", d.ID, req.LectureID, d.Status)
	return nil
}
