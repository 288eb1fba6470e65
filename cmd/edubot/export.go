package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/edubot/edubot"
	edubotjson "github.com/edubot/edubot/json"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentExports bounds the history requests in flight during an
// export.
const maxConcurrentExports = 4

// exportTranscripts saves the transcript of session id, or of every session
// when id is "all", under dir. It returns the transcript files now in dir.
func exportTranscripts(ctx context.Context, tr edubot.Transport, id, dir string) ([]string, error) {
	sessions, err := tr.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if id != "all" {
		i := slices.IndexFunc(sessions, func(s edubot.Session) bool { return s.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("session %s: %w", id, edubot.ErrNotFound)
		}
		sessions = sessions[i : i+1]
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentExports)
	for _, s := range sessions {
		g.Go(func() error {
			msgs, err := tr.History(ctx, s.ID)
			if err != nil {
				return fmt.Errorf("history of %s: %w", s.ID, err)
			}
			path := filepath.Join(dir, edubotjson.Filename(s.ID))
			if err := edubotjson.Save(path, edubot.Transcript{Session: s, Messages: msgs}); err != nil {
				return fmt.Errorf("save %s: %w", s.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return edubotjson.List(dir)
}
