package json

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/edubot/edubot"
)

// transcriptPattern matches transcript files at any depth below a directory.
const transcriptPattern = "**/*.json"

// Save writes a Transcript to a JSON file, creating parent directories as
// needed. The file is replaced atomically.
func Save(path string, t edubot.Transcript) error {
	data, err := MarshalTranscript(t)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Transcript from a JSON file.
func Load(path string) (edubot.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return edubot.Transcript{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}

// List returns the paths of all .json files below dir, sorted. Directories
// and in-progress temp files are skipped.
func List(dir string) ([]string, error) {
	var paths []string
	err := doublestar.GlobWalk(os.DirFS(dir), transcriptPattern, func(p string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(p)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	slices.Sort(paths)
	return paths, nil
}

// Filename returns the file name a transcript of session id is saved
// under. Path separators in id are replaced so the file stays in its
// directory.
func Filename(id string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(id) + ".json"
}
