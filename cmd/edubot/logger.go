package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogger builds the application logger. The -log-level flag wins over
// EDUBOT_LOG_LEVEL; both default to info. Logs are appended to file when it
// is set and written to fallback otherwise. The returned func closes the
// log file, if any.
func newLogger(levelFlag, levelEnv, file string, fallback io.Writer) (*log.Logger, func(), error) {
	level := levelFlag
	if level == "" {
		level = levelEnv
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	out := fallback
	closeFn := func() {}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           lvl,
		ReportTimestamp: file != "",
		Prefix:          "edubot",
	})
	return logger, closeFn, nil
}

// parseLevel defers to log.ParseLevel, defaulting to info and accepting
// "warning" for warn.
func parseLevel(s string) (log.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return log.InfoLevel, nil
	case "warning":
		s = "warn"
	}
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("unknown log level: %w", err)
	}
	return lvl, nil
}
