// Command edubot is a terminal chat client for the educational assistant.
//
// Usage:
//
//	edubot [flags]
//	GEMINI_API_KEY=gk-...    edubot -backend local [flags]
//	ANTHROPIC_API_KEY=sk-... edubot -backend local [flags]
//
// Flags:
//
//	-backend string      Backend: api (default) or local
//	-url string          Assistant API base URL (api backend)
//	-timeout duration    Per-request timeout (api backend)
//	-user string         User id sent with requests (api backend)
//	-provider string     Local backend model: gemini, anthropic or echo (auto-detected from env vars if omitted)
//	-model string        Model ID (local backend, provider-specific)
//	-api-key string      API key (overrides the provider's env var)
//	-session string      Session to open, or "all" with -export
//	-export string       Write session transcripts to this directory and exit
//	-lecture string      Request a generated lecture with this title and exit
//	-subject string      Lecture subject (with -lecture)
//	-grade string        Lecture grade level (with -lecture)
//	-requirements string Lecture requirements (with -lecture)
//	-slides string       Build a slide deck from this lecture id and exit
//	-slides-style string professional, creative or minimal (with -slides)
//	-questions           Add question slides (with -slides)
//	-log-level string    debug, info, warn or error (overrides EDUBOT_LOG_LEVEL)
//	-log-file string     Append logs to this file
//
// A .env file in the working directory is loaded if present.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/edubot/edubot"
	bt "github.com/edubot/edubot/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "edubot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		backendFlag  = flag.String("backend", "api", "Backend: api or local")
		baseURL      = flag.String("url", "", "Assistant API base URL (default: http://localhost:8000/api/v1)")
		timeout      = flag.Duration("timeout", 0, "Per-request timeout (default: 30s)")
		userID       = flag.String("user", "", "User id sent with requests")
		providerFlag = flag.String("provider", "", "Local backend model: gemini, anthropic, echo (auto-detected from env vars if omitted)")
		model        = flag.String("model", "", "Model ID for the local backend (provider-specific)")
		apiKey       = flag.String("api-key", "", "API key (overrides the provider's env var)")
		sessionID    = flag.String("session", "", "Session to open, or \"all\" with -export")
		exportDir    = flag.String("export", "", "Write session transcripts to this directory and exit")
		lectureTitle = flag.String("lecture", "", "Request a generated lecture with this title and exit")
		subject      = flag.String("subject", "", "Lecture subject")
		grade        = flag.String("grade", "", "Lecture grade level")
		requirements = flag.String("requirements", "", "Lecture requirements")
		slidesFrom   = flag.String("slides", "", "Build a slide deck from this lecture id and exit")
		slidesStyle  = flag.String("slides-style", edubot.DeckStyleProfessional, "Deck style: professional, creative, minimal")
		questions    = flag.Bool("questions", false, "Add question slides to the deck")
		logLevel     = flag.String("log-level", "", "Log level: debug, info, warn, error")
		logFile      = flag.String("log-file", "", "Append logs to this file")
	)
	flag.Parse()

	// A missing .env is normal; anything else is worth reporting.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The TUI owns the terminal, so it logs nowhere unless -log-file is set.
	interactive := *exportDir == "" && *lectureTitle == "" && *slidesFrom == ""
	var fallback io.Writer = os.Stderr
	if interactive {
		fallback = io.Discard
	}
	logger, closeLog, err := newLogger(*logLevel, os.Getenv("EDUBOT_LOG_LEVEL"), *logFile, fallback)
	if err != nil {
		return err
	}
	defer closeLog()

	backend, err := resolveBackend(ctx, backendConfig{
		name:         *backendFlag,
		baseURL:      *baseURL,
		timeout:      *timeout,
		userID:       *userID,
		provider:     *providerFlag,
		model:        *model,
		apiKeyFlag:   *apiKey,
		geminiEnv:    os.Getenv("GEMINI_API_KEY"),
		anthropicEnv: os.Getenv("ANTHROPIC_API_KEY"),
		logger:       logger,
	})
	if err != nil {
		return err
	}

	switch {
	case *lectureTitle != "":
		svc, ok := backend.(edubot.LectureService)
		if !ok {
			return fmt.Errorf("lectures need the api backend, not %q", *backendFlag)
		}
		return requestLecture(ctx, svc, edubot.LectureRequest{
			Title:        *lectureTitle,
			Subject:      *subject,
			Grade:        *grade,
			Requirements: *requirements,
		}, os.Stdout)

	case *slidesFrom != "":
		svc, ok := backend.(edubot.SlideService)
		if !ok {
			return fmt.Errorf("slides need the api backend, not %q", *backendFlag)
		}
		req := edubot.NewDeckFromLectureRequest(*slidesFrom)
		req.Style = *slidesStyle
		req.IncludeQuestions = *questions
		return requestDeck(ctx, svc, req, os.Stdout)

	case *exportDir != "":
		if *sessionID == "" {
			return errors.New("-export needs -session (a session id or \"all\")")
		}
		paths, err := exportTranscripts(ctx, backend, *sessionID, *exportDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(os.Stdout, p)
		}
		return nil
	}

	feed := bt.NewStateFeed()
	chat := edubot.NewOrchestrator(backend,
		edubot.WithLogger(logger),
		edubot.WithChangeHandler(feed.Publish),
	)
	if err := openSession(ctx, chat, *sessionID); err != nil {
		return err
	}

	tuiModel := bt.New(chat, feed.States(), edubot.DefaultTheme())
	if err := bt.Run(ctx, tuiModel); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// openSession loads the session list and, when id is set, switches to it.
// An unreachable backend is not fatal for the list: the TUI starts empty
// and the failure is in the log.
func openSession(ctx context.Context, chat *edubot.Orchestrator, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	listErr := chat.LoadSessions(ctx)
	if id == "" {
		return nil
	}
	if err := chat.SwitchToSession(ctx, id); err != nil {
		return errors.Join(err, listErr)
	}
	return nil
}
