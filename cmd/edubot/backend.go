package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/edubot/edubot"
	"github.com/edubot/edubot/anthropic"
	"github.com/edubot/edubot/api"
	"github.com/edubot/edubot/gemini"
	"github.com/edubot/edubot/memory"
)

// backendConfig carries everything resolveBackend needs. Env var values
// are read in run() and passed in here.
type backendConfig struct {
	name         string
	baseURL      string
	timeout      time.Duration
	userID       string
	provider     string
	model        string
	apiKeyFlag   string
	geminiEnv    string
	anthropicEnv string
	logger       *log.Logger
}

// resolveBackend selects and constructs the transport the orchestrator
// talks to. The api backend reaches the assistant service over HTTP. The
// local backend keeps sessions in memory and answers with a model chosen by
// resolveResponder.
func resolveBackend(ctx context.Context, cfg backendConfig) (edubot.Transport, error) {
	switch cfg.name {
	case "", "api":
		opts := []api.Option{api.WithLogger(cfg.logger)}
		if cfg.baseURL != "" {
			opts = append(opts, api.WithBaseURL(cfg.baseURL))
		}
		if cfg.timeout > 0 {
			opts = append(opts, api.WithTimeout(cfg.timeout))
		}
		if cfg.userID != "" {
			opts = append(opts, api.WithUserID(cfg.userID))
		}
		return api.New(opts...), nil

	case "local":
		responder, err := resolveResponder(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return memory.New(responder, memory.WithLogger(cfg.logger)), nil

	default:
		return nil, fmt.Errorf("unknown backend %q: must be \"api\" or \"local\"", cfg.name)
	}
}

// resolveResponder picks the local backend's responder. The provider is
// taken from -provider or detected from whichever API key is set; an
// explicit -api-key overrides the provider's env var. With no key at all
// the backend echoes questions back.
func resolveResponder(ctx context.Context, cfg backendConfig) (edubot.Responder, error) {
	provider := cfg.provider
	if provider == "" {
		hasAnthropic := cfg.anthropicEnv != ""
		hasGemini := cfg.geminiEnv != "" || cfg.apiKeyFlag != ""
		switch {
		case hasAnthropic && hasGemini:
			return nil, fmt.Errorf("multiple API keys found (ANTHROPIC_API_KEY, GEMINI_API_KEY): use -provider flag to select")
		case hasAnthropic:
			provider = "anthropic"
		case hasGemini:
			provider = "gemini"
		default:
			cfg.logger.Warn("no API key; replies will echo the question")
			return memory.Echo{}, nil
		}
	}

	key := cfg.apiKeyFlag
	switch provider {
	case "anthropic":
		if key == "" {
			key = cfg.anthropicEnv
		}
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use -api-key flag or environment variable)")
		}
		var opts []anthropic.Option
		if cfg.model != "" {
			opts = append(opts, anthropic.WithModel(cfg.model))
		}
		return anthropic.New(key, opts...), nil
	case "gemini":
		if key == "" {
			key = cfg.geminiEnv
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use -api-key flag or environment variable)")
		}
		var opts []gemini.Option
		if cfg.model != "" {
			opts = append(opts, gemini.WithModel(cfg.model))
		}
		return gemini.New(ctx, key, opts...)
	case "echo":
		return memory.Echo{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"gemini\", \"anthropic\" or \"echo\"", provider)
	}
}
