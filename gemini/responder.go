package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/edubot/edubot"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ edubot.Responder = (*Responder)(nil)

// Responder implements [edubot.Responder] for the Google Gemini API.
type Responder struct {
	client    *genai.Client
	model     string
	system    string
	maxTokens int32

	baseURL    string
	httpClient *http.Client
}

// Option configures a [Responder].
type Option func(*Responder)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(r *Responder) { r.model = model }
}

// WithSystemInstruction replaces [edubot.DefaultSystemInstruction]. An empty
// instruction sends none.
func WithSystemInstruction(s string) Option {
	return func(r *Responder) { r.system = s }
}

// WithMaxTokens caps the length of each reply.
func WithMaxTokens(n int) Option {
	return func(r *Responder) { r.maxTokens = int32(n) }
}

// WithBaseURL overrides the API endpoint. Useful for testing with httptest.
func WithBaseURL(baseURL string) Option {
	return func(r *Responder) { r.baseURL = baseURL }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Responder) { r.httpClient = hc }
}

// New creates a Gemini [Responder] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Responder, error) {
	r := &Responder{
		model:     defaultModel,
		system:    edubot.DefaultSystemInstruction,
		maxTokens: defaultMaxTokens,
	}
	for _, o := range opts {
		o(r)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: r.httpClient,
	}
	if r.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: r.baseURL}
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	r.client = gc
	return r, nil
}

// Respond generates the model's reply to history. The reply metadata names
// the model and, when reported, the token usage.
func (r *Responder) Respond(ctx context.Context, history []edubot.Message) (edubot.Reply, error) {
	contents := ConvertMessages(history)
	if len(contents) == 0 {
		return edubot.Reply{}, errors.New("gemini: no messages to respond to")
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, r.buildConfig())
	if err != nil {
		return edubot.Reply{}, fmt.Errorf("gemini: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return edubot.Reply{}, errors.New("gemini: empty response")
	}

	meta := map[string]any{"type": "text", "model": r.model}
	if u := resp.UsageMetadata; u != nil {
		meta["input_tokens"] = int(u.PromptTokenCount)
		meta["output_tokens"] = int(u.CandidatesTokenCount)
	}
	return edubot.Reply{Content: text, Metadata: meta}, nil
}

func (r *Responder) buildConfig() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{MaxOutputTokens: r.maxTokens}
	if r.system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: r.system}},
		}
	}
	return config
}
