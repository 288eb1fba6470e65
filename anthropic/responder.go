package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/edubot/edubot"
)

// Interface compliance check.
var _ edubot.Responder = (*Responder)(nil)

// Responder implements [edubot.Responder] for the Anthropic Messages API.
type Responder struct {
	apiKey     string
	baseURL    string
	model      string
	system     string
	maxTokens  int
	httpClient *http.Client
}

// Option configures a [Responder].
type Option func(*Responder)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(baseURL string) Option {
	return func(r *Responder) { r.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Responder) { r.httpClient = hc }
}

// WithModel sets the model ID.
func WithModel(model string) Option {
	return func(r *Responder) { r.model = model }
}

// WithSystemPrompt replaces [edubot.DefaultSystemInstruction]. An empty
// prompt sends none.
func WithSystemPrompt(s string) Option {
	return func(r *Responder) { r.system = s }
}

// WithMaxTokens caps the length of each reply.
func WithMaxTokens(n int) Option {
	return func(r *Responder) { r.maxTokens = n }
}

// New creates an Anthropic [Responder] with the given API key and options.
func New(apiKey string, opts ...Option) *Responder {
	r := &Responder{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		system:     edubot.DefaultSystemInstruction,
		maxTokens:  defaultMaxTokens,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Respond sends history to the Messages API and returns the text of the
// reply. The reply metadata names the model, the stop reason and the token
// usage.
func (r *Responder) Respond(ctx context.Context, history []edubot.Message) (edubot.Reply, error) {
	msgs := convertMessages(history)
	if len(msgs) == 0 {
		return edubot.Reply{}, errors.New("anthropic: no messages to respond to")
	}

	body, err := json.Marshal(apiRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    convertSystem(r.system),
		Messages:  msgs,
	})
	if err != nil {
		return edubot.Reply{}, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return edubot.Reply{}, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", r.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return edubot.Reply{}, fmt.Errorf("anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return edubot.Reply{}, parseHTTPError(resp)
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return edubot.Reply{}, fmt.Errorf("anthropic: decode response: %w", err)
	}

	var text strings.Builder
	for _, b := range out.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	if text.Len() == 0 {
		return edubot.Reply{}, errors.New("anthropic: empty response")
	}

	model := out.Model
	if model == "" {
		model = r.model
	}
	return edubot.Reply{
		Content: text.String(),
		Metadata: map[string]any{
			"type":          "text",
			"model":         model,
			"stop_reason":   out.StopReason,
			"input_tokens":  out.Usage.InputTokens,
			"output_tokens": out.Usage.OutputTokens,
		},
	}, nil
}

// convertSystem converts a system prompt string to the content blocks the
// API expects. Returns nil when the prompt is empty.
func convertSystem(prompt string) []apiContentBlock {
	if prompt == "" {
		return nil
	}
	return []apiContentBlock{{Type: "text", Text: prompt}}
}

// convertMessages maps history to API turns. The API wants alternating
// roles starting with the user, so error and empty messages are skipped,
// consecutive messages from one sender are merged, and leading assistant
// turns are dropped.
func convertMessages(msgs []edubot.Message) []apiMessage {
	var result []apiMessage
	for _, m := range msgs {
		if m.IsError || strings.TrimSpace(m.Content) == "" {
			continue
		}
		var role string
		switch m.Sender {
		case edubot.SenderUser:
			role = "user"
		case edubot.SenderBot:
			role = "assistant"
		default:
			continue
		}
		if len(result) == 0 && role != "user" {
			continue
		}
		block := apiContentBlock{Type: "text", Text: m.Content}
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Content = append(result[n-1].Content, block)
			continue
		}
		result = append(result, apiMessage{Role: role, Content: []apiContentBlock{block}})
	}
	return result
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Type == "" {
		return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("anthropic: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
}
