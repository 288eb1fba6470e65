package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/edubot/edubot"
)

// Interface compliance checks.
var (
	_ edubot.Transport      = (*Client)(nil)
	_ edubot.LectureService = (*Client)(nil)
	_ edubot.SlideService   = (*Client)(nil)
)

// Client implements [edubot.Transport], [edubot.LectureService] and
// [edubot.SlideService] over HTTP.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	lectureTimeout time.Duration
	userID         string
	logger         *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL, including the version prefix. Useful
// for testing with httptest.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each chat request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLectureTimeout bounds each lecture and slide request. Creation waits
// on content generation, so the default is longer than for chat.
func WithLectureTimeout(d time.Duration) Option {
	return func(c *Client) { c.lectureTimeout = d }
}

// WithUserID attributes messages, sessions and lectures to a user.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

// WithLogger sets the logger that receives request traces at debug level.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:        defaultBaseURL,
		httpClient:     http.DefaultClient,
		timeout:        defaultTimeout,
		lectureTimeout: defaultLectureTimeout,
		logger:         log.New(io.Discard),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SendMessage posts a user turn and returns the assistant's reply. An empty
// session id asks the server to start a new session.
func (c *Client) SendMessage(ctx context.Context, req edubot.SendRequest) (*edubot.SendResponse, error) {
	var out apiSendResponse
	err := c.do(ctx, c.timeout, http.MethodPost, messagePath, apiSendRequest{
		Message:   req.Content,
		SessionID: req.SessionID,
		UserID:    c.userID,
		Metadata:  req.Metadata,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &edubot.SendResponse{
		Reply:     out.Reply,
		SessionID: out.sessionID(),
		MessageID: out.MessageID,
		Metadata:  out.Metadata,
	}, nil
}

// History returns the stored messages of a session, oldest first.
func (c *Client) History(ctx context.Context, sessionID string) ([]edubot.Message, error) {
	var out apiHistoryResponse
	if err := c.do(ctx, c.timeout, http.MethodGet, historyPath+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	msgs := make([]edubot.Message, len(out.Messages))
	for i, m := range out.Messages {
		msgs[i] = m.toMessage()
	}
	return msgs, nil
}

// Sessions returns the server's session list, most recently updated first.
func (c *Client) Sessions(ctx context.Context) ([]edubot.Session, error) {
	var out apiSessionsResponse
	if err := c.do(ctx, c.timeout, http.MethodGet, sessionsPath, nil, &out); err != nil {
		return nil, err
	}
	sessions := make([]edubot.Session, len(out.Sessions))
	for i, s := range out.Sessions {
		sessions[i] = s.toSession()
	}
	return sessions, nil
}

// CreateSession asks the server for a new, empty session.
func (c *Client) CreateSession(ctx context.Context) (edubot.Session, error) {
	path := sessionPath
	if c.userID != "" {
		path += "?" + url.Values{"user_id": {c.userID}}.Encode()
	}
	var out apiSession
	if err := c.do(ctx, c.timeout, http.MethodPost, path, nil, &out); err != nil {
		return edubot.Session{}, err
	}
	if out.ID == "" {
		return edubot.Session{}, errors.New("api: create session: response has no id")
	}
	return out.toSession(), nil
}

// DeleteSession deletes a session. An unknown id yields an error wrapping
// [edubot.ErrNotFound].
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, c.timeout, http.MethodDelete, sessionPath+"/"+url.PathEscape(sessionID), nil, nil)
}

// do sends a JSON request and decodes a JSON response into out. A nil in
// sends no body and a nil out discards the response body.
func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, in, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := parseHTTPError(resp)
		c.logger.Debug("api error", "method", method, "path", path, "status", resp.StatusCode, "err", err)
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	detail := strings.TrimSpace(string(body))
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && len(apiErr.Detail) > 0 {
		var s string
		if err := json.Unmarshal(apiErr.Detail, &s); err == nil {
			detail = s
		} else {
			detail = string(apiErr.Detail)
		}
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("api: HTTP %d: %s: %w", resp.StatusCode, detail, edubot.ErrNotFound)
	}
	return fmt.Errorf("api: HTTP %d: %s", resp.StatusCode, detail)
}
