package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/edubot/edubot"
	"github.com/edubot/edubot/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...api.Option) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	base := []api.Option{api.WithBaseURL(srv.URL + "/api/v1"), api.WithHTTPClient(srv.Client())}
	return api.New(append(base, opts...)...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_SendMessage(t *testing.T) {
	t.Parallel()

	t.Run("request format", func(t *testing.T) {
		t.Parallel()
		var body map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/chat/message", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			raw, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(raw, &body))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"reply":      "Xin chào!",
				"session_id": "s1",
				"message_id": "m1",
				"metadata":   map[string]any{"model": "gemini"},
			})
		}, api.WithUserID("student-7"))

		resp, err := client.SendMessage(context.Background(), edubot.SendRequest{
			Content:   "hello",
			SessionID: "s1",
			Metadata:  map[string]any{"source": "cli"},
		})

		require.NoError(t, err)
		assert.Equal(t, "hello", body["message"])
		assert.Equal(t, "s1", body["sessionId"])
		assert.Equal(t, "student-7", body["user_id"])
		assert.Equal(t, map[string]any{"source": "cli"}, body["metadata"])
		assert.Equal(t, "Xin chào!", resp.Reply)
		assert.Equal(t, "s1", resp.SessionID)
		assert.Equal(t, "m1", resp.MessageID)
		assert.Equal(t, "gemini", resp.Metadata["model"])
	})

	t.Run("omits empty session id", func(t *testing.T) {
		t.Parallel()
		var body map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(raw, &body))
			writeJSON(t, w, http.StatusOK, map[string]any{"reply": "ok", "session_id": "new"})
		})

		resp, err := client.SendMessage(context.Background(), edubot.SendRequest{Content: "hi"})

		require.NoError(t, err)
		assert.NotContains(t, body, "sessionId")
		assert.NotContains(t, body, "user_id")
		assert.Equal(t, "new", resp.SessionID)
	})

	t.Run("accepts camel case session id", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"reply": "ok", "sessionId": "camel"})
		})

		resp, err := client.SendMessage(context.Background(), edubot.SendRequest{Content: "hi"})

		require.NoError(t, err)
		assert.Equal(t, "camel", resp.SessionID)
	})

	t.Run("server error carries detail", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusInternalServerError, map[string]any{"detail": "Có lỗi xảy ra khi xử lý tin nhắn"})
		})

		resp, err := client.SendMessage(context.Background(), edubot.SendRequest{Content: "hi"})

		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "HTTP 500")
		assert.Contains(t, err.Error(), "Có lỗi xảy ra khi xử lý tin nhắn")
		assert.NotErrorIs(t, err, edubot.ErrNotFound)
	})

	t.Run("validation error detail list", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]any{{"loc": []string{"body", "message"}, "msg": "field required"}},
			})
		})

		_, err := client.SendMessage(context.Background(), edubot.SendRequest{Content: "hi"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 422")
		assert.Contains(t, err.Error(), "field required")
	})

	t.Run("non json error body", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down\n"))
		})

		_, err := client.SendMessage(context.Background(), edubot.SendRequest{Content: "hi"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 502: upstream down")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		})

		_, err := client.SendMessage(context.Background(), edubot.SendRequest{Content: "hi"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "api: decode")
	})

	t.Run("times out", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}, api.WithTimeout(20*time.Millisecond))
		defer close(release)

		_, err := client.SendMessage(context.Background(), edubot.SendRequest{Content: "hi"})

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("logs requests at debug", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"reply": "ok"})
		}, api.WithLogger(logger))

		_, err := client.SendMessage(context.Background(), edubot.SendRequest{Content: "hi"})

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "api request")
		assert.Contains(t, buf.String(), "/chat/message")
	})
}

func TestClient_History(t *testing.T) {
	t.Parallel()

	t.Run("decodes messages", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/v1/chat/history/s1", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]any{
				"session_id": "s1",
				"messages": []map[string]any{
					{"id": "a", "session_id": "s1", "content": "What is 2+2?", "sender": "user", "message_type": "text", "metadata": map[string]any{}, "created_at": "2025-06-01T10:00:00.123456"},
					{"id": "b", "session_id": "s1", "content": "4", "sender": "bot", "message_type": "text", "metadata": map[string]any{}, "created_at": "2025-06-01T10:00:02Z"},
					{"id": "c", "session_id": "s1", "content": "oops", "sender": "bot", "metadata": map[string]any{"error": true}, "created_at": ""},
				},
				"total_count": 3,
			})
		})

		msgs, err := client.History(context.Background(), "s1")

		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "a", msgs[0].ID)
		assert.Equal(t, edubot.SenderUser, msgs[0].Sender)
		assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 123456000, time.UTC), msgs[0].Timestamp)
		assert.Equal(t, edubot.SenderBot, msgs[1].Sender)
		assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 2, 0, time.UTC), msgs[1].Timestamp)
		assert.False(t, msgs[1].IsError)
		assert.True(t, msgs[2].IsError)
		assert.True(t, msgs[2].Timestamp.IsZero())
	})

	t.Run("escapes session id", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/chat/history/a%2Fb", r.URL.EscapedPath())
			writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "a/b", "messages": []any{}})
		})

		msgs, err := client.History(context.Background(), "a/b")

		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusNotFound, map[string]any{"detail": "Không tìm thấy session"})
		})

		_, err := client.History(context.Background(), "missing")

		assert.ErrorIs(t, err, edubot.ErrNotFound)
	})
}

func TestClient_Sessions(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/sessions", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"sessions": []map[string]any{
				{"id": "s2", "title": "Fractions", "created_at": "2025-06-01T09:00:00", "updated_at": "2025-06-02T09:00:00", "message_count": 4},
				{"id": "s1", "title": "Chat không tiêu đề", "created_at": nil, "updated_at": nil, "message_count": 0},
				{"id": "s0", "title": "", "message_count": 0},
			},
		})
	})

	sessions, err := client.Sessions(context.Background())

	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "s2", sessions[0].ID)
	assert.Equal(t, "Fractions", sessions[0].Title)
	assert.False(t, sessions[0].TitleIsDefault)
	assert.Equal(t, 4, sessions[0].MessageCount)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), sessions[0].UpdatedAt)
	assert.True(t, sessions[1].TitleIsDefault)
	assert.Equal(t, "Chat không tiêu đề", sessions[1].Title)
	assert.True(t, sessions[1].CreatedAt.IsZero())
	assert.Equal(t, edubot.DefaultTitle, sessions[2].Title)
	assert.True(t, sessions[2].TitleIsDefault)
}

func TestClient_CreateSession(t *testing.T) {
	t.Parallel()

	t.Run("returns placeholder session", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/chat/session", r.URL.Path)
			assert.Equal(t, "student-7", r.URL.Query().Get("user_id"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"id": "s9", "title": "Chat mới", "created_at": "2025-06-01T09:00:00.5", "message_count": 0,
				"message": "Session created successfully",
			})
		}, api.WithUserID("student-7"))

		s, err := client.CreateSession(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "s9", s.ID)
		assert.True(t, s.TitleIsDefault)
		assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 500000000, time.UTC), s.CreatedAt)
	})

	t.Run("missing id is an error", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"title": "Chat mới"})
		})

		_, err := client.CreateSession(context.Background())

		assert.Error(t, err)
	})
}

func TestClient_DeleteSession(t *testing.T) {
	t.Parallel()

	t.Run("deletes", func(t *testing.T) {
		t.Parallel()
		var method, path string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			writeJSON(t, w, http.StatusOK, map[string]any{"message": "Session đã được xóa thành công"})
		})

		require.NoError(t, client.DeleteSession(context.Background(), "s1"))
		assert.Equal(t, http.MethodDelete, method)
		assert.Equal(t, "/api/v1/chat/session/s1", path)
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusNotFound, map[string]any{"detail": "Không tìm thấy session"})
		})

		err := client.DeleteSession(context.Background(), "s1")

		assert.ErrorIs(t, err, edubot.ErrNotFound)
		assert.Contains(t, err.Error(), "Không tìm thấy session")
	})
}

func TestClient_DrivesOrchestrator(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/chat/message":
			writeJSON(t, w, http.StatusOK, map[string]any{"reply": "Photosynthesis turns light into sugar.", "session_id": "s1", "message_id": "m1"})
		case "/api/v1/chat/sessions":
			writeJSON(t, w, http.StatusOK, map[string]any{"sessions": []map[string]any{{"id": "s1", "title": "Chat mới"}}})
		default:
			http.NotFound(w, r)
		}
	})
	o := edubot.NewOrchestrator(client)

	require.NoError(t, o.LoadSessions(context.Background()))
	require.NoError(t, o.SendMessage(context.Background(), "What is photosynthesis?", nil))

	assert.Equal(t, "s1", o.CurrentSessionID())
	assert.Equal(t, "What is photosynthesis?", o.Sessions()[0].Title)
	assert.Len(t, o.Messages(), 2)
}
