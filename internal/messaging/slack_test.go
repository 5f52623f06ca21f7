// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/pkg/types"
)

// fakeSlack serves conversations.list in two pages and records chat.postMessage forms.
type fakeSlack struct {
	mu    sync.Mutex
	posts []map[string]string
	pages int
}

func (f *fakeSlack) handler(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/conversations.list":
		f.mu.Lock()
		f.pages++
		f.mu.Unlock()
		if r.Form.Get("cursor") == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"ok":                true,
				"channels":          []map[string]any{{"id": "C001", "name": "general"}},
				"response_metadata": map[string]string{"next_cursor": "page2"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ok":                true,
			"channels":          []map[string]any{{"id": "C002", "name": "journal-club"}},
			"response_metadata": map[string]string{"next_cursor": ""},
		})
	case "/chat.postMessage":
		f.mu.Lock()
		f.posts = append(f.posts, map[string]string{
			"channel":   r.Form.Get("channel"),
			"text":      r.Form.Get("text"),
			"thread_ts": r.Form.Get("thread_ts"),
		})
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": r.Form.Get("channel"), "ts": "1700000000.000100"})
	default:
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "unknown_method"})
	}
}

func newTestSlack(t *testing.T) (*Slack, *fakeSlack) {
	t.Helper()
	f := &fakeSlack{}
	ts := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(ts.Close)

	s, err := NewSlack(types.SlackConfig{Token: "xoxb-test", APIURL: ts.URL})
	require.NoError(t, err)
	return s, f
}

func TestSlackResolveChannelPaginates(t *testing.T) {
	s, f := newTestSlack(t)

	id, err := s.ResolveChannel(context.Background(), "#journal-club")
	require.NoError(t, err)
	assert.Equal(t, "C002", id)
	assert.Equal(t, 2, f.pages)
}

func TestSlackResolveChannelNotFound(t *testing.T) {
	s, _ := newTestSlack(t)

	_, err := s.ResolveChannel(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrChannelResolution)
	assert.True(t, failure.IsFatal(err))
}

func TestSlackPostAndReply(t *testing.T) {
	s, f := newTestSlack(t)
	ctx := context.Background()

	ts, err := s.Post(ctx, "C002", "*Header*")
	require.NoError(t, err)
	assert.Equal(t, "1700000000.000100", ts)

	require.NoError(t, s.PostReply(ctx, "C002", ts, "reply"))

	require.Len(t, f.posts, 2)
	assert.Equal(t, map[string]string{"channel": "C002", "text": "*Header*", "thread_ts": ""}, f.posts[0])
	assert.Equal(t, map[string]string{"channel": "C002", "text": "reply", "thread_ts": ts}, f.posts[1])
}

func TestNewSlackRequiresToken(t *testing.T) {
	_, err := NewSlack(types.SlackConfig{Channel: "journal-club"})
	assert.Error(t, err)
}
