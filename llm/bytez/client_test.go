package bytez

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveUpstream(_ string, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, obs Observer) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, APIKey: "test-key", HTTPClient: srv.Client(), Observer: obs}, zap.NewNop())
}

func TestClient_PostSendsJSONAndBearer(t *testing.T) {
	var gotAuth, gotPath, gotContentType string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data":[{"url":"u1"}]}`))
	}, nil)

	out := c.Request(context.Background(), EndpointImageGenerate, map[string]any{"prompt": "a cat", "n": 1}, "POST", 0)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "/images/generations", gotPath)
	assert.Equal(t, "a cat", gotBody["prompt"])
	assert.Equal(t, float64(1), gotBody["n"])
	assert.Contains(t, out, "data")
	assert.NotContains(t, out, "error")
}

func TestClient_BaseURLTrimsTrailingSlash(t *testing.T) {
	assert.Equal(t, "https://api.bytez.com/models/v2", NewClient(Options{BaseURL: "https://api.bytez.com/models/v2/"}, nil).BaseURL())
	assert.Equal(t, "https://api.bytez.com/v1", NewClient(Options{BaseURL: "https://api.bytez.com/v1"}, nil).BaseURL())
}

func TestClient_EmptyKeyStillSendsRequest(t *testing.T) {
	calls := 0
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()
	c := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()}, nil)

	out := c.Request(context.Background(), "audio/speech", map[string]any{}, "POST", time.Second)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "Bearer ", gotAuth)
	msg, _ := out["error"].(string)
	assert.True(t, strings.HasPrefix(msg, "Request failed: 401 Client Error: Unauthorized for url: "))
	assert.Contains(t, msg, "invalid api key")
}

func TestClient_GetEncodesQuery(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}, nil)

	out := c.Request(context.Background(), "models", map[string]any{
		"task": "chat",
		"tags": []any{"a", "b"},
		"skip": nil,
		"n":    2,
	}, "get", time.Second)

	assert.Equal(t, true, out["ok"])
	assert.Equal(t, []string{"chat"}, gotQuery["task"])
	assert.Equal(t, []string{"a", "b"}, gotQuery["tags"])
	assert.Equal(t, []string{"2"}, gotQuery["n"])
	assert.NotContains(t, gotQuery, "skip")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	obs := &recordingObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, obs)
	defer close(release)

	out := c.Request(context.Background(), "audio/speech", map[string]any{}, "POST", 50*time.Millisecond)

	assert.Equal(t, map[string]any{"error": MsgTimeout}, out)
	assert.Equal(t, []string{OutcomeTimeout}, obs.outcomes)
}

func TestClient_CallerCancelDoesNotAbortUpstream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		_, _ = w.Write([]byte(`{"text":"done"}`))
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := c.Request(ctx, "audio/transcriptions", map[string]any{}, "POST", time.Second)

	assert.Equal(t, "done", out["text"])
}

func TestClient_ConnectionError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	obs := &recordingObserver{}
	c := NewClient(Options{BaseURL: "http://" + addr, APIKey: "k", Observer: obs}, zap.NewNop())
	out := c.Request(context.Background(), "images/generations", map[string]any{}, "POST", time.Second)

	msg, _ := out["error"].(string)
	assert.True(t, strings.HasPrefix(msg, "Request failed: "), msg)
	assert.Equal(t, []string{OutcomeRequestFailed}, obs.outcomes)
}

func TestClient_ServerErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server"}}`))
	}, nil)

	out := c.Request(context.Background(), "images/edits", map[string]any{}, "POST", time.Second)

	msg, _ := out["error"].(string)
	assert.Contains(t, msg, "Request failed: 503 Server Error: Service Unavailable for url: ")
	assert.Contains(t, msg, "overloaded (type: server)")
}

func TestClient_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, nil)

	out := c.Request(context.Background(), "audio/speech", map[string]any{}, "POST", time.Second)

	msg, _ := out["error"].(string)
	assert.True(t, strings.HasPrefix(msg, "Request failed: invalid JSON response"), msg)
}

func TestClient_NonObjectJSON(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}, obs)

	out := c.Request(context.Background(), "audio/speech", map[string]any{}, "POST", time.Second)

	msg, _ := out["error"].(string)
	assert.True(t, strings.HasPrefix(msg, "Unexpected error: "), msg)
	assert.Equal(t, []string{OutcomeUnexpected}, obs.outcomes)
}

func TestClient_UnsupportedMethod(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	}, nil)

	out := c.Request(context.Background(), "audio/speech", map[string]any{}, "DELETE", time.Second)

	assert.Equal(t, map[string]any{"error": "Unexpected error: Unsupported HTTP method: DELETE"}, out)
	assert.Zero(t, calls)
}

func TestClient_UnencodableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, nil)

	out := c.Request(context.Background(), "audio/speech", map[string]any{"ch": make(chan int)}, "POST", time.Second)

	msg, _ := out["error"].(string)
	assert.True(t, strings.HasPrefix(msg, "Unexpected error: encode request body"), msg)
}

func TestReadErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested", `{"error":{"message":"bad"}}`, "bad"},
		{"nested with type", `{"error":{"message":"bad","type":"invalid"}}`, "bad (type: invalid)"},
		{"flat error", `{"error":"concurrency limit"}`, "concurrency limit"},
		{"flat message", `{"message":"please upgrade"}`, "please upgrade"},
		{"raw", " plain text \n", "plain text"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readErrorMessage(strings.NewReader(tt.body)))
		})
	}
}

func TestModelEndpoint(t *testing.T) {
	assert.Equal(t, "models/v2/google/gemma-2b", ModelEndpoint("google/gemma-2b"))
}
