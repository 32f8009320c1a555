package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentmarket/api"
)

// =============================================================================
// 🧪 AgentHandler 测试
// =============================================================================

func newAgentMux(h *AgentHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/agents/{$}", h.HandleListAgents)
	mux.HandleFunc("GET /api/agents/{id}/details/", h.HandleAgentDetails)
	mux.HandleFunc("/api/agents/{id}/call/", h.HandleCallAgent)
	return mux
}

func doRequest(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestAgentHandler_ListAgents(t *testing.T) {
	h, _ := newTestAgentHandler(&stubRequester{})
	w := doRequest(t, newAgentMux(h), http.MethodGet, "/api/agents/", "")

	require.Equal(t, http.StatusOK, w.Code)
	var agents []api.AgentSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agents))
	require.Len(t, agents, 6)

	ids := make([]string, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"writer", "code-assistant", "image-generator", "voice-assistant", "chat-bot", "translator"}, ids)

	first := agents[0]
	assert.Equal(t, "Writer Agent", first.Name)
	assert.Equal(t, "✍️", first.Icon)
	assert.Equal(t, 9.99, first.Price)
	assert.Equal(t, 4.8, first.Rating)
	assert.Equal(t, 1250, first.Downloads)
	assert.Equal(t, "2024-01-01T00:00:00Z", first.CreatedAt)
	assert.NotNil(t, first.Models)
	assert.Equal(t, "💻", agents[1].Icon)
}

func TestAgentHandler_Details(t *testing.T) {
	h, _ := newTestAgentHandler(&stubRequester{})
	mux := newAgentMux(h)

	w := doRequest(t, mux, http.MethodGet, "/api/agents/image-generator/details/", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, "image-generator", body["id"])
	assert.Equal(t, "🎨 Images", body["category"])
	assert.Equal(t, []any{}, body["capabilities"])
	assert.Equal(t, map[string]any{}, body["pricing"])
	assert.Equal(t, "standard", body["example_payload"].(map[string]any)["quality"])

	w = doRequest(t, mux, http.MethodGet, "/api/agents/nope/details/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Agent not found", decodeMap(t, w)["error"])
}

func TestAgentHandler_CallSuccess(t *testing.T) {
	stub := &stubRequester{response: map[string]any{
		"output": map[string]any{"content": "<think>ponder</think>Hi there"},
	}}
	h, rec := newTestAgentHandler(stub)

	w := doRequest(t, newAgentMux(h), http.MethodPost, "/api/agents/writer/call/", `{"prompt":"hello"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{
		"success":  true,
		"output":   "Hi there",
		"response": "Hi there",
		"content":  "Hi there",
		"model":    "google/gemma-2b",
		"provider": "Bytez",
	}, decodeMap(t, w))
	assert.Equal(t, OutcomeSuccess, rec.Last())
}

func TestAgentHandler_CallClassification(t *testing.T) {
	tests := []struct {
		name       string
		upstream   string
		wantStatus int
		wantError  string
		outcome    string
	}{
		{"rate limit", "Rate limit: concurrency exceeded", http.StatusTooManyRequests, "Rate limit exceeded", OutcomeRateLimited},
		{"upgrade", "Please upgrade your plan", http.StatusPaymentRequired, "Model access restricted", OutcomeAccessRestricted},
		{"fetch failed", "fetch failed: ECONNRESET", http.StatusBadGateway, "API connection error", OutcomeConnectionError},
		{"unclassified", "model exploded", http.StatusOK, "model exploded", OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubRequester{response: map[string]any{"error": tt.upstream}}
			h, rec := newTestAgentHandler(stub)

			w := doRequest(t, newAgentMux(h), http.MethodPost, "/api/agents/chat-bot/call/", `{"prompt":"hi"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decodeMap(t, w)["error"])
			assert.Equal(t, tt.outcome, rec.Last())
		})
	}
}

func TestAgentHandler_CallValidationError(t *testing.T) {
	stub := &stubRequester{}
	h, _ := newTestAgentHandler(stub)

	// 空请求体视为空 Payload
	w := doRequest(t, newAgentMux(h), http.MethodPost, "/api/agents/code-assistant/call/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"error": "Missing required field: task"}, decodeMap(t, w))
	assert.Zero(t, stub.CallCount())
}

func TestAgentHandler_CallUnknownAgent(t *testing.T) {
	h, rec := newTestAgentHandler(&stubRequester{})
	w := doRequest(t, newAgentMux(h), http.MethodPost, "/api/agents/ghost/call/", `{}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Unknown agent: ghost", decodeMap(t, w)["error"])
	assert.Equal(t, OutcomeUnknownAgent, rec.Last())
}

func TestAgentHandler_CallMalformedJSON(t *testing.T) {
	stub := &stubRequester{}
	h, rec := newTestAgentHandler(stub)
	w := doRequest(t, newAgentMux(h), http.MethodPost, "/api/agents/writer/call/", `{"prompt":`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, MsgInternalError, body["error"])
	assert.NotEmpty(t, body["message"])
	assert.Zero(t, stub.CallCount())
	assert.Equal(t, OutcomeInternalError, rec.Last())
}

func TestAgentHandler_CallBodyTooLarge(t *testing.T) {
	stub := &stubRequester{}
	h, rec := newTestAgentHandler(stub)
	big := `{"prompt":"` + strings.Repeat("a", MaxBodyBytes+1) + `"}`
	w := doRequest(t, newAgentMux(h), http.MethodPost, "/api/agents/writer/call/", big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, "Request body too large", body["error"])
	assert.NotEmpty(t, body["message"])
	assert.Zero(t, stub.CallCount())
	assert.Equal(t, OutcomePayloadTooLarge, rec.Last())
}

func TestAgentHandler_CallMethodNotAllowed(t *testing.T) {
	h, _ := newTestAgentHandler(&stubRequester{})
	w := doRequest(t, newAgentMux(h), http.MethodGet, "/api/agents/writer/call/", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
}

func TestAgentHandler_CallPanicRecovered(t *testing.T) {
	stub := &stubRequester{panicMsg: "boom"}
	h, rec := newTestAgentHandler(stub)

	w := doRequest(t, newAgentMux(h), http.MethodPost, "/api/agents/translator/call/", `{"prompt":"bonjour"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"error": MsgInternalError, "message": "boom"}, decodeMap(t, w))
	assert.Equal(t, OutcomeInternalError, rec.Last())
}

func TestAgentHandler_CallImage(t *testing.T) {
	stub := &stubRequester{response: map[string]any{
		"data": []any{map[string]any{"url": "u1"}, map[string]any{"url": "u2"}},
	}}
	h, _ := newTestAgentHandler(stub)

	w := doRequest(t, newAgentMux(h), http.MethodPost, "/api/agents/image-generator/call/", `{"prompt":"a cat","n":2}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"u1", "u2"}, body["images"])
	assert.Equal(t, "dall-e-3", body["model"])
}
