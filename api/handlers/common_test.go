package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/api"
	"github.com/BaSui01/agentmarket/types"
)

// =============================================================================
// 🧪 Common 函数测试
// =============================================================================

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, []int{1, 2, 3})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, "[1,2,3]", w.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   api.ErrorBody
	}{
		{
			name:       "explicit status",
			err:        types.NewInvalidRequestError("User with this email already exists"),
			wantStatus: http.StatusBadRequest,
			wantBody:   api.ErrorBody{Error: "User with this email already exists"},
		},
		{
			name:       "mapped from code",
			err:        types.NewError(types.ErrUnknownAgent, "Unknown agent: x"),
			wantStatus: http.StatusNotFound,
			wantBody:   api.ErrorBody{Error: "Unknown agent: x"},
		},
		{
			name:       "wrapped types error",
			err:        errors.Join(types.NewError(types.ErrRateLimited, "slow down")),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   api.ErrorBody{Error: "slow down"},
		},
		{
			name:       "plain error",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   api.ErrorBody{Error: MsgInternalError, Message: "disk on fire"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err, zap.NewNop())

			assert.Equal(t, tt.wantStatus, w.Code)
			var body api.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := map[types.ErrorCode]int{
		types.ErrInvalidRequest:      http.StatusBadRequest,
		types.ErrAuthentication:      http.StatusUnauthorized,
		types.ErrUnauthorized:        http.StatusUnauthorized,
		types.ErrQuotaExceeded:       http.StatusPaymentRequired,
		types.ErrForbidden:           http.StatusForbidden,
		types.ErrNotFound:            http.StatusNotFound,
		types.ErrMethodNotAllowed:    http.StatusMethodNotAllowed,
		types.ErrConflict:            http.StatusConflict,
		types.ErrRateLimited:         http.StatusTooManyRequests,
		types.ErrUpstreamTimeout:     http.StatusGatewayTimeout,
		types.ErrServiceUnavailable:  http.StatusServiceUnavailable,
		types.ErrUpstreamError:       http.StatusBadGateway,
		types.ErrInternalError:       http.StatusInternalServerError,
		types.ErrorCode("SOMETHING"): http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, mapErrorCodeToHTTPStatus(code), string(code))
	}
}

func TestDecodeJSONBody(t *testing.T) {
	type req struct {
		Email string `json:"email"`
	}

	t.Run("valid", func(t *testing.T) {
		var dst req
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c","extra":1}`))
		require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), r, &dst))
		assert.Equal(t, "a@b.c", dst.Email)
	})

	t.Run("empty body", func(t *testing.T) {
		var dst req
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), r, &dst))
		assert.Empty(t, dst.Email)
	})

	t.Run("invalid json", func(t *testing.T) {
		var dst req
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
		err := DecodeJSONBody(httptest.NewRecorder(), r, &dst)
		assert.True(t, types.IsErrorCode(err, types.ErrInvalidRequest))
	})

	t.Run("too large", func(t *testing.T) {
		var dst req
		big := `{"email":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		err := DecodeJSONBody(httptest.NewRecorder(), r, &dst)
		typed, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, typed.HTTPStatus)
	})
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)
	assert.Same(t, rw, NewResponseWriter(rw))

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusTeapot) // 只生效一次
	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusAccepted, rw.StatusCode)
	assert.Equal(t, int64(5), rw.Bytes)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Same(t, rec, rw.Unwrap())
}
