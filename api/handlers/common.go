package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/api"
	"github.com/BaSui01/agentmarket/types"
)

// MaxBodyBytes 请求体上限（图片编辑、语音转写的 base64 内容较大）
const MaxBodyBytes = 10 << 20

// MsgInternalError 500 响应的 error 字段
const MsgInternalError = "Internal server error"

// =============================================================================
// 🎯 响应辅助函数
// =============================================================================

// WriteJSON 写入 JSON 响应
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	// 头已写出，编码失败时无法再改状态码
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError 将 error 写为扁平错误体 {error, message}。
// *types.Error 使用其 HTTPStatus（未设置时按错误码映射）与 Message；
// 其他错误视为未预期异常，返回 500。
func WriteError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	typed, ok := types.AsError(err)
	if !ok {
		logger.Error("unhandled error", zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, api.ErrorBody{Error: MsgInternalError, Message: err.Error()})
		return
	}

	status := typed.HTTPStatus
	if status == 0 {
		status = mapErrorCodeToHTTPStatus(typed.Code)
	}

	fields := []zap.Field{
		zap.String("code", string(typed.Code)),
		zap.String("message", typed.Message),
		zap.Int("status", status),
	}
	if typed.Cause != nil {
		fields = append(fields, zap.Error(typed.Cause))
	}
	if status >= http.StatusInternalServerError {
		logger.Error("API error", fields...)
	} else {
		logger.Debug("API error", fields...)
	}

	WriteJSON(w, status, api.ErrorBody{Error: typed.Message})
}

// WriteErrorMessage 写入简单错误消息
func WriteErrorMessage(w http.ResponseWriter, status int, code types.ErrorCode, message string, logger *zap.Logger) {
	WriteError(w, types.NewError(code, message).WithHTTPStatus(status), logger)
}

// =============================================================================
// 🔄 错误码到 HTTP 状态码映射
// =============================================================================

func mapErrorCodeToHTTPStatus(code types.ErrorCode) int {
	switch code {
	// 4xx 客户端错误
	case types.ErrInvalidRequest:
		return http.StatusBadRequest
	case types.ErrAuthentication, types.ErrUnauthorized:
		return http.StatusUnauthorized
	case types.ErrQuotaExceeded:
		return http.StatusPaymentRequired
	case types.ErrForbidden:
		return http.StatusForbidden
	case types.ErrNotFound, types.ErrUnknownAgent:
		return http.StatusNotFound
	case types.ErrMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case types.ErrConflict:
		return http.StatusConflict
	case types.ErrRateLimited:
		return http.StatusTooManyRequests

	// 5xx 服务端错误
	case types.ErrUpstreamTimeout:
		return http.StatusGatewayTimeout
	case types.ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	case types.ErrUpstreamError:
		return http.StatusBadGateway
	case types.ErrInternalError:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// 🛡️ 请求辅助函数
// =============================================================================

// ReadBody 读取请求体，超过 MaxBodyBytes 返回错误
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
}

// DecodeJSONBody 解码 JSON 请求体；空请求体保持 dst 零值。
// 失败时返回 400 的 *types.Error，由调用方写出。
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := ReadBody(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.NewError(types.ErrInvalidRequest, "request body too large").
				WithHTTPStatus(http.StatusRequestEntityTooLarge).WithCause(err)
		}
		return types.NewInvalidRequestError("failed to read request body").WithCause(err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return types.NewInvalidRequestError("invalid JSON body").WithCause(err)
	}
	return nil
}

// RequirePOST 非 POST 请求写出 405 并返回 false
func RequirePOST(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrMethodNotAllowed, "Method not allowed", logger)
	return false
}

// =============================================================================
// 📊 响应包装器（用于捕获状态码）
// =============================================================================

// ResponseWriter 包装 http.ResponseWriter 以捕获状态码与响应字节数
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
	Written    bool
	Bytes      int64
}

// NewResponseWriter 创建新的 ResponseWriter
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
	}
}

// WriteHeader 重写 WriteHeader 以捕获状态码
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.Written {
		rw.StatusCode = code
		rw.Written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write 重写 Write 以统计字节数
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.Written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.Bytes += int64(n)
	return n, err
}

// Unwrap 供 http.ResponseController 访问底层 ResponseWriter
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
