package bytez

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/internal/tlsutil"
)

// DefaultTimeout 单次上游请求的默认超时
const DefaultTimeout = 30 * time.Second

// 上游错误消息前缀，Request Handler 依赖这些文本做分类。
const (
	MsgTimeout          = "Request timeout. Please try again with a smaller request."
	requestFailedPrefix = "Request failed: "
	unexpectedPrefix    = "Unexpected error: "
)

// 调用结果标签（用于指标）
const (
	OutcomeSuccess       = "success"
	OutcomeTimeout       = "timeout"
	OutcomeRequestFailed = "request_failed"
	OutcomeUnexpected    = "unexpected"
)

// Observer 接收每次上游调用的结果，metrics.Collector 实现了该接口。
type Observer interface {
	ObserveUpstream(endpoint, outcome string, duration time.Duration)
}

// Options 客户端配置
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Observer   Observer
}

// Client 上游 Provider 的 HTTP 适配器。
// Request 永远返回一个 map，传输层故障被转换为 {"error": ...}。
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	observer Observer
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewClient 创建 Provider 客户端
func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = tlsutil.SecureHTTPClient(tlsutil.DefaultTransportOptions())
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		apiKey:   opts.APIKey,
		http:     hc,
		observer: opts.Observer,
		tracer:   otel.Tracer("agentmarket/bytez"),
		logger:   logger.With(zap.String("component", "bytez_client")),
	}
}

// BaseURL 返回配置的基础 URL
func (c *Client) BaseURL() string { return c.baseURL }

// Request 向 <baseURL>/<endpoint> 发起请求。
// POST 以 JSON 发送 body，GET 将 body 编码为查询参数。timeout <= 0 时使用 DefaultTimeout。
// 调用方的取消信号不会传递到上游请求，只有超时会终止它。
func (c *Client) Request(ctx context.Context, endpoint string, body map[string]any, method string, timeout time.Duration) (result map[string]any) {
	start := time.Now()
	outcome := OutcomeSuccess

	ctx, span := c.tracer.Start(ctx, "bytez.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("bytez.endpoint", endpoint),
			attribute.String("http.method", method),
		))

	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeUnexpected
			msg := fmt.Sprint(r)
			c.logger.Error("Unexpected error", zap.String("endpoint", endpoint), zap.String("error", msg))
			result = map[string]any{"error": unexpectedPrefix + msg}
		}
		if outcome != OutcomeSuccess {
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		if c.observer != nil {
			c.observer.ObserveUpstream(endpoint, outcome, time.Since(start))
		}
	}()

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	reqURL := c.baseURL + "/" + endpoint
	c.logger.Info("making upstream request", zap.String("method", method), zap.String("url", reqURL))

	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	req, err := c.newRequest(reqCtx, method, reqURL, body)
	if err != nil {
		outcome = OutcomeUnexpected
		c.logger.Error("Unexpected error", zap.String("url", reqURL), zap.Error(err))
		return map[string]any{"error": unexpectedPrefix + err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			outcome = OutcomeTimeout
			c.logger.Warn("upstream request timed out", zap.String("url", reqURL), zap.Duration("timeout", timeout))
			return map[string]any{"error": MsgTimeout}
		}
		outcome = OutcomeRequestFailed
		c.logger.Error("Request failed", zap.String("url", reqURL), zap.Error(err))
		return map[string]any{"error": requestFailedPrefix + err.Error()}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = OutcomeRequestFailed
		detail := statusDetail(resp, reqURL)
		c.logger.Error("Request failed", zap.String("url", reqURL), zap.Int("status", resp.StatusCode), zap.String("detail", detail))
		return map[string]any{"error": requestFailedPrefix + detail}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			outcome = OutcomeTimeout
			return map[string]any{"error": MsgTimeout}
		}
		outcome = OutcomeRequestFailed
		c.logger.Error("Request failed", zap.String("url", reqURL), zap.Error(err))
		return map[string]any{"error": requestFailedPrefix + err.Error()}
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		outcome = OutcomeRequestFailed
		c.logger.Error("Request failed", zap.String("url", reqURL), zap.Error(err))
		return map[string]any{"error": requestFailedPrefix + "invalid JSON response: " + err.Error()}
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		outcome = OutcomeUnexpected
		msg := fmt.Sprintf("unexpected response type %T", decoded)
		c.logger.Error("Unexpected error", zap.String("url", reqURL), zap.String("error", msg))
		return map[string]any{"error": unexpectedPrefix + msg}
	}
	return obj
}

func (c *Client) newRequest(ctx context.Context, method, reqURL string, body map[string]any) (*http.Request, error) {
	var req *http.Request
	switch strings.ToUpper(method) {
	case http.MethodPost:
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
	case http.MethodGet:
		u, err := url.Parse(reqURL)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		for k, v := range body {
			addQueryValue(q, k, v)
		}
		u.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("Unsupported HTTP method: %s", method)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// addQueryValue 列表值展开为重复参数，nil 值跳过
func addQueryValue(q url.Values, key string, v any) {
	switch val := v.(type) {
	case nil:
	case []any:
		for _, item := range val {
			addQueryValue(q, key, item)
		}
	case []string:
		for _, item := range val {
			q.Add(key, item)
		}
	case string:
		q.Add(key, val)
	default:
		q.Add(key, fmt.Sprint(val))
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// statusDetail 生成非 2xx 响应的错误描述，并附带 Provider 返回的消息。
func statusDetail(resp *http.Response, reqURL string) string {
	kind := "Server Error"
	if resp.StatusCode < 500 {
		kind = "Client Error"
	}
	detail := fmt.Sprintf("%d %s: %s for url: %s", resp.StatusCode, kind, http.StatusText(resp.StatusCode), reqURL)
	if msg := readErrorMessage(resp.Body); msg != "" {
		detail += " (" + msg + ")"
	}
	return detail
}

// readErrorMessage 读取响应体中的错误消息
// 依次尝试 {"error": {"message"}}、{"error": "..."}、{"message": "..."}，失败则回退到原始文本
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var nested struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &nested) == nil && nested.Error.Message != "" {
		if nested.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", nested.Error.Message, nested.Error.Type)
		}
		return nested.Error.Message
	}
	var flat struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &flat) == nil {
		if flat.Error != "" {
			return flat.Error
		}
		if flat.Message != "" {
			return flat.Message
		}
	}
	return strings.TrimSpace(string(data))
}
