package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/agent"
	"github.com/BaSui01/agentmarket/api"
	"github.com/BaSui01/agentmarket/types"
)

// =============================================================================
// Agent Marketplace Handler
// =============================================================================

// 调用结果分类（同时作为指标的 outcome 标签）
const (
	OutcomeSuccess          = "success"
	OutcomeFailed           = "failed"
	OutcomeRateLimited      = "rate_limited"
	OutcomeAccessRestricted = "access_restricted"
	OutcomeConnectionError  = "connection_error"
	OutcomeUnknownAgent     = "unknown_agent"
	OutcomeInternalError    = "internal_error"
	OutcomePayloadTooLarge  = "payload_too_large"
)

// 分类后的错误体
var (
	rateLimitedBody = api.ErrorBody{
		Error:   "Rate limit exceeded",
		Message: "Too many requests. Please wait a moment and try again, or consider upgrading your Bytez account for higher rate limits.",
	}
	accessRestrictedBody = api.ErrorBody{
		Error:   "Model access restricted",
		Message: "This model requires a paid Bytez account. Please upgrade your account or try a different model.",
	}
	connectionErrorBody = api.ErrorBody{
		Error:   "API connection error",
		Message: "Unable to connect to the AI service. Please try again later.",
	}
)

// 目录列表中的展示字段，所有 Agent 相同
const (
	listingPrice     = 9.99
	listingRating    = 4.8
	listingDownloads = 1250
	listingCreatedAt = "2024-01-01T00:00:00Z"
)

// CallRecorder 记录 Agent 调用结果，metrics.Collector 实现了该接口
type CallRecorder interface {
	RecordAgentCall(agentID, outcome string, duration time.Duration)
}

// AgentHandler Agent 目录与调用处理器
type AgentHandler struct {
	factory  *agent.Factory
	recorder CallRecorder
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewAgentHandler 创建 Agent 处理器，recorder 可为 nil
func NewAgentHandler(factory *agent.Factory, recorder CallRecorder, logger *zap.Logger) *AgentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentHandler{
		factory:  factory,
		recorder: recorder,
		tracer:   otel.Tracer("agentmarket/handlers"),
		logger:   logger.With(zap.String("handler", "agent")),
	}
}

// =============================================================================
// HTTP Handlers
// =============================================================================

// HandleListAgents GET /api/agents/，按注册顺序返回 JSON 数组
func (h *AgentHandler) HandleListAgents(w http.ResponseWriter, r *http.Request) {
	ids := h.factory.IDs()
	agents := make([]api.AgentSummary, 0, len(ids))
	for _, id := range ids {
		entry, ok := h.factory.Describe(id)
		if !ok {
			continue
		}
		agents = append(agents, api.AgentSummary{
			ID:          entry.ID,
			Name:        entry.Name,
			Description: entry.Description,
			Category:    entry.Category,
			Models:      []string{},
			Price:       listingPrice,
			Rating:      listingRating,
			Downloads:   listingDownloads,
			Icon:        categoryIcon(entry.Category),
			CreatedAt:   listingCreatedAt,
		})
	}

	h.logger.Debug("listing agents", zap.Int("count", len(agents)))
	WriteJSON(w, http.StatusOK, agents)
}

// HandleAgentDetails GET /api/agents/{id}/details/
func (h *AgentHandler) HandleAgentDetails(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.factory.Describe(r.PathValue("id"))
	if !ok {
		WriteJSON(w, http.StatusNotFound, api.ErrorBody{Error: "Agent not found"})
		return
	}

	WriteJSON(w, http.StatusOK, api.AgentDetails{
		ID:             entry.ID,
		Name:           entry.Name,
		Description:    entry.Description,
		Category:       entry.Category,
		Models:         []string{},
		Capabilities:   []string{},
		Pricing:        map[string]any{},
		ExamplePayload: entry.ExamplePayload,
	})
}

// HandleCallAgent POST /api/agents/{id}/call/
//
// 请求体为空时视为空 Payload；超过 MaxBodyBytes 返回 413，不是合法 JSON 对象时返回 500。
// Agent 结果按 ClassifyResult 映射为 HTTP 状态码。
func (h *AgentHandler) HandleCallAgent(w http.ResponseWriter, r *http.Request) {
	if !RequirePOST(w, r, h.logger) {
		return
	}

	id := r.PathValue("id")
	start := time.Now()
	ctx, span := h.tracer.Start(r.Context(), "agent.call", trace.WithAttributes(attribute.String("agent.id", id)))
	defer span.End()

	outcome := OutcomeInternalError
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("agent call panicked", zap.String("agent_id", id), zap.Any("panic", rec), zap.Stack("stack"))
			span.SetStatus(codes.Error, "panic")
			outcome = OutcomeInternalError
			WriteJSON(w, http.StatusInternalServerError, api.ErrorBody{Error: MsgInternalError, Message: fmt.Sprint(rec)})
		}
		span.SetAttributes(attribute.String("agent.outcome", outcome))
		if h.recorder != nil {
			h.recorder.RecordAgentCall(id, outcome, time.Since(start))
		}
	}()

	payload, err := decodePayload(w, r)
	if err != nil {
		h.logger.Warn("invalid agent payload", zap.String("agent_id", id), zap.Error(err))
		span.RecordError(err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			outcome = OutcomePayloadTooLarge
			WriteJSON(w, http.StatusRequestEntityTooLarge, api.ErrorBody{Error: "Request body too large", Message: err.Error()})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, api.ErrorBody{Error: MsgInternalError, Message: err.Error()})
		return
	}

	ag, err := h.factory.Resolve(id)
	if err != nil {
		outcome = OutcomeUnknownAgent
		if !types.IsErrorCode(err, types.ErrUnknownAgent) {
			outcome = OutcomeInternalError
		}
		WriteError(w, err, h.logger)
		return
	}

	result := ag.Process(ctx, payload)

	status, body, classified := ClassifyResult(result)
	outcome = classified
	if status != http.StatusOK || outcome == OutcomeFailed {
		msg, _ := result.ErrorMessage()
		span.SetStatus(codes.Error, msg)
		h.logger.Warn("agent call failed",
			zap.String("agent_id", id),
			zap.String("outcome", outcome),
			zap.String("error", msg),
		)
	}

	WriteJSON(w, status, body)
}

// ClassifyResult 将 Agent 结果映射为 (HTTP 状态码, 响应体, outcome)。
//
// 没有 error 的结果原样以 200 返回；error 文本（不区分大小写）含
// "concurrency" 为 429，含 "upgrade" 为 402，含 "fetch failed" 为 502，
// 按此顺序匹配；其余错误原样以 200 返回。
func ClassifyResult(result agent.Result) (int, any, string) {
	msg, failed := result.ErrorMessage()
	if !failed {
		return http.StatusOK, result, OutcomeSuccess
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "concurrency"):
		return http.StatusTooManyRequests, rateLimitedBody, OutcomeRateLimited
	case strings.Contains(lower, "upgrade"):
		return http.StatusPaymentRequired, accessRestrictedBody, OutcomeAccessRestricted
	case strings.Contains(lower, "fetch failed"):
		return http.StatusBadGateway, connectionErrorBody, OutcomeConnectionError
	default:
		return http.StatusOK, result, OutcomeFailed
	}
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

func decodePayload(w http.ResponseWriter, r *http.Request) (agent.Payload, error) {
	data, err := ReadBody(w, r)
	if err != nil {
		return nil, err
	}
	payload := agent.Payload{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = agent.Payload{}
	}
	return payload, nil
}

// categoryIcon 返回分类的首个词（emoji）
func categoryIcon(category string) string {
	fields := strings.Fields(category)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
