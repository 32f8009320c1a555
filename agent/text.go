package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/llm/bytez"
)

const (
	// DefaultTextModel 文本与代码 Agent 的默认模型
	DefaultTextModel = "google/gemma-2b"

	// DefaultSystemMessage 文本 Agent 的默认系统提示
	DefaultSystemMessage = "You are a helpful assistant. Provide direct, concise responses without using thinking tags or internal monologue. Just give the final answer."

	textDefaultMaxTokens = 500
	textMaxTokensCap     = 1000
	textDefaultTemp      = 0.7

	msgNoOutput = "No output received from model"
)

// TextAgent 文本生成 Agent，服务 writer、chat-bot、translator
type TextAgent struct {
	models   Requester
	provider string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewTextAgent 创建文本 Agent
func NewTextAgent(models Requester, provider string, timeout time.Duration, logger *zap.Logger) *TextAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextAgent{
		models:   models,
		provider: provider,
		timeout:  timeout,
		logger:   logger.With(zap.String("agent_kind", string(KindText))),
	}
}

// Kind 实现 Agent
func (a *TextAgent) Kind() Kind { return KindText }

// Process 生成文本。必填字段：prompt。
func (a *TextAgent) Process(ctx context.Context, p Payload) Result {
	if msg := Validate(p, "prompt"); msg != "" {
		return Failure(msg)
	}

	model := p.String("model", DefaultTextModel)
	system := p.String("system_message", DefaultSystemMessage)
	fullPrompt := system + "\n\nUser: " + p.String("prompt", "")
	maxTokens := p.Clamp("max_tokens", textDefaultMaxTokens, 1, textMaxTokensCap)

	out, errRes := runModel(ctx, a.models, model, fullPrompt, maxTokens, p.Raw("temperature", textDefaultTemp), a.timeout)
	if errRes != nil {
		a.logger.Debug("model run failed", zap.String("model", model), zap.Any("error", errRes["error"]))
		return errRes
	}
	return Result{
		"success":  true,
		"output":   out,
		"response": out,
		"content":  out,
		"model":    model,
		"provider": a.provider,
	}
}

// runModel 调用 models/v2/<model> 并返回清洗后的文本输出。
// 失败时返回非 nil 的错误结果。
func runModel(ctx context.Context, r Requester, model, prompt string, maxTokens int, temperature any, timeout time.Duration) (string, Result) {
	body := map[string]any{
		"text": prompt,
		"params": map[string]any{
			"max_new_tokens": maxTokens,
			"temperature":    temperature,
		},
	}
	resp := r.Request(ctx, bytez.ModelEndpoint(model), body, "POST", timeout)

	if errVal, ok := resp["error"]; ok && truthy(errVal) {
		return "", Failure(errVal)
	}
	output := resp["output"]
	if obj, ok := output.(map[string]any); ok {
		if content, ok := obj["content"]; ok {
			return CleanOutput(contentText(content)), nil
		}
	}
	if truthy(output) {
		return CleanOutput(stringify(output)), nil
	}
	return "", Failure(msgNoOutput)
}

func contentText(v any) string {
	if v == nil {
		return ""
	}
	return stringify(v)
}
