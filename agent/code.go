package agent

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCodeLanguage 代码 Agent 的默认语言
	DefaultCodeLanguage = "python"

	codeDefaultMaxTokens = 1000
	codeMaxTokensCap     = 2000
	codeDefaultTemp      = 0.1
)

// CodeAgent 代码生成 Agent，服务 code-assistant
type CodeAgent struct {
	models   Requester
	provider string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewCodeAgent 创建代码 Agent
func NewCodeAgent(models Requester, provider string, timeout time.Duration, logger *zap.Logger) *CodeAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeAgent{
		models:   models,
		provider: provider,
		timeout:  timeout,
		logger:   logger.With(zap.String("agent_kind", string(KindCode))),
	}
}

// Kind 实现 Agent
func (a *CodeAgent) Kind() Kind { return KindCode }

// Process 生成代码。必填字段：task。
func (a *CodeAgent) Process(ctx context.Context, p Payload) Result {
	if msg := Validate(p, "task"); msg != "" {
		return Failure(msg)
	}

	model := p.String("model", DefaultTextModel)
	language := p.String("language", DefaultCodeLanguage)
	fullPrompt := codePrompt(language, p.String("task", ""))
	maxTokens := p.Clamp("max_tokens", codeDefaultMaxTokens, 1, codeMaxTokensCap)

	code, errRes := runModel(ctx, a.models, model, fullPrompt, maxTokens, p.Raw("temperature", codeDefaultTemp), a.timeout)
	if errRes != nil {
		a.logger.Debug("model run failed", zap.String("model", model), zap.Any("error", errRes["error"]))
		return errRes
	}
	return Result{
		"success":  true,
		"code":     code,
		"output":   code,
		"response": code,
		"language": language,
		"model":    model,
		"provider": a.provider,
	}
}

func codePrompt(language, task string) string {
	return "You are a helpful coding assistant. Generate clean " + language +
		" code without explanations or thinking process. Just provide the code directly. Keep responses concise and efficient.\n\nTask: " + task
}
