package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/llm/bytez"
)

// 图像任务类型
const (
	ImageTaskGenerate = "generate"
	ImageTaskEdit     = "edit"
)

const (
	DefaultImageModel = "dall-e-3"
	DefaultImageSize  = "1024x1024"

	defaultImageQuality = "standard"
	defaultImageStyle   = "vivid"
)

// ImageAgent 图像生成与编辑 Agent，服务 image-generator
type ImageAgent struct {
	rest    Requester
	timeout time.Duration
	logger  *zap.Logger
}

// NewImageAgent 创建图像 Agent
func NewImageAgent(rest Requester, timeout time.Duration, logger *zap.Logger) *ImageAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageAgent{
		rest:    rest,
		timeout: timeout,
		logger:  logger.With(zap.String("agent_kind", string(KindImage))),
	}
}

// Kind 实现 Agent
func (a *ImageAgent) Kind() Kind { return KindImage }

// Process 按 task_type 分派：generate（默认）或 edit
func (a *ImageAgent) Process(ctx context.Context, p Payload) Result {
	switch task := p.String("task_type", ImageTaskGenerate); task {
	case ImageTaskGenerate:
		return a.Generate(ctx, p)
	case ImageTaskEdit:
		return a.Edit(ctx, p)
	default:
		return Failure("Unknown task type: " + task)
	}
}

// Generate 生成图像。必填字段：prompt。
func (a *ImageAgent) Generate(ctx context.Context, p Payload) Result {
	if msg := Validate(p, "prompt"); msg != "" {
		return Failure(msg)
	}

	prompt := p.Raw("prompt", "")
	model := p.Raw("model", DefaultImageModel)
	size := p.Raw("size", DefaultImageSize)
	body := map[string]any{
		"model":   model,
		"prompt":  prompt,
		"n":       p.Raw("n", 1),
		"size":    size,
		"quality": p.Raw("quality", defaultImageQuality),
		"style":   p.Raw("style", defaultImageStyle),
	}

	resp := a.rest.Request(ctx, bytez.EndpointImageGenerate, body, "POST", a.timeout)
	urls, ok := imageURLs(resp)
	if !ok {
		a.logger.Debug("unexpected upstream response", zap.String("endpoint", bytez.EndpointImageGenerate))
		return Result(resp)
	}
	return Result{
		"success": true,
		"images":  urls,
		"prompt":  prompt,
		"model":   model,
		"size":    size,
	}
}

// Edit 编辑已有图像。必填字段：image、prompt；mask 可选。
func (a *ImageAgent) Edit(ctx context.Context, p Payload) Result {
	if msg := Validate(p, "image", "prompt"); msg != "" {
		return Failure(msg)
	}

	body := map[string]any{
		"image":  p["image"],
		"mask":   p["mask"],
		"prompt": p["prompt"],
		"n":      p.Raw("n", 1),
		"size":   p.Raw("size", DefaultImageSize),
	}

	resp := a.rest.Request(ctx, bytez.EndpointImageEdit, body, "POST", a.timeout)
	urls, ok := imageURLs(resp)
	if !ok {
		a.logger.Debug("unexpected upstream response", zap.String("endpoint", bytez.EndpointImageEdit))
		return Result(resp)
	}
	return Result{
		"success": true,
		"images":  urls,
		"prompt":  p["prompt"],
	}
}

// imageURLs 从 {"data": [{"url": ...}, ...]} 中提取 URL 列表。
// data 为空或任一元素缺少 url 时返回 false，调用方将上游响应原样返回。
func imageURLs(resp map[string]any) ([]string, bool) {
	items, ok := resp["data"].([]any)
	if !ok || len(items) == 0 {
		return nil, false
	}
	urls := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		u, ok := obj["url"].(string)
		if !ok {
			return nil, false
		}
		urls = append(urls, u)
	}
	return urls, true
}
