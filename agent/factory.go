package agent

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/types"
)

// ErrUnknownAgent 标识符不在注册表中
var ErrUnknownAgent = errors.New("unknown agent")

// DefaultProvider Result 中 provider 字段的默认值
const DefaultProvider = "Bytez"

// FactoryOptions Factory 依赖
type FactoryOptions struct {
	// Models 模型调用通道（models/v2/<model>），供 Text / Code 使用
	Models Requester
	// REST REST 端点通道（audio/*, images/*），供 Image / Audio 使用
	REST Requester
	// Provider 名称，写入文本结果的 provider 字段
	Provider string
	// Timeout 单次上游请求超时，<= 0 时由 Requester 使用默认值
	Timeout time.Duration
}

// Factory 将 Agent 标识符解析为模态 Agent，并提供静态目录信息。
// 模态 Agent 无请求级状态，每种模态只创建一个实例并被并发复用。
type Factory struct {
	text   *TextAgent
	code   *CodeAgent
	image  *ImageAgent
	audio  *AudioAgent
	logger *zap.Logger
}

// NewFactory 创建 Factory
func NewFactory(opts FactoryOptions, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Provider == "" {
		opts.Provider = DefaultProvider
	}
	logger = logger.With(zap.String("component", "agent_factory"))
	return &Factory{
		text:   NewTextAgent(opts.Models, opts.Provider, opts.Timeout, logger),
		code:   NewCodeAgent(opts.Models, opts.Provider, opts.Timeout, logger),
		image:  NewImageAgent(opts.REST, opts.Timeout, logger),
		audio:  NewAudioAgent(opts.REST, opts.Timeout, logger),
		logger: logger,
	}
}

// Resolve 返回标识符对应的 Agent。
// 未知标识符返回 ErrUnknownAgent 类型的 *types.Error（HTTP 404）。
func (f *Factory) Resolve(id string) (Agent, error) {
	entry, ok := lookup(id)
	if !ok {
		f.logger.Debug("unknown agent requested", zap.String("agent_id", id))
		return nil, types.NewError(types.ErrUnknownAgent, "Unknown agent: "+id).
			WithHTTPStatus(http.StatusNotFound).
			WithCause(ErrUnknownAgent)
	}
	switch entry.Kind {
	case KindText:
		return f.text, nil
	case KindCode:
		return f.code, nil
	case KindImage:
		return f.image, nil
	case KindAudio:
		return f.audio, nil
	default:
		return nil, types.NewError(types.ErrInternalError, "agent kind not supported: "+string(entry.Kind))
	}
}

// IDs 按注册顺序返回全部标识符
func (f *Factory) IDs() []string {
	ids := make([]string, len(registry))
	for i, e := range registry {
		ids[i] = e.ID
	}
	return ids
}

// Describe 返回目录信息；未知标识符返回 false
func (f *Factory) Describe(id string) (CatalogEntry, bool) {
	entry, ok := lookup(id)
	if !ok {
		return CatalogEntry{}, false
	}
	return entry.clone(), true
}
