package agent

import (
	"context"
	"time"
)

// Kind 模态类型
type Kind string

const (
	KindText  Kind = "text"
	KindCode  Kind = "code"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Agent 模态 Agent 接口。
// Process 不返回 error：预期内的失败都以 Result{"error": ...} 的形式返回。
type Agent interface {
	Kind() Kind
	Process(ctx context.Context, payload Payload) Result
}

// Requester 上游 Provider 的请求通道，由 bytez.Client 实现。
// 实现必须总是返回一个 map，传输层故障以 {"error": ...} 表示。
type Requester interface {
	Request(ctx context.Context, endpoint string, body map[string]any, method string, timeout time.Duration) map[string]any
}
