package handlers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/agent"
)

// stubRequester 返回预设响应并记录调用次数
type stubRequester struct {
	mu       sync.Mutex
	calls    int
	response map[string]any
	panicMsg string
}

func (s *stubRequester) Request(_ context.Context, _ string, _ map[string]any, _ string, _ time.Duration) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.response
}

func (s *stubRequester) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingRecorder 记录 outcome
type recordingRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingRecorder) RecordAgentCall(_ string, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		return ""
	}
	return r.outcomes[len(r.outcomes)-1]
}

func newTestAgentHandler(stub *stubRequester) (*AgentHandler, *recordingRecorder) {
	factory := agent.NewFactory(agent.FactoryOptions{Models: stub, REST: stub}, zap.NewNop())
	rec := &recordingRecorder{}
	return NewAgentHandler(factory, rec, zap.NewNop()), rec
}
