package agent

import (
	"context"
	"sync"
	"time"
)

type recordedCall struct {
	Endpoint string
	Body     map[string]any
	Method   string
	Timeout  time.Duration
}

// stubRequester 记录调用并返回预设响应
type stubRequester struct {
	mu       sync.Mutex
	calls    []recordedCall
	response map[string]any
}

func newStub(resp map[string]any) *stubRequester {
	return &stubRequester{response: resp}
}

func (s *stubRequester) Request(_ context.Context, endpoint string, body map[string]any, method string, timeout time.Duration) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recordedCall{Endpoint: endpoint, Body: body, Method: method, Timeout: timeout})
	return s.response
}

func (s *stubRequester) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubRequester) LastCall() recordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return recordedCall{}
	}
	return s.calls[len(s.calls)-1]
}
