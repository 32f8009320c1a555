package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/llm/bytez"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// 编译期检查
var _ bytez.Observer = (*Collector)(nil)

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), nil)

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.agentCallsTotal)
	assert.NotNil(t, collector.upstreamRequestsTotal)
	assert.NotNil(t, collector.dbConnectionsOpen)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordHTTPRequest("GET", "/api/agents/", 200, 100*time.Millisecond, 2048)
	collector.RecordHTTPRequest("GET", "/api/agents/", 204, 50*time.Millisecond, 0)
	collector.RecordHTTPRequest("POST", "/api/agents/call", 502, 50*time.Millisecond, 64)

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("GET", "/api/agents/", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/api/agents/call", "5xx")))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.httpRequestDuration))
}

func TestCollector_RecordAgentCall(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordAgentCall("ai-writer", "success", time.Second)
	collector.RecordAgentCall("ai-writer", "rate_limited", 200*time.Millisecond)
	collector.RecordAgentCall("ai-writer", "success", time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.agentCallsTotal.WithLabelValues("ai-writer", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.agentCallsTotal.WithLabelValues("ai-writer", "rate_limited")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.agentCallDuration))
}

func TestCollector_ObserveUpstream(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.ObserveUpstream("images/generations", bytez.OutcomeSuccess, time.Second)
	collector.ObserveUpstream("images/generations", bytez.OutcomeTimeout, 30*time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.upstreamRequestsTotal.WithLabelValues("images/generations", bytez.OutcomeTimeout)))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.upstreamRequestsTotal))
}

func TestCollector_RecordDBConnections(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordDBConnections("sqlite", 10, 5)
	collector.RecordDBConnections("sqlite", 4, 2)

	assert.Equal(t, float64(4), testutil.ToFloat64(collector.dbConnectionsOpen.WithLabelValues("sqlite")))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.dbConnectionsIdle.WithLabelValues("sqlite")))
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.RecordHTTPRequest("GET", "/test", 200, 100*time.Millisecond, 1024)
			collector.RecordAgentCall("code-generator", "success", 500*time.Millisecond)
			collector.ObserveUpstream("models/v2/google/gemma-2b", bytez.OutcomeSuccess, time.Second)
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(10), testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("GET", "/test", "2xx")))
	assert.Equal(t, float64(10), testutil.ToFloat64(collector.agentCallsTotal.WithLabelValues("code-generator", "success")))
}

func TestStatusCode(t *testing.T) {
	tests := map[int]string{200: "2xx", 301: "3xx", 404: "4xx", 429: "4xx", 502: "5xx", 100: "unknown"}
	for code, want := range tests {
		assert.Equal(t, want, statusCode(code), code)
	}
}
