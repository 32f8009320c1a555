// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖 HTTP、
Agent 调用、上游请求与数据库连接池四个维度。

# 核心类型

  - Collector：指标收集器，使用 promauto 注册到默认 Registry，
    所有指标按 namespace 隔离。

# 主要能力

  - HTTP 指标：请求总数、耗时、响应体大小，状态码归类为 2xx/3xx/4xx/5xx。
  - Agent 指标：按 agent_id/outcome 统计调用次数与耗时。
  - 上游指标：ObserveUpstream 实现 bytez.Observer，按 endpoint/outcome
    统计对 Bytez 的请求。
  - 数据库指标：打开/空闲连接数 Gauge。
*/
package metrics
