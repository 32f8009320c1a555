// Package api 定义 AgentMarket HTTP API 的请求与响应类型。
//
// # API Overview
//
// AgentMarket 提供以下 REST 端点：
//   - GET  /api/agents/                  Agent 目录
//   - GET  /api/agents/{id}/details/     Agent 详情
//   - POST /api/agents/{id}/call/        调用 Agent
//   - POST /api/auth/register/, /api/auth/login/, /api/auth/refresh/
//   - POST /api/auth/logout/, GET /api/auth/profile/（需 Bearer Token）
//   - /health, /healthz, /ready, /version
//
// # Authentication
//
// 认证端点签发 JWT，受保护端点通过 Authorization 头携带 access Token：
//
//	Authorization: Bearer <access>
//
// # Base URL
//
//	http://localhost:8080
//
// Prometheus 指标在独立端口（默认 9091）的 /metrics 上暴露。
package api
