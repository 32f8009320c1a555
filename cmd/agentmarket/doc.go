// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 AgentMarket 服务端程序入口。

# 概述

cmd/agentmarket 是 AI Agent 市场的可执行入口，提供 HTTP API 服务、
数据库迁移、健康检查和版本查询等子命令。程序支持 YAML 配置文件加载、
结构化日志（zap）、Prometheus 指标采集与 OpenTelemetry 链路追踪。

# 核心类型

  - Server        — 主服务器，组装 Agent 工厂、用户服务并管理 HTTP、Metrics 双端口
  - Middleware    — HTTP 中间件函数签名 func(http.Handler) http.Handler
  - Authenticator — JWTAuth 使用的 Access Token 校验接口

# 主要能力

  - 子命令：serve（启动服务）、migrate（数据库迁移）、version、health
  - 中间件链：Recovery、RequestID、OTelTracing、MetricsMiddleware、
    SecurityHeaders、RequestLogger、CORS、RateLimiter（基于 IP）
  - JWTAuth 只包装 /api/auth/logout/ 与 /api/auth/profile/
  - 降级运行：数据库不可用时禁用用户接口，Redis 不可用时禁用 Refresh Token 吊销
  - 优雅关闭：信号取消 ctx → errgroup 等待 HTTP 与 Metrics 关闭 → 释放资源
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
