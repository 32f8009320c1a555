// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 AgentMarket HTTP API 的请求处理器实现。

# 核心类型

  - AgentHandler   — Agent 目录、详情与调用，调用结果按错误文本分类为 200/429/402/502
  - AuthHandler    — 注册、登录、Token 刷新、登出与用户资料
  - HealthHandler  — 服务健康检查（/health, /healthz, /ready, /version）
  - ResponseWriter — 包装 http.ResponseWriter 以捕获状态码与响应字节数
  - HealthCheck    — 可插拔健康检查接口（PingCheck 适配数据库、Redis）

# 响应格式

Agent 与认证端点沿用扁平 JSON：成功时直接返回结果对象，失败时返回
{"error": ..., "message": ...}。*types.Error 通过 WriteError 按
HTTPStatus 或错误码映射写出。
*/
package handlers
