// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package cache 提供 Redis 缓存管理。

Manager 封装 go-redis 客户端（Get/Set/Exists/Ping/Close），
RevocationList 在其上实现 Refresh Token 的吊销列表：
登出时写入 agentmarket:revoked:<jti>，TTL 与 Token 剩余有效期一致。

未配置 redis.addr 时服务不创建 Manager，登出不做吊销。
*/
package cache
