package cache

import (
	"context"
	"time"
)

const revokedKeyPrefix = "agentmarket:revoked:"

// RevocationList 基于 Redis 的 Refresh Token 吊销列表。
// 条目在 Token 自身过期时随 TTL 一起消失。
type RevocationList struct {
	m *Manager
}

// NewRevocationList 创建吊销列表
func NewRevocationList(m *Manager) *RevocationList {
	return &RevocationList{m: m}
}

// Revoke 吊销 jti，ttl 为 Token 剩余有效期；ttl <= 0 时不写入
func (r *RevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.m.Set(ctx, revokedKeyPrefix+jti, "1", ttl)
}

// IsRevoked 报告 jti 是否已被吊销
func (r *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.m.Exists(ctx, revokedKeyPrefix+jti)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
