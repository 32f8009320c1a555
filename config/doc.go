// Package config 提供 AgentMarket 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量（AGENTMARKET_*）的顺序叠加，
// Provider 密钥在未设置时回退读取 BYTEZ_API_KEY。
package config
