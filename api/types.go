package api

import (
	"github.com/BaSui01/agentmarket/user"
)

// =============================================================================
// Agent 目录类型
// =============================================================================

// AgentSummary GET /api/agents/ 列表中的一项
type AgentSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Models      []string `json:"models"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Downloads   int      `json:"downloads"`
	// 分类的首个词（emoji）
	Icon      string `json:"icon"`
	CreatedAt string `json:"created_at"`
}

// AgentDetails GET /api/agents/<id>/details/ 响应
type AgentDetails struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	Models         []string       `json:"models"`
	Capabilities   []string       `json:"capabilities"`
	Pricing        map[string]any `json:"pricing"`
	ExamplePayload map[string]any `json:"example_payload"`
}

// ErrorBody Agent 与认证端点使用的扁平错误体
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// 认证类型
// =============================================================================

// RegisterRequest POST /api/auth/register/
type RegisterRequest = user.RegisterInput

// LoginRequest POST /api/auth/login/
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse 注册 / 登录成功响应
type AuthResponse = user.AuthResult

// RefreshRequest POST /api/auth/refresh/ 与 /api/auth/logout/
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse POST /api/auth/refresh/ 成功响应
type RefreshResponse struct {
	Access string `json:"access"`
}

// ProfileResponse GET /api/auth/profile/
type ProfileResponse struct {
	User *user.User `json:"user"`
}
