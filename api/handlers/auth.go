package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/api"
	"github.com/BaSui01/agentmarket/types"
	"github.com/BaSui01/agentmarket/user"
)

// =============================================================================
// 🔐 认证 Handler
// =============================================================================

// AuthHandler 注册、登录、刷新、登出与资料查询
type AuthHandler struct {
	service *user.Service
	logger  *zap.Logger
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(service *user.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		service: service,
		logger:  logger.With(zap.String("handler", "auth")),
	}
}

// HandleRegister POST /api/auth/register/，成功返回 201
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

// HandleLogin POST /api/auth/login/
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// HandleRefresh POST /api/auth/refresh/
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	access, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, api.RefreshResponse{Access: access})
}

// HandleLogout POST /api/auth/logout/（需认证），成功返回 205
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := types.UserID(r.Context())
	if !ok {
		WriteErrorMessage(w, http.StatusUnauthorized, types.ErrUnauthorized, "Authentication credentials were not provided", h.logger)
		return
	}

	var req api.RefreshRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	if req.Refresh == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "Refresh token is required", h.logger)
		return
	}

	if err := h.service.Logout(r.Context(), userID, req.Refresh); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusResetContent)
}

// HandleProfile GET /api/auth/profile/（需认证）
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := types.UserID(r.Context())
	if !ok {
		WriteErrorMessage(w, http.StatusUnauthorized, types.ErrUnauthorized, "Authentication credentials were not provided", h.logger)
		return
	}

	u, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, api.ProfileResponse{User: u})
}
