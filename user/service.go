package user

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BaSui01/agentmarket/types"
)

// 对外错误消息
const (
	MsgEmailTaken         = "User with this email already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgMissingCredentials = "Email and password are required"
	MsgInvalidToken       = "Token is invalid or expired"
)

// Revoker Refresh Token 吊销列表，cache.RevocationList 实现了该接口
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResult 注册 / 登录结果
type AuthResult struct {
	User    *User  `json:"user"`
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// ServiceOptions Service 依赖
type ServiceOptions struct {
	Store  *Store
	Tokens *TokenIssuer
	// Revoker 为 nil 时登出不做吊销
	Revoker Revoker
	// BcryptCost 为 0 时使用 bcrypt.DefaultCost
	BcryptCost int
}

// Service 注册、登录、刷新、登出与资料查询
type Service struct {
	store   *Store
	tokens  *TokenIssuer
	revoker Revoker
	cost    int
	now     func() time.Time
	logger  *zap.Logger
}

// NewService 创建 Service
func NewService(opts ServiceOptions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		store:   opts.Store,
		tokens:  opts.Tokens,
		revoker: opts.Revoker,
		cost:    cost,
		now:     time.Now,
		logger:  logger.With(zap.String("component", "user_service")),
	}
}

// Register 创建用户并签发 Token。用户名缺省为邮箱 @ 之前的部分，新用户直接视为已验证。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, types.NewInvalidRequestError(MsgMissingCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, types.NewInvalidRequestError(err.Error()).WithCause(err)
	}

	username := in.Username
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		IsVerified:   true,
		DateJoined:   s.now().UTC(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, types.NewInvalidRequestError(MsgEmailTaken).WithCause(err)
		}
		s.logger.Error("register failed", zap.Error(err))
		return nil, types.NewError(types.ErrInternalError, "failed to create user").
			WithHTTPStatus(http.StatusInternalServerError).WithCause(err)
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return s.issue(u)
}

// Login 校验邮箱与密码并签发 Token
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalidCredentials(nil)
	}
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalidCredentials(err)
		}
		return nil, types.NewError(types.ErrInternalError, "failed to load user").
			WithHTTPStatus(http.StatusInternalServerError).WithCause(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials(err)
	}
	return s.issue(u)
}

// Refresh 用 refresh Token 换取新的 access Token
func (s *Service) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.validRefresh(ctx, refresh)
	if err != nil {
		return "", err
	}
	access, err := s.tokens.IssueAccess(claims.Subject, claims.Email)
	if err != nil {
		return "", types.NewError(types.ErrInternalError, "failed to issue token").
			WithHTTPStatus(http.StatusInternalServerError).WithCause(err)
	}
	return access, nil
}

// Logout 吊销 refresh Token。Token 必须属于 userID。
func (s *Service) Logout(ctx context.Context, userID, refresh string) error {
	claims, err := s.validRefresh(ctx, refresh)
	if err != nil {
		return err
	}
	if claims.Subject != userID {
		return invalidToken(ErrInvalidToken)
	}
	if s.revoker == nil {
		s.logger.Debug("no revocation list configured, logout is stateless")
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		return types.NewError(types.ErrServiceUnavailable, "failed to revoke token").
			WithHTTPStatus(http.StatusServiceUnavailable).WithCause(err)
	}
	s.logger.Info("refresh token revoked", zap.String("user_id", userID))
	return nil
}

// Profile 返回用户资料
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, types.NewNotFoundError("User not found").WithCause(err)
		}
		return nil, types.NewError(types.ErrInternalError, "failed to load user").
			WithHTTPStatus(http.StatusInternalServerError).WithCause(err)
	}
	return u, nil
}

// Authenticate 校验 access Token 并返回其声明，供 JWTAuth 中间件使用
func (s *Service) Authenticate(access string) (*Claims, error) {
	claims, err := s.tokens.Parse(access, TokenTypeAccess)
	if err != nil {
		return nil, invalidToken(err)
	}
	return claims, nil
}

func (s *Service) validRefresh(ctx context.Context, refresh string) (*Claims, error) {
	claims, err := s.tokens.Parse(refresh, TokenTypeRefresh)
	if err != nil {
		return nil, invalidToken(err)
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, types.NewError(types.ErrServiceUnavailable, "failed to check token").
				WithHTTPStatus(http.StatusServiceUnavailable).WithCause(err)
		}
		if revoked {
			return nil, invalidToken(ErrInvalidToken)
		}
	}
	return claims, nil
}

func (s *Service) issue(u *User) (*AuthResult, error) {
	pair, err := s.tokens.Issue(u)
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to issue token").
			WithHTTPStatus(http.StatusInternalServerError).WithCause(err)
	}
	return &AuthResult{User: u, Refresh: pair.Refresh, Access: pair.Access}, nil
}

func invalidCredentials(cause error) *types.Error {
	return types.NewError(types.ErrAuthentication, MsgInvalidCredentials).
		WithHTTPStatus(http.StatusUnauthorized).WithCause(cause)
}

func invalidToken(cause error) *types.Error {
	return types.NewError(types.ErrUnauthorized, MsgInvalidToken).
		WithHTTPStatus(http.StatusUnauthorized).WithCause(cause)
}
