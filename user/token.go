package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token 类型（typ 声明）
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken Token 无效、过期、类型不符或已吊销
var ErrInvalidToken = errors.New("invalid token")

// Claims JWT 声明
type Claims struct {
	TokenType string `json:"typ"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair 签发结果
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenIssuer HS256 签发与校验 access / refresh Token
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer 创建签发器
func NewTokenIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Issue 为用户签发一对 Token
func (t *TokenIssuer) Issue(u *User) (TokenPair, error) {
	refresh, err := t.sign(u, TokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := t.sign(u, TokenTypeAccess, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess 仅签发 access Token（refresh 流程使用）
func (t *TokenIssuer) IssueAccess(userID, email string) (string, error) {
	return t.sign(&User{ID: userID, Email: email}, TokenTypeAccess, t.accessTTL)
}

func (t *TokenIssuer) sign(u *User, typ string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		TokenType: typ,
		Email:     u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Parse 校验签名、签发者、有效期与 Token 类型
func (t *TokenIssuer) Parse(token, wantType string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, wantType)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// Remaining 返回 Token 的剩余有效期
func (t *TokenIssuer) Remaining(c *Claims) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(t.now())
}
