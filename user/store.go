package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 用户不存在
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken 邮箱已注册
	ErrEmailTaken = errors.New("email already registered")
)

// Store 用户持久化
type Store struct {
	db *gorm.DB
}

// NewStore 创建 Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create 插入用户。邮箱重复时返回 ErrEmailTaken。
func (s *Store) Create(ctx context.Context, u *User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(u).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrEmailTaken), isUniqueViolation(err):
		return ErrEmailTaken
	default:
		return fmt.Errorf("create user: %w", err)
	}
}

// GetByEmail 按邮箱查询
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.first(ctx, "email = ?", email)
}

// GetByID 按 ID 查询
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Store) first(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// isUniqueViolation 识别并发注册时数据库层的唯一约束冲突
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
