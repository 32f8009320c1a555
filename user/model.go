package user

import "time"

// User 用户记录，表结构由 internal/migration 维护
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"size:254;not null;uniqueIndex:idx_users_email" json:"email"`
	Username     string    `gorm:"size:150;not null;default:''" json:"username"`
	FirstName    string    `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName     string    `gorm:"size:150;not null;default:''" json:"last_name"`
	PasswordHash string    `gorm:"column:password;size:128;not null" json:"-"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	DateJoined   time.Time `gorm:"not null" json:"date_joined"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName 实现 gorm.Tabler
func (User) TableName() string { return "users" }
