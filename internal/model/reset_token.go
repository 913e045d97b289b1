package model

import "time"

// PasswordResetToken 密码重置令牌 (一次性，带过期时间)
type PasswordResetToken struct {
	BaseModel
	UserID    int64  `gorm:"index;not null"`
	Token     string `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time
	UsedAt    *time.Time
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// Usable 令牌当前是否可用
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
