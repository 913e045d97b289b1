package model

import "time"

// ==================== 常量 ====================

// 账号角色
const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

// 账号状态
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// ==================== 模型 ====================

// User 团队账号档案
// 软删除：管理面板删除账号只隐藏档案，不清除登录凭证，避免同邮箱重复注册冲突
type User struct {
	BaseModel
	Name     string `gorm:"size:100"`
	Email    string `gorm:"size:100;uniqueIndex;not null"` // 登录凭证
	Password string `gorm:"size:255;not null"`             // bcrypt 哈希
	Role     string `gorm:"size:20;default:'user'"`        // admin / user
	Status   string `gorm:"size:20;default:'active'"`      // active / inactive

	LastLoginAt *time.Time
}

func (User) TableName() string {
	return "users"
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
