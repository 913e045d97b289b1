package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"etsy_insights_v1/internal/model"
)

// ==================== ResetTokenRepository 重置令牌仓库 ====================

// ResetTokenRepository 密码重置令牌仓库接口
type ResetTokenRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id int64, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository 创建重置令牌仓库
func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Create 保存令牌
func (r *resetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByToken 按令牌值查找
func (r *resetTokenRepository) GetByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

// MarkUsed 标记令牌已使用
func (r *resetTokenRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used_at", at).Error
}

// DeleteExpired 清理过期或已使用的令牌，返回删除行数
func (r *resetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("expires_at < ? OR used_at IS NOT NULL", before).
		Delete(&model.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
