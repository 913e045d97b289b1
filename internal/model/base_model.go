package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 各表公共字段；DeletedAt 开启 gorm 软删除
type BaseModel struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
