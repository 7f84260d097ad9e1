package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category 收支分类，最多两级：顶级分类即预算桶，子分类挂在顶级分类下
type Category struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	UserID    uint           `json:"-" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:50;not null"`
	Type      string         `json:"type" gorm:"size:10;not null;index"` // income / expense
	ParentID  *string        `json:"parent_id" gorm:"size:36;index"`
	Color     string         `json:"color" gorm:"size:20;default:#64748b"`
	Sort      int            `json:"sort" gorm:"default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Category) TableName() string {
	return "categories"
}

// BeforeCreate 未指定ID时生成 UUID
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
