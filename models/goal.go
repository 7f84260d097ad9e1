package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Goal 储蓄目标
type Goal struct {
	ID            string         `json:"id" gorm:"primaryKey;size:36"`
	UserID        uint           `json:"-" gorm:"index;not null"`
	Name          string         `json:"name" gorm:"size:100;not null"`
	TargetAmount  float64        `json:"target_amount" gorm:"not null"`
	CurrentAmount float64        `json:"current_amount"`
	Emoji         string         `json:"emoji" gorm:"size:16"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Goal) TableName() string {
	return "goals"
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
