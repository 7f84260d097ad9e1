package models

import (
	"time"

	"gorm.io/gorm"
)

// AIChatMessage 预算问答记录，一问一答
// CycleStart 非空时表示提问附带了该周期的评分与预算。
type AIChatMessage struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	AIModelID  uint           `json:"ai_model_id" gorm:"index:idx_chat_user_model,priority:2;not null"`
	UserID     uint           `json:"-" gorm:"index:idx_chat_user_model,priority:1;not null"`
	Question   string         `json:"question" gorm:"type:text;not null"`
	Answer     string         `json:"answer" gorm:"type:longtext;not null"`
	CycleStart *time.Time     `json:"cycle_start,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (AIChatMessage) TableName() string {
	return "ai_chat_messages"
}
