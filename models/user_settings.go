package models

import (
	"time"

	"budgetly/scoring"
)

// UserSettings 用户偏好：币种、结转、预算周期、提醒阈值、记账默认值
type UserSettings struct {
	ID                     uint      `json:"-" gorm:"primaryKey"`
	UserID                 uint      `json:"-" gorm:"uniqueIndex;not null"`
	Currency               string    `json:"currency" gorm:"size:10;not null"`
	CarryoverEnabled       bool      `json:"carryover_enabled"`
	CycleType              string    `json:"cycle_type" gorm:"size:20;not null"`
	CycleDay               int       `json:"cycle_day"`
	PushEnabled            bool      `json:"push_enabled"`
	EmailSummariesEnabled  bool      `json:"email_summaries_enabled"`
	LargeTransactionAmount float64   `json:"large_transaction_amount"` // 0 表示关闭
	BudgetThresholdPercent float64   `json:"budget_threshold_percent"` // 0 表示关闭，范围 0-100
	DefaultTransactionType string    `json:"default_transaction_type" gorm:"size:10"`
	DefaultAccount         string    `json:"default_account" gorm:"size:50"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	// RolledOverThrough 最近一次已结转周期的起始日
	RolledOverThrough *time.Time `json:"rolled_over_through"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// BudgetCycle 转换为评分包的周期配置
func (s UserSettings) BudgetCycle() scoring.BudgetCycle {
	c := scoring.BudgetCycle{Type: scoring.CycleType(s.CycleType), DayOfMonth: s.CycleDay}
	if c.Validate() != nil {
		return scoring.DefaultBudgetCycle()
	}
	return c
}
