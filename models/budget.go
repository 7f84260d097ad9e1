package models

import "time"

// BudgetCategory 当前周期的预算行，name 与顶级支出分类名称对应
type BudgetCategory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"uniqueIndex:idx_budget_user_name;not null"`
	Name      string    `json:"name" gorm:"uniqueIndex:idx_budget_user_name;size:50;not null"`
	Allocated float64   `json:"allocated" gorm:"not null"`
	Carryover float64   `json:"carryover"`
	Sort      int       `json:"sort" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BudgetCategory) TableName() string {
	return "budget_categories"
}
