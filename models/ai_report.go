package models

import (
	"time"

	"gorm.io/gorm"
)

// AI 报告类型
const (
	ReportHealth      = "health_report"
	ReportCycleReview = "cycle_review"
	ReportBudgetPlan  = "budget_plan"
	ReportGoal        = "goal_forecast"
	ReportRecurring   = "recurring_scan"
)

// AIReport AI 生成结果的历史记录，Result 为模型返回并校验过的 JSON
type AIReport struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	AIModelID uint           `json:"ai_model_id" gorm:"index;not null"`
	Kind      string         `json:"kind" gorm:"size:30;not null;index"`
	StartDate string         `json:"start_date" gorm:"size:10"` // YYYY-MM-DD，对应的预算周期
	EndDate   string         `json:"end_date" gorm:"size:10"`
	Result    string         `json:"result" gorm:"type:longtext;not null"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (AIReport) TableName() string {
	return "ai_reports"
}
