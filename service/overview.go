package service

import (
	"time"

	"budgetly/models"
	"budgetly/scoring"

	"gorm.io/gorm"
)

// HealthOverview 当前预算周期的评分结果与提醒
type HealthOverview struct {
	CycleStart        time.Time                `json:"cycle_start"`
	CycleEnd          time.Time                `json:"cycle_end"`
	Score             scoring.ScoreBundle      `json:"score"`
	Budget            []scoring.BudgetCategory `json:"budget"`
	Summary           scoring.BudgetSummary    `json:"summary"`
	BudgetAlerts      []scoring.BudgetAlert    `json:"budget_alerts"`
	LargeTransactions []scoring.Transaction    `json:"large_transactions"`
	CarryoverEnabled  bool                     `json:"carryover_enabled"`
	Currency          string                   `json:"currency"`
	Snapshot          scoring.Snapshot         `json:"-"`
}

// BuildOverview 按用户设置确定周期窗口，读取快照并计算评分
func BuildOverview(db *gorm.DB, userID uint, settings models.UserSettings, now time.Time) (*HealthOverview, error) {
	start, end := scoring.CycleWindow(settings.BudgetCycle(), now)
	snap, err := LoadSnapshot(db, userID, start, end)
	if err != nil {
		return nil, err
	}
	return Summarize(snap, settings, start, end), nil
}

// Summarize 基于已加载的快照组装评分结果
// Budget 始终带实际支出，欢迎态下评分包中的预算行为空，但预算页与提醒仍需要。
func Summarize(snap scoring.Snapshot, settings models.UserSettings, start, end time.Time) *HealthOverview {
	lookup := scoring.BuildCategoryLookup(snap.Categories)
	rows := scoring.WithSpending(snap.Budget, scoring.AggregateSpending(snap.Transactions, lookup))

	o := &HealthOverview{
		CycleStart:        start,
		CycleEnd:          end,
		Score:             scoring.Compute(snap),
		Budget:            rows,
		Summary:           scoring.SummarizeBudget(rows, settings.CarryoverEnabled),
		BudgetAlerts:      scoring.BudgetThresholdAlerts(rows, settings.BudgetThresholdPercent, settings.CarryoverEnabled),
		LargeTransactions: scoring.LargeTransactions(snap.Transactions, settings.LargeTransactionAmount),
		CarryoverEnabled:  settings.CarryoverEnabled,
		Currency:          settings.Currency,
		Snapshot:          snap,
	}
	if o.BudgetAlerts == nil {
		o.BudgetAlerts = []scoring.BudgetAlert{}
	}
	if o.LargeTransactions == nil {
		o.LargeTransactions = []scoring.Transaction{}
	}
	return o
}
