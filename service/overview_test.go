package service

import (
	"testing"
	"time"

	"budgetly/models"
	"budgetly/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overviewSnapshot(txs ...scoring.Transaction) scoring.Snapshot {
	return scoring.Snapshot{
		Categories: []scoring.Category{
			{ID: "food", Name: "餐饮", Type: scoring.TypeExpense},
			{ID: "transport", Name: "交通", Type: scoring.TypeExpense},
			{ID: "salary", Name: "工资", Type: scoring.TypeIncome},
		},
		Transactions: txs,
		Budget: []scoring.BudgetCategory{
			{Name: "餐饮", Allocated: 500, Carryover: 100},
			{Name: "交通", Allocated: 500},
		},
	}
}

func tx(category string, typ scoring.TransactionType, amount float64) scoring.Transaction {
	return scoring.Transaction{Category: category, Type: typ, Amount: amount}
}

func TestSummarize(t *testing.T) {
	snap := overviewSnapshot(
		tx("salary", scoring.TypeIncome, 4000),
		tx("food", scoring.TypeExpense, 560),
		tx("transport", scoring.TypeExpense, 1200),
	)
	settings := models.UserSettings{
		Currency:               "CNY",
		CarryoverEnabled:       true,
		BudgetThresholdPercent: 80,
		LargeTransactionAmount: 1000,
	}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	o := Summarize(snap, settings, start, end)
	require.NotNil(t, o.Score.HealthScore)
	assert.Equal(t, scoring.StateScored, o.Score.State)
	assert.Equal(t, start, o.CycleStart)
	assert.Equal(t, 1000.0, o.Summary.TotalAllocated)
	assert.Equal(t, 100.0, o.Summary.TotalCarryover)
	assert.Equal(t, 1100.0, o.Summary.TotalBudget)

	// 餐饮 560/600 ≈ 93%，交通 1200/500 超支
	require.Len(t, o.BudgetAlerts, 2)
	assert.False(t, o.BudgetAlerts[0].Over)
	assert.True(t, o.BudgetAlerts[1].Over)
	require.Len(t, o.LargeTransactions, 1)
	assert.Equal(t, 1200.0, o.LargeTransactions[0].Amount)
}

func TestSummarize_WelcomeStillReportsBudget(t *testing.T) {
	snap := overviewSnapshot(tx("food", scoring.TypeExpense, 450))
	o := Summarize(snap, models.UserSettings{BudgetThresholdPercent: 80}, time.Time{}, time.Time{})

	assert.True(t, o.Score.IsWelcomeState)
	assert.Nil(t, o.Score.HealthScore)
	assert.Empty(t, o.Score.BudgetWithSpending)
	require.Len(t, o.Budget, 2)
	assert.Equal(t, 450.0, o.Budget[0].Spent)
	// 关闭结转时可用额度为 500，450 达到 80% 阈值
	require.Len(t, o.BudgetAlerts, 1)
	assert.Equal(t, "餐饮", o.BudgetAlerts[0].Name)
	assert.Equal(t, []scoring.Transaction{}, o.LargeTransactions)
}
