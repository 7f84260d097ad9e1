package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveTarget(t *testing.T) {
	b := BudgetCategory{Name: "Food", Allocated: 500, Spent: 520, Carryover: 50}
	assert.Equal(t, 550.0, EffectiveTarget(b, true))
	assert.Equal(t, 500.0, EffectiveTarget(b, false))
	assert.False(t, IsOverBudget(b, true))
	assert.True(t, IsOverBudget(b, false))

	b.Carryover = -100
	assert.Equal(t, 400.0, EffectiveTarget(b, true))
	assert.True(t, IsOverBudget(b, true))
}

func TestSummarizeBudget(t *testing.T) {
	rows := []BudgetCategory{
		{Name: "Food", Allocated: 500, Spent: 300, Carryover: 50},
		{Name: "Housing", Allocated: 1000, Spent: 1000, Carryover: -20},
	}
	assert.Equal(t, BudgetSummary{TotalAllocated: 1500, TotalSpent: 1300, TotalCarryover: 30, TotalBudget: 1530}, SummarizeBudget(rows, true))
	assert.Equal(t, BudgetSummary{TotalAllocated: 1500, TotalSpent: 1300, TotalBudget: 1500}, SummarizeBudget(rows, false))
}

func TestRollOver(t *testing.T) {
	previous := []BudgetCategory{
		{Name: "Food", Allocated: 500, Spent: 420, Carryover: 30}, // 530 - 420 = 110
		{Name: "Fun", Allocated: 100, Spent: 180},                 // -80
		{Name: "Dropped", Allocated: 70, Spent: 0},
	}
	next := []BudgetAllocation{{Name: "Food", Allocated: 450}, {Name: "Fun", Allocated: 120}, {Name: "Travel", Allocated: 200}}

	got := RollOver(previous, next, true)
	assert.Equal(t, []BudgetCategory{
		{Name: "Food", Allocated: 450, Carryover: 110},
		{Name: "Fun", Allocated: 120, Carryover: -80},
		{Name: "Travel", Allocated: 200},
	}, got)

	got = RollOver(previous, next, false)
	for _, row := range got {
		assert.Zero(t, row.Carryover)
		assert.Zero(t, row.Spent)
	}
}

func TestClassifyCarryover(t *testing.T) {
	assert.Equal(t, CarryoverSurplus, ClassifyCarryover(10))
	assert.Equal(t, CarryoverOverspent, ClassifyCarryover(-0.01))
	assert.Equal(t, CarryoverNone, ClassifyCarryover(0))
}

func TestBudgetThresholdAlerts(t *testing.T) {
	rows := []BudgetCategory{
		{Name: "Food", Allocated: 100, Spent: 85},
		{Name: "Housing", Allocated: 1000, Spent: 200},
		{Name: "Fun", Allocated: 100, Spent: 130},
		{Name: "Gifts", Allocated: 0, Spent: 10},
		{Name: "Empty", Allocated: 0, Spent: 0},
	}
	alerts := BudgetThresholdAlerts(rows, 80, false)
	if assert.Len(t, alerts, 3) {
		assert.Equal(t, "Food", alerts[0].Name)
		assert.InDelta(t, 85.0, alerts[0].Percent, 1e-9)
		assert.False(t, alerts[0].Over)
		assert.Equal(t, "Fun", alerts[1].Name)
		assert.True(t, alerts[1].Over)
		assert.Equal(t, "Gifts", alerts[2].Name)
	}
	assert.Nil(t, BudgetThresholdAlerts(rows, 0, false))

	// 结转抬高了可用额度
	rows[0].Carryover = 50
	alerts = BudgetThresholdAlerts(rows[:1], 80, true)
	assert.Empty(t, alerts)
}

func TestLargeTransactions(t *testing.T) {
	txs := []Transaction{expense("rent", 1500), expense("groceries", 20), income(5000), expense("dining", 1000)}
	got := LargeTransactions(txs, 1000)
	assert.Len(t, got, 2)
	assert.Nil(t, LargeTransactions(txs, 0))
}

func TestGoalProgress(t *testing.T) {
	assert.Equal(t, 50.0, GoalProgress(500, 1000))
	assert.Equal(t, 100.0, GoalProgress(1500, 1000))
	assert.Equal(t, 0.0, GoalProgress(100, 0))
	assert.Equal(t, 0.0, GoalProgress(-5, 100))
}
