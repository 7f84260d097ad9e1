package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testCategories() []Category {
	return []Category{
		{ID: "food", Name: "Food", Type: TypeExpense},
		{ID: "groceries", Name: "Groceries", Type: TypeExpense, ParentID: strPtr("food")},
		{ID: "dining", Name: "Dining Out", Type: TypeExpense, ParentID: strPtr("food")},
		{ID: "housing", Name: "Housing", Type: TypeExpense},
		{ID: "rent", Name: "Rent/Mortgage", Type: TypeExpense, ParentID: strPtr("housing")},
		{ID: "salary", Name: "Salary", Type: TypeIncome},
	}
}

func income(amount float64) Transaction {
	return Transaction{ID: fmt.Sprintf("in-%v", amount), Amount: amount, Category: "salary", Type: TypeIncome}
}

func expense(category string, amount float64) Transaction {
	return Transaction{ID: fmt.Sprintf("ex-%s-%v", category, amount), Amount: amount, Category: category, Type: TypeExpense}
}

func TestCompute_WelcomeState(t *testing.T) {
	txs := []Transaction{income(1000), expense("rent", 500), expense("groceries", 100)}
	budget := []BudgetCategory{{Name: "Food", Allocated: 300}}

	for n := 0; n < WelcomeThreshold; n++ {
		got := Compute(Snapshot{Categories: testCategories(), Transactions: txs[:n], Budget: budget})
		assert.True(t, got.IsWelcomeState, "n=%d", n)
		assert.Nil(t, got.HealthScore)
		assert.Equal(t, 0, got.SavingsScore)
		assert.Equal(t, 0, got.BudgetingScore)
		assert.Empty(t, got.BudgetWithSpending)
		assert.Equal(t, StateWelcome, got.State)
	}

	got := Compute(Snapshot{Categories: testCategories(), Transactions: txs, Budget: budget})
	assert.False(t, got.IsWelcomeState)
	require.NotNil(t, got.HealthScore)
}

func TestSavingsScore(t *testing.T) {
	assert.Equal(t, 100, SavingsScore(1000, 800))
	assert.Equal(t, 50, SavingsScore(1000, 900))
	assert.Equal(t, 100, SavingsScore(1000, 0))
	assert.Equal(t, 0, SavingsScore(0, 0))
	assert.Equal(t, 0, SavingsScore(0, 500))
	// 超支：储蓄率为负，截断为 0
	assert.Equal(t, 0, SavingsScore(1000, 5000))
	// 0.05 / 0.2 = 25
	assert.Equal(t, 25, SavingsScore(1000, 950))
}

func TestSavingsScore_Bounds(t *testing.T) {
	for _, inc := range []float64{0, 0.01, 1, 99.5, 1000, 1e9} {
		for _, exp := range []float64{0, 0.01, 1, 333.33, 1000, 1e12} {
			s := SavingsScore(inc, exp)
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}

func TestCompute_NoBudget(t *testing.T) {
	txs := []Transaction{income(1000), expense("rent", 850), expense("groceries", 50)}

	got := Compute(Snapshot{Categories: testCategories(), Transactions: txs})
	assert.Equal(t, StateNoBudget, got.State)
	assert.Equal(t, 100, got.BudgetingScore)
	assert.Equal(t, 50, got.SavingsScore)
	require.NotNil(t, got.HealthScore)
	assert.Equal(t, got.SavingsScore, *got.HealthScore)
	assert.Empty(t, got.BudgetWithSpending)

	// 有预算但没有分类同样视为无预算
	got = Compute(Snapshot{Transactions: txs, Budget: []BudgetCategory{{Name: "Food", Allocated: 100}}})
	assert.Equal(t, StateNoBudget, got.State)
	assert.Equal(t, 50, *got.HealthScore)
}

func TestCompute_ZeroAllocation(t *testing.T) {
	txs := []Transaction{income(1000), expense("rent", 850), expense("groceries", 50)}
	budget := []BudgetCategory{{Name: "Food", Allocated: 0}, {Name: "Housing", Allocated: 0}}

	got := Compute(Snapshot{Categories: testCategories(), Transactions: txs, Budget: budget})
	assert.Equal(t, StateUnallocated, got.State)
	assert.Equal(t, 100, got.BudgetingScore)
	assert.Equal(t, got.SavingsScore, *got.HealthScore)
	require.Len(t, got.BudgetWithSpending, 2)
	assert.Equal(t, 50.0, got.BudgetWithSpending[0].Spent)
	assert.Equal(t, 850.0, got.BudgetWithSpending[1].Spent)
}

func TestCategoryScore(t *testing.T) {
	assert.Equal(t, 100.0, CategoryScore(100, 50))
	assert.Equal(t, 100.0, CategoryScore(100, 100))
	assert.Equal(t, 50.0, CategoryScore(100, 200))
	assert.Equal(t, 100.0, CategoryScore(0, 0))
	assert.Equal(t, 0.0, CategoryScore(0, 40))
}

func TestBudgetingScore_ZeroWeightCategory(t *testing.T) {
	// 分配额为 0 的分类权重为 0，不影响总分
	rows := []BudgetCategory{
		{Name: "Food", Allocated: 100, Spent: 50},
		{Name: "Fun", Allocated: 0, Spent: 0},
		{Name: "Misc", Allocated: 0, Spent: 75},
	}
	assert.Equal(t, 100, BudgetingScore(rows))
}

func TestBudgetingScore_Weighted(t *testing.T) {
	rows := []BudgetCategory{
		{Name: "Food", Allocated: 300, Spent: 600},   // 50 * 0.75
		{Name: "Housing", Allocated: 100, Spent: 20}, // 100 * 0.25
	}
	assert.Equal(t, 63, BudgetingScore(rows)) // 37.5 + 25 = 62.5 -> 63
}

func TestCompute_Scored(t *testing.T) {
	txs := []Transaction{
		income(1000),
		expense("groceries", 150),
		expense("dining", 250),   // Food = 400
		expense("rent", 500),     // Housing = 500
		expense("unknown", 9999), // 悬空分类：只计入总支出
	}
	budget := []BudgetCategory{
		{Name: "Food", Allocated: 200, Spent: 12345},
		{Name: "Housing", Allocated: 600},
	}

	got := Compute(Snapshot{Categories: testCategories(), Transactions: txs, Budget: budget})
	assert.Equal(t, StateScored, got.State)
	assert.Equal(t, 0, got.SavingsScore)

	require.Len(t, got.BudgetWithSpending, 2)
	// 原有的 spent 被重新计算
	assert.Equal(t, 400.0, got.BudgetWithSpending[0].Spent)
	assert.Equal(t, 500.0, got.BudgetWithSpending[1].Spent)

	// Food: 50 * 0.25 = 12.5; Housing: 100 * 0.75 = 75
	assert.Equal(t, 88, got.BudgetingScore)
	assert.Equal(t, 44, *got.HealthScore)
	// 输入未被修改
	assert.Equal(t, 12345.0, budget[0].Spent)
}

func TestCompute_Idempotent(t *testing.T) {
	s := Snapshot{
		Categories:   testCategories(),
		Transactions: []Transaction{income(3000), expense("groceries", 333.33), expense("rent", 1200.5), expense("dining", 77.7)},
		Budget:       []BudgetCategory{{Name: "Food", Allocated: 350}, {Name: "Housing", Allocated: 1000}},
	}
	first := Compute(s)
	second := Compute(s)
	assert.Equal(t, first, second)
}
