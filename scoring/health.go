package scoring

import "math"

const (
	// WelcomeThreshold 交易数少于该值时视为数据不足
	WelcomeThreshold = 3
	// TargetSavingsRate 储蓄率达到 20% 即储蓄分满分
	TargetSavingsRate = 0.20

	savingsWeight   = 0.5
	budgetingWeight = 0.5
	perfectScore    = 100
)

// ScoreState 评分所处阶段，每次计算时派生，不持久化
type ScoreState string

const (
	// StateWelcome 交易不足，展示欢迎页而不是 0 分
	StateWelcome ScoreState = "welcome"
	// StateNoBudget 未设置预算或没有分类，健康分等于储蓄分
	StateNoBudget ScoreState = "no_budget"
	// StateUnallocated 有预算行但分配总额为 0
	StateUnallocated ScoreState = "unallocated"
	// StateScored 储蓄分与预算分各占一半
	StateScored ScoreState = "scored"
)

// ScoreBundle 评分结果
type ScoreBundle struct {
	HealthScore        *int             `json:"health_score"`
	SavingsScore       int              `json:"savings_score"`
	BudgetingScore     int              `json:"budgeting_score"`
	BudgetWithSpending []BudgetCategory `json:"budget_with_spending"`
	IsWelcomeState     bool             `json:"is_welcome_state"`
	State              ScoreState       `json:"state"`
	Income             float64          `json:"income"`
	Expenses           float64          `json:"expenses"`
}

// Compute 执行完整流水线：分类解析 -> 支出汇总 -> 评分
func Compute(s Snapshot) ScoreBundle {
	if len(s.Transactions) < WelcomeThreshold {
		return ScoreBundle{
			BudgetWithSpending: []BudgetCategory{},
			IsWelcomeState:     true,
			State:              StateWelcome,
		}
	}

	income, expenses := Totals(s.Transactions)
	savings := SavingsScore(income, expenses)
	bundle := ScoreBundle{
		SavingsScore:       savings,
		BudgetingScore:     perfectScore,
		BudgetWithSpending: []BudgetCategory{},
		State:              StateNoBudget,
		Income:             income,
		Expenses:           expenses,
	}

	// 没有预算不扣分，预算部分整体不参与加权
	if len(s.Budget) == 0 || len(s.Categories) == 0 {
		bundle.HealthScore = intPtr(savings)
		return bundle
	}

	lookup := BuildCategoryLookup(s.Categories)
	rows := WithSpending(s.Budget, AggregateSpending(s.Transactions, lookup))
	bundle.BudgetWithSpending = rows

	if TotalAllocated(rows) == 0 {
		bundle.State = StateUnallocated
		bundle.HealthScore = intPtr(savings)
		return bundle
	}

	budgeting := BudgetingScore(rows)
	bundle.BudgetingScore = budgeting
	bundle.State = StateScored
	bundle.HealthScore = intPtr(roundScore(float64(savings)*savingsWeight + float64(budgeting)*budgetingWeight))
	return bundle
}

// SavingsScore 储蓄分：储蓄率 / 目标储蓄率，截断到 [0, 100]
func SavingsScore(income, expenses float64) int {
	rate := 0.0
	if income > 0 {
		rate = (income - expenses) / income
	}
	return roundScore(math.Min(math.Max(rate/TargetSavingsRate*100, 0), perfectScore))
}

// BudgetingScore 预算分：各分类达成度按分配额加权
// 分配总额为 0 时返回 100。
func BudgetingScore(rows []BudgetCategory) int {
	total := TotalAllocated(rows)
	if total == 0 {
		return perfectScore
	}
	var sum float64
	for _, b := range rows {
		sum += CategoryScore(b.Allocated, b.Spent) * (b.Allocated / total)
	}
	return roundScore(sum)
}

// CategoryScore 单个分类的达成度，未超支为 100
func CategoryScore(allocated, spent float64) float64 {
	if allocated >= spent {
		return perfectScore
	}
	// allocated < spent 且 allocated >= 0，此处 spent 必然 > 0
	return math.Max(0, allocated/spent*100)
}

// TotalAllocated 分配总额
func TotalAllocated(rows []BudgetCategory) float64 {
	var total float64
	for _, b := range rows {
		total += b.Allocated
	}
	return total
}

// roundScore 四舍五入，.5 向正无穷方向进位
func roundScore(v float64) int {
	return int(math.Floor(v + 0.5))
}

func intPtr(v int) *int {
	return &v
}
