package scoring

// BudgetSummary 预算总览
type BudgetSummary struct {
	TotalAllocated float64 `json:"total_allocated"`
	TotalSpent     float64 `json:"total_spent"`
	TotalCarryover float64 `json:"total_carryover"`
	TotalBudget    float64 `json:"total_budget"`
}

// BudgetAllocation 新周期的预算分配（不含 spent）
type BudgetAllocation struct {
	Name      string  `json:"name"`
	Allocated float64 `json:"allocated"`
}

// CarryoverKind 结转类型
type CarryoverKind string

const (
	CarryoverNone      CarryoverKind = "none"
	CarryoverSurplus   CarryoverKind = "surplus"
	CarryoverOverspent CarryoverKind = "overspent"
)

// EffectiveTarget 本期可用额度 = 分配额 + 结转（关闭结转时忽略结转）
func EffectiveTarget(b BudgetCategory, carryoverEnabled bool) float64 {
	if !carryoverEnabled {
		return b.Allocated
	}
	return b.Allocated + b.Carryover
}

// IsOverBudget 是否超出本期可用额度
func IsOverBudget(b BudgetCategory, carryoverEnabled bool) bool {
	return b.Spent > EffectiveTarget(b, carryoverEnabled)
}

// SummarizeBudget 汇总预算行
func SummarizeBudget(rows []BudgetCategory, carryoverEnabled bool) BudgetSummary {
	var s BudgetSummary
	for _, b := range rows {
		s.TotalAllocated += b.Allocated
		s.TotalSpent += b.Spent
		if carryoverEnabled {
			s.TotalCarryover += b.Carryover
		}
	}
	s.TotalBudget = s.TotalAllocated + s.TotalCarryover
	return s
}

// RollOver 根据上期执行情况生成下一周期预算
// 开启结转时，同名分类的结转额 = 上期可用额度 - 上期支出（可为负）；
// 新增分类结转为 0。spent 一律清零。
func RollOver(previous []BudgetCategory, next []BudgetAllocation, carryoverEnabled bool) []BudgetCategory {
	prevByName := make(map[string]BudgetCategory, len(previous))
	for _, b := range previous {
		prevByName[b.Name] = b
	}

	rows := make([]BudgetCategory, 0, len(next))
	for _, a := range next {
		row := BudgetCategory{Name: a.Name, Allocated: a.Allocated}
		if prev, ok := prevByName[a.Name]; ok && carryoverEnabled {
			row.Carryover = EffectiveTarget(prev, true) - prev.Spent
		}
		rows = append(rows, row)
	}
	return rows
}

// ClassifyCarryover 结转提示类型
func ClassifyCarryover(carryover float64) CarryoverKind {
	switch {
	case carryover > 0:
		return CarryoverSurplus
	case carryover < 0:
		return CarryoverOverspent
	default:
		return CarryoverNone
	}
}
