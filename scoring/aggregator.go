package scoring

// SpendingMap 顶级分类名称 -> 支出合计
type SpendingMap map[string]float64

// AggregateSpending 按顶级分类汇总支出
// 收入不计入；无法解析分类的支出被忽略，不归入任何桶。
func AggregateSpending(transactions []Transaction, lookup CategoryLookup) SpendingMap {
	spending := make(SpendingMap)
	for _, tx := range transactions {
		if tx.Type != TypeExpense {
			continue
		}
		bucket, ok := lookup.Resolve(tx.Category)
		if !ok {
			continue
		}
		spending[bucket] += tx.Amount
	}
	return spending
}

// Totals 汇总收入与支出（不依赖分类解析）
func Totals(transactions []Transaction) (income, expenses float64) {
	for _, tx := range transactions {
		switch tx.Type {
		case TypeIncome:
			income += tx.Amount
		case TypeExpense:
			expenses += tx.Amount
		}
	}
	return income, expenses
}

// WithSpending 用汇总结果覆盖预算行的 spent，按名称匹配，未匹配为 0
func WithSpending(budget []BudgetCategory, spending SpendingMap) []BudgetCategory {
	rows := make([]BudgetCategory, len(budget))
	for i, b := range budget {
		b.Spent = spending[b.Name]
		rows[i] = b
	}
	return rows
}
