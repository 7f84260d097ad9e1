package scoring

// BudgetAlert 预算使用率提醒
type BudgetAlert struct {
	Name    string  `json:"name"`
	Spent   float64 `json:"spent"`
	Target  float64 `json:"target"`
	Percent float64 `json:"percent"`
	Over    bool    `json:"over"`
}

// LargeTransactions 大额支出，阈值 <= 0 表示关闭
func LargeTransactions(transactions []Transaction, threshold float64) []Transaction {
	if threshold <= 0 {
		return nil
	}
	var out []Transaction
	for _, tx := range transactions {
		if tx.Type == TypeExpense && tx.Amount >= threshold {
			out = append(out, tx)
		}
	}
	return out
}

// BudgetThresholdAlerts 使用率达到阈值百分比的预算行，percent <= 0 表示关闭
// 可用额度 <= 0 的分类只要有支出即提醒。
func BudgetThresholdAlerts(rows []BudgetCategory, percent float64, carryoverEnabled bool) []BudgetAlert {
	if percent <= 0 {
		return nil
	}
	var alerts []BudgetAlert
	for _, b := range rows {
		target := EffectiveTarget(b, carryoverEnabled)
		alert := BudgetAlert{
			Name:   b.Name,
			Spent:  b.Spent,
			Target: target,
			Over:   b.Spent > target,
		}
		if target <= 0 {
			if b.Spent > 0 {
				alerts = append(alerts, alert)
			}
			continue
		}
		alert.Percent = b.Spent / target * 100
		if alert.Percent >= percent {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}
