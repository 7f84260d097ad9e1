package scoring

// GoalProgress 目标完成百分比，截断到 [0, 100]，目标额为 0 时返回 0
func GoalProgress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := current / target * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
