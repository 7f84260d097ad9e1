package scoring

import (
	"fmt"
	"time"
)

// CycleType 预算周期类型
type CycleType string

const (
	CycleMonthly   CycleType = "monthly"
	CycleCustomDay CycleType = "custom_day"
)

// BudgetCycle 预算周期配置
type BudgetCycle struct {
	Type       CycleType `json:"type"`
	DayOfMonth int       `json:"day_of_month"`
}

// DefaultBudgetCycle 默认按自然月
func DefaultBudgetCycle() BudgetCycle {
	return BudgetCycle{Type: CycleMonthly, DayOfMonth: 1}
}

// Validate 校验周期配置
func (c BudgetCycle) Validate() error {
	switch c.Type {
	case CycleMonthly:
		return nil
	case CycleCustomDay:
		if c.DayOfMonth < 1 || c.DayOfMonth > 31 {
			return fmt.Errorf("day_of_month 超出范围: %d", c.DayOfMonth)
		}
		return nil
	default:
		return fmt.Errorf("未知的周期类型: %q", c.Type)
	}
}

// CycleWindow 返回 now 所在周期的起止时间（结束时间为周期最后一秒）
// custom_day 的起始日超过当月天数时取当月最后一天。
func CycleWindow(c BudgetCycle, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	if c.Type != CycleCustomDay {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0).Add(-time.Second)
	}

	start := cycleStartIn(now.Year(), now.Month(), c.DayOfMonth, loc)
	if now.Before(start) {
		start = cycleStartIn(now.Year(), now.Month()-1, c.DayOfMonth, loc)
	}
	next := cycleStartIn(start.Year(), start.Month()+1, c.DayOfMonth, loc)
	return start, next.Add(-time.Second)
}

func cycleStartIn(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
