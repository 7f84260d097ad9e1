package scoring

import (
	"fmt"
	"time"
)

// BillingCycle 订阅/账单周期
type BillingCycle string

const (
	BillingMonthly   BillingCycle = "monthly"
	BillingQuarterly BillingCycle = "quarterly"
	BillingAnnually  BillingCycle = "annually"
)

// DueStatus 到期状态
type DueStatus struct {
	Days   int    `json:"days"` // 距到期天数，负数表示已逾期
	IsPast bool   `json:"is_past"`
	Text   string `json:"text"`
}

// NextDueDate 按账单周期推进下一次到期日，月末日期会截断到目标月最后一天
func NextDueDate(due time.Time, cycle BillingCycle) time.Time {
	switch cycle {
	case BillingQuarterly:
		return addMonthsClamped(due, 3)
	case BillingAnnually:
		return addMonthsClamped(due, 12)
	default:
		return addMonthsClamped(due, 1)
	}
}

// GetDueStatus 计算到期状态，按自然日比较，忽略时分秒
func GetDueStatus(due, now time.Time) DueStatus {
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(d.Sub(n).Hours() / 24)

	switch {
	case days == 0:
		return DueStatus{Days: 0, Text: "今天到期"}
	case days < 0:
		return DueStatus{Days: days, IsPast: true, Text: fmt.Sprintf("已逾期 %d 天", -days)}
	default:
		return DueStatus{Days: days, Text: fmt.Sprintf("%d 天后到期", days)}
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}
