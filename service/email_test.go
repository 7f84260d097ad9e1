package service

import (
	"testing"
	"time"

	"budgetly/config"
	"budgetly/scoring"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{})
}

func TestGenerateResetCodeBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateResetCodeBody("李四", "888999")
	assert.Contains(t, body, "李四")
	assert.Contains(t, body, "888999")
	assert.Contains(t, body, "密码重置")
	assert.Contains(t, body, "10 分钟")
}

func TestGenerateResetCodeBody_EscapesUsername(t *testing.T) {
	body := newTestEmailService().generateResetCodeBody("<b>x</b>", "123456")
	assert.NotContains(t, body, "<b>x</b>")
	assert.Contains(t, body, "&lt;b&gt;x&lt;/b&gt;")
}

func TestGenerateCycleSummaryBody(t *testing.T) {
	score := 72
	o := &HealthOverview{
		CycleStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CycleEnd:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Score: scoring.ScoreBundle{
			HealthScore:    &score,
			SavingsScore:   100,
			BudgetingScore: 44,
			Income:         5000,
			Expenses:       3000,
		},
		Budget: []scoring.BudgetCategory{
			{Name: "餐饮", Allocated: 500, Spent: 800},
			{Name: "交通", Allocated: 300, Spent: 100},
		},
		Currency: "CNY",
	}
	body := newTestEmailService().generateCycleSummaryBody("张三", o)
	assert.Contains(t, body, "2024-03-01 至 2024-03-31")
	assert.Contains(t, body, `<p class="score">72</p>`)
	assert.Contains(t, body, "储蓄分 100，预算分 44")
	assert.Contains(t, body, `<tr class="over"><td>餐饮</td>`)
	assert.Contains(t, body, "<tr><td>交通</td>")
}

func TestGenerateCycleSummaryBody_Welcome(t *testing.T) {
	o := &HealthOverview{Score: scoring.ScoreBundle{IsWelcomeState: true}, Currency: "CNY"}
	body := newTestEmailService().generateCycleSummaryBody("张三", o)
	assert.Contains(t, body, "暂无健康评分")
	assert.NotContains(t, body, "<table>")
}

func TestEmailService_Disabled(t *testing.T) {
	s := newTestEmailService()
	assert.False(t, s.Enabled())
	assert.Error(t, s.SendPasswordResetCode("a@example.com", "a", "123456"))
	assert.Error(t, s.SendTestEmail("a@example.com"))
	assert.Error(t, s.SendCycleSummary("a@example.com", "a", &HealthOverview{}))
}
