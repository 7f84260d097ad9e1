package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"budgetly/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply    string
	err      error
	calls    int
	lastMsgs []ChatMessage
}

func (s *stubCompleter) Complete(_ context.Context, messages []ChatMessage, jsonMode bool) (string, error) {
	s.calls++
	s.lastMsgs = messages
	if !jsonMode {
		return "", errors.New("json mode required")
	}
	return s.reply, s.err
}

func expenseTxs(n int) []scoring.Transaction {
	txs := make([]scoring.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, scoring.Transaction{
			ID:          fmt.Sprintf("t%d", i),
			Date:        time.Date(2024, time.Month(i%12+1), 5, 0, 0, 0, 0, time.UTC),
			Description: "Netflix",
			Amount:      15,
			Type:        scoring.TypeExpense,
		})
	}
	return txs
}

func TestGenerateBudget(t *testing.T) {
	ai := &stubCompleter{reply: "```json\n{\"budget\":[{\"name\":\"餐饮\",\"allocated\":1200},{\"name\":\"储蓄\",\"allocated\":1000}]}\n```"}
	svc := NewInsightService(ai, "CNY", 0)

	budget, err := svc.GenerateBudget(context.Background(), 5000, 2000)
	require.NoError(t, err)
	assert.Equal(t, []scoring.BudgetAllocation{
		{Name: FixedCostsName, Allocated: 2000},
		{Name: "餐饮", Allocated: 1200},
		{Name: "储蓄", Allocated: 1000},
	}, budget)
	assert.Equal(t, "system", ai.lastMsgs[0].Role)
	assert.Contains(t, ai.lastMsgs[1].Content, "3000.00")
}

func TestGenerateBudget_InvalidInput(t *testing.T) {
	ai := &stubCompleter{}
	svc := NewInsightService(ai, "CNY", 50)

	_, err := svc.GenerateBudget(context.Background(), 0, 0)
	assert.Error(t, err)
	_, err = svc.GenerateBudget(context.Background(), 1000, 2000)
	assert.Error(t, err)
	assert.Zero(t, ai.calls)
}

func TestGenerateBudget_MalformedReply(t *testing.T) {
	svc := NewInsightService(&stubCompleter{reply: "抱歉，我无法生成预算"}, "CNY", 50)
	_, err := svc.GenerateBudget(context.Background(), 5000, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON")

	svc = NewInsightService(&stubCompleter{reply: `{"budget":[{"name":"餐饮","allocated":-1}]}`}, "CNY", 50)
	_, err = svc.GenerateBudget(context.Background(), 5000, 1000)
	assert.Error(t, err)
}

func TestHealthReport(t *testing.T) {
	reply := `{"overallScore":81,"scoreRationale":"储蓄率良好","spendingAnalysis":{"summary":"s","topSpendingCategory":"餐饮","potentialSavings":"少点外卖"},
"budgetAdherence":{"summary":"b"},"savingsPerformance":{"summary":"p","savingsRate":25.5,"recommendation":"r"}}`
	svc := NewInsightService(&stubCompleter{reply: reply}, "CNY", 2)

	report, err := svc.HealthReport(context.Background(), []scoring.BudgetCategory{{Name: "餐饮", Allocated: 100, Spent: 50}}, expenseTxs(5), 1000, 745)
	require.NoError(t, err)
	assert.Equal(t, 81, report.OverallScore)
	assert.Equal(t, "餐饮", report.SpendingAnalysis.TopSpendingCategory)
	assert.Equal(t, 25.5, report.SavingsPerformance.SavingsRate)
	assert.Equal(t, []string{}, report.BudgetAdherence.OverspentCategories)
}

func TestHealthReport_ScoreOutOfRange(t *testing.T) {
	svc := NewInsightService(&stubCompleter{reply: `{"overallScore":130}`}, "CNY", 50)
	_, err := svc.HealthReport(context.Background(), nil, nil, 0, 0)
	assert.Error(t, err)
}

func TestCycleReview(t *testing.T) {
	ai := &stubCompleter{reply: `{"summary":"餐饮超支，交通控制得好","newBudget":[{"name":"餐饮","allocated":900},{"name":"交通","allocated":300}]}`}
	svc := NewInsightService(ai, "CNY", 50)

	review, err := svc.CycleReview(context.Background(), []scoring.BudgetCategory{{Name: "餐饮", Allocated: 800, Spent: 1000}}, expenseTxs(3))
	require.NoError(t, err)
	assert.Equal(t, "餐饮超支，交通控制得好", review.Summary)
	assert.Len(t, review.NewBudget, 2)
	assert.Contains(t, ai.lastMsgs[1].Content, `"spent":1000`)
}

func TestCycleReview_EmptyBudget(t *testing.T) {
	svc := NewInsightService(&stubCompleter{reply: `{"summary":"x","newBudget":[]}`}, "CNY", 50)
	_, err := svc.CycleReview(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestGoalFeasibility(t *testing.T) {
	svc := NewInsightService(&stubCompleter{reply: `{"feasibilityScore":70,"projectedDate":"2025年12月","analysis":"继续加油","accelerationTips":["a","b"]}`}, "CNY", 50)
	f, err := svc.GoalFeasibility(context.Background(), GoalInput{Name: "旅行", TargetAmount: 10000, CurrentAmount: 2000}, 8000, 6000)
	require.NoError(t, err)
	assert.Equal(t, 70, f.FeasibilityScore)
	assert.Equal(t, []string{"a", "b"}, f.AccelerationTips)
}

func TestFindRecurringPayments(t *testing.T) {
	ai := &stubCompleter{reply: `{"payments":[{"name":"Netflix","estimatedAmount":15,"frequency":"monthly","firstDetectedDate":"2024-01-05"}]}`}
	svc := NewInsightService(ai, "CNY", 50)

	// 样本不足不调用 AI
	out, err := svc.FindRecurringPayments(context.Background(), expenseTxs(4))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, ai.calls)

	out, err = svc.FindRecurringPayments(context.Background(), expenseTxs(6))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Netflix", out[0].Name)
	assert.Equal(t, 1, ai.calls)
}

func TestInsight_PropagatesAIError(t *testing.T) {
	svc := NewInsightService(&stubCompleter{err: errors.New("AI服务返回错误: 500")}, "CNY", 50)
	_, err := svc.GoalFeasibility(context.Background(), GoalInput{}, 0, 0)
	assert.EqualError(t, err, "AI服务返回错误: 500")
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON("```\n{\"a\":1}```"))
	assert.Equal(t, `[1]`, extractJSON("  [1]  "))
}
