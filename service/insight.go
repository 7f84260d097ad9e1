package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"budgetly/scoring"
)

// FixedCostsName AI 生成预算时固定支出所在的预算行
const FixedCostsName = "固定支出"

// minRecurringSample 少于该数量的支出不做周期账单识别
const minRecurringSample = 5

// maxRecurringSample 周期账单识别最多分析的支出条数
const maxRecurringSample = 100

const systemPrompt = "你是一个专业、友好、简洁的个人财务助手。请用中文回答。"

// FinancialHealthReport AI 财务健康报告
type FinancialHealthReport struct {
	OverallScore     int    `json:"overallScore"`
	ScoreRationale   string `json:"scoreRationale"`
	SpendingAnalysis struct {
		Summary             string `json:"summary"`
		TopSpendingCategory string `json:"topSpendingCategory"`
		PotentialSavings    string `json:"potentialSavings"`
	} `json:"spendingAnalysis"`
	BudgetAdherence struct {
		Summary              string   `json:"summary"`
		OverspentCategories  []string `json:"overspentCategories"`
		UnderspentCategories []string `json:"underspentCategories"`
	} `json:"budgetAdherence"`
	SavingsPerformance struct {
		Summary        string  `json:"summary"`
		SavingsRate    float64 `json:"savingsRate"`
		Recommendation string  `json:"recommendation"`
	} `json:"savingsPerformance"`
}

// CycleReview 周期复盘：总结 + 下一周期预算建议
type CycleReview struct {
	Summary   string                     `json:"summary"`
	NewBudget []scoring.BudgetAllocation `json:"newBudget"`
}

// GoalForecast 目标可行性预测
type GoalForecast struct {
	FeasibilityScore int      `json:"feasibilityScore"`
	ProjectedDate    string   `json:"projectedDate"`
	Analysis         string   `json:"analysis"`
	AccelerationTips []string `json:"accelerationTips"`
}

// PotentialSubscription AI 识别出的疑似周期账单
type PotentialSubscription struct {
	Name              string  `json:"name"`
	EstimatedAmount   float64 `json:"estimatedAmount"`
	Frequency         string  `json:"frequency"` // monthly / quarterly / annually / unknown
	FirstDetectedDate string  `json:"firstDetectedDate"`
}

// GoalInput 目标可行性分析的输入
type GoalInput struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
}

// InsightService 基于 AI 的预算建议、报告与复盘
type InsightService struct {
	ai       Completer
	currency string
	maxTxs   int
}

// NewInsightService 创建 AI 洞察服务，maxTxs 限制写入提示词的交易条数
func NewInsightService(ai Completer, currency string, maxTxs int) *InsightService {
	if maxTxs <= 0 {
		maxTxs = 50
	}
	return &InsightService{ai: ai, currency: currency, maxTxs: maxTxs}
}

// GenerateBudget 按 50/30/20 原则生成预算，固定支出作为第一行
func (s *InsightService) GenerateBudget(ctx context.Context, income, fixedCosts float64) ([]scoring.BudgetAllocation, error) {
	if income <= 0 {
		return nil, errors.New("月收入必须大于0")
	}
	if fixedCosts < 0 || fixedCosts > income {
		return nil, errors.New("固定支出必须在 0 到月收入之间")
	}
	prompt := fmt.Sprintf(`请根据用户的财务情况生成月度预算（币种 %s）。
- 月收入：%.2f
- 固定支出（房租、贷款等）：%.2f

按 50/30/20 原则（需求/想要/储蓄）分配扣除固定支出后剩余的 %.2f，不要包含"固定支出"这一项，分配总额不得超过剩余金额。
只输出 JSON：{"budget":[{"name":"分类名","allocated":金额}]}`, s.currency, income, fixedCosts, income-fixedCosts)

	var out struct {
		Budget []scoring.BudgetAllocation `json:"budget"`
	}
	if err := s.completeJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	if err := validateAllocations(out.Budget); err != nil {
		return nil, err
	}

	budget := make([]scoring.BudgetAllocation, 0, len(out.Budget)+1)
	budget = append(budget, scoring.BudgetAllocation{Name: FixedCostsName, Allocated: fixedCosts})
	for _, b := range out.Budget {
		if b.Name != FixedCostsName {
			budget = append(budget, b)
		}
	}
	return budget, nil
}

// HealthReport 生成财务健康报告
func (s *InsightService) HealthReport(ctx context.Context, rows []scoring.BudgetCategory, txs []scoring.Transaction, income, expenses float64) (*FinancialHealthReport, error) {
	type txBrief struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Type        string  `json:"type"`
	}
	recent := make([]txBrief, 0, s.maxTxs)
	for _, tx := range limitTxs(txs, s.maxTxs) {
		recent = append(recent, txBrief{tx.Description, tx.Amount, tx.Category, string(tx.Type)})
	}

	prompt := fmt.Sprintf(`请分析用户本周期的财务数据并生成财务健康报告（币种 %s）。
- 总收入：%.2f
- 总支出：%.2f
- 预算与实际支出：%s
- 近期交易：%s

储蓄率 20%% 及以上为优秀。savingsRate = (收入-支出)/收入*100，保留两位小数，收入为 0 时为 0。
只输出 JSON，字段：overallScore(0-100 整数), scoreRationale,
spendingAnalysis{summary,topSpendingCategory,potentialSavings},
budgetAdherence{summary,overspentCategories[],underspentCategories[]},
savingsPerformance{summary,savingsRate,recommendation}`,
		s.currency, income, expenses, mustJSON(rows), mustJSON(recent))

	var report FinancialHealthReport
	if err := s.completeJSON(ctx, prompt, &report); err != nil {
		return nil, err
	}
	if report.OverallScore < 0 || report.OverallScore > 100 {
		return nil, fmt.Errorf("AI 返回的评分超出范围: %d", report.OverallScore)
	}
	if report.BudgetAdherence.OverspentCategories == nil {
		report.BudgetAdherence.OverspentCategories = []string{}
	}
	if report.BudgetAdherence.UnderspentCategories == nil {
		report.BudgetAdherence.UnderspentCategories = []string{}
	}
	return &report, nil
}

// CycleReview 周期结束复盘，给出下一周期预算建议
func (s *InsightService) CycleReview(ctx context.Context, rows []scoring.BudgetCategory, txs []scoring.Transaction) (*CycleReview, error) {
	type rowBrief struct {
		Category  string  `json:"category"`
		Allocated float64 `json:"allocated"`
		Spent     float64 `json:"spent"`
	}
	type txBrief struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
	}
	plan := make([]rowBrief, 0, len(rows))
	for _, r := range rows {
		plan = append(plan, rowBrief{r.Name, r.Allocated, r.Spent})
	}
	var recent []txBrief
	for _, tx := range txs {
		if tx.Type != scoring.TypeExpense {
			continue
		}
		if len(recent) >= s.maxTxs {
			break
		}
		recent = append(recent, txBrief{tx.Description, tx.Amount, tx.Category})
	}

	prompt := fmt.Sprintf(`请复盘用户上一预算周期的执行情况并给出下一周期的预算（币种 %s）。
- 预算与实际支出：%s
- 近期支出：%s

summary：2-3 句总结，指出一个超支的分类和一个做得好的分类。
newBudget：根据实际支出调整，超支分类适当下调，分类名称尽量与原预算一致，总额与原预算接近。
只输出 JSON：{"summary":"...","newBudget":[{"name":"分类名","allocated":金额}]}`,
		s.currency, mustJSON(plan), mustJSON(recent))

	var review CycleReview
	if err := s.completeJSON(ctx, prompt, &review); err != nil {
		return nil, err
	}
	if err := validateAllocations(review.NewBudget); err != nil {
		return nil, err
	}
	return &review, nil
}

// GoalFeasibility 预测储蓄目标的可行性
func (s *InsightService) GoalFeasibility(ctx context.Context, goal GoalInput, income, expenses float64) (*GoalForecast, error) {
	prompt := fmt.Sprintf(`请根据用户的财务数据分析储蓄目标的可行性（币种 %s）。
- 目标：%s
- 本周期收入：%.2f，支出：%.2f

只输出 JSON：feasibilityScore(0-100 整数，越高越容易达成), projectedDate(预计完成的年月，如 "2025年12月"),
analysis(一句鼓励性的总结), accelerationTips(2-3 条可执行的建议)`,
		s.currency, mustJSON(goal), income, expenses)

	var forecast GoalForecast
	if err := s.completeJSON(ctx, prompt, &forecast); err != nil {
		return nil, err
	}
	if forecast.FeasibilityScore < 0 || forecast.FeasibilityScore > 100 {
		return nil, fmt.Errorf("AI 返回的可行性评分超出范围: %d", forecast.FeasibilityScore)
	}
	return &forecast, nil
}

// FindRecurringPayments 从支出中识别疑似订阅/周期账单，样本不足时不调用 AI
func (s *InsightService) FindRecurringPayments(ctx context.Context, txs []scoring.Transaction) ([]PotentialSubscription, error) {
	type txBrief struct {
		Date        string  `json:"date"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
	}
	var sample []txBrief
	for _, tx := range txs {
		if tx.Type != scoring.TypeExpense || tx.Amount <= 0 {
			continue
		}
		if len(sample) >= maxRecurringSample {
			break
		}
		sample = append(sample, txBrief{tx.Date.Format("2006-01-02"), tx.Description, tx.Amount})
	}
	if len(sample) < minRecurringSample {
		return []PotentialSubscription{}, nil
	}

	prompt := fmt.Sprintf(`请从以下支出中识别订阅或周期性账单。
合并同一商户的不同写法，排除一次性大额消费，金额有波动时取平均值。
frequency 取值 monthly / quarterly / annually / unknown，firstDetectedDate 为识别依据中最早一笔的日期。
只输出 JSON：{"payments":[{"name":"...","estimatedAmount":金额,"frequency":"monthly","firstDetectedDate":"2024-01-31"}]}

支出数据：%s`, mustJSON(sample))

	var out struct {
		Payments []PotentialSubscription `json:"payments"`
	}
	if err := s.completeJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	if out.Payments == nil {
		out.Payments = []PotentialSubscription{}
	}
	return out.Payments, nil
}

// completeJSON 请求 JSON 输出并解析到 v，格式不符时返回错误
func (s *InsightService) completeJSON(ctx context.Context, prompt string, v any) error {
	text, err := s.ai.Complete(ctx, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), v); err != nil {
		return fmt.Errorf("AI 返回的内容不是有效的 JSON: %w", err)
	}
	return nil
}

// extractJSON 去掉模型常见的 ```json 代码块包裹
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

func validateAllocations(rows []scoring.BudgetAllocation) error {
	if len(rows) == 0 {
		return errors.New("AI 未返回任何预算分类")
	}
	for _, r := range rows {
		if strings.TrimSpace(r.Name) == "" {
			return errors.New("AI 返回的预算分类名称为空")
		}
		if r.Allocated < 0 {
			return fmt.Errorf("AI 返回的预算金额为负: %s", r.Name)
		}
	}
	return nil
}

func limitTxs(txs []scoring.Transaction, n int) []scoring.Transaction {
	if len(txs) > n {
		return txs[:n]
	}
	return txs
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
