package api

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"budgetly/config"
	"budgetly/database"
	"budgetly/middleware"
	"budgetly/models"
	"budgetly/scoring"
	"budgetly/service"

	"github.com/gin-gonic/gin"
)

// AIInsightHandler AI 财务洞察：预算生成、健康报告、周期复盘、目标预测、订阅识别
type AIInsightHandler struct {
	cfg *config.Config
}

// NewAIInsightHandler 创建 AI 洞察处理器
func NewAIInsightHandler(cfg *config.Config) *AIInsightHandler {
	return &AIInsightHandler{cfg: cfg}
}

// AIRequest 通用 AI 请求
type AIRequest struct {
	ModelID uint   `json:"model_id" binding:"required" example:"1"`
	Date    string `json:"date" example:"2024-03-15"` // 所在周期的任意日期，默认今天
}

// GenerateBudgetRequest 预算生成请求
type GenerateBudgetRequest struct {
	ModelID    uint    `json:"model_id" binding:"required" example:"1"`
	Income     float64 `json:"income" binding:"required,gt=0" example:"12000"`
	FixedCosts float64 `json:"fixed_costs" binding:"gte=0" example:"4000"`
}

// RecurringScanRequest 订阅识别请求
type RecurringScanRequest struct {
	ModelID uint `json:"model_id" binding:"required" example:"1"`
	Months  int  `json:"months" binding:"omitempty,min=1,max=12" example:"3"` // 回看月数，默认 3
}

// AIReportResponse 带历史记录ID的 AI 结果
type AIReportResponse struct {
	ReportID uint        `json:"report_id"`
	Result   interface{} `json:"result"`
}

// insight 读取模型与用户设置并创建洞察服务，失败时已写入响应
func (h *AIInsightHandler) insight(c *gin.Context, modelID uint) (*service.InsightService, models.UserSettings, bool) {
	userID := middleware.GetCurrentUserID(c)
	m, ok := loadAIModel(c, modelID)
	if !ok {
		return nil, models.UserSettings{}, false
	}
	settings, err := service.LoadSettings(database.DB, userID, h.cfg.Budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询设置失败"))
		return nil, settings, false
	}
	client := service.NewAIClient(*m, h.cfg.AI)
	return service.NewInsightService(client, settings.Currency, h.cfg.AI.MaxPromptTxs), settings, true
}

func (h *AIInsightHandler) aiContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := h.cfg.AI.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func aiFailed(c *gin.Context, err error) {
	BadGateway(c, SafeErrorMessage(err, "AI 分析失败，请稍后重试"))
}

// saveReport 保存 AI 结果，失败只记录日志
func saveReport(userID, modelID uint, kind string, start, end time.Time, result interface{}) uint {
	b, err := json.Marshal(result)
	if err != nil {
		return 0
	}
	report := models.AIReport{
		UserID:    userID,
		AIModelID: modelID,
		Kind:      kind,
		Result:    string(b),
	}
	if !start.IsZero() {
		report.StartDate = start.Format(dateLayout)
		report.EndDate = end.Format(dateLayout)
	}
	if err := database.DB.Create(&report).Error; err != nil {
		log.Printf("保存AI分析记录失败 (user=%d, kind=%s): %v", userID, kind, err)
		return 0
	}
	return report.ID
}

// NamedTransactions 将交易的分类ID替换为分类名称，便于写入提示词
func NamedTransactions(snap scoring.Snapshot) []scoring.Transaction {
	names := make(map[string]string, len(snap.Categories))
	for _, cat := range snap.Categories {
		names[cat.ID] = cat.Name
	}
	out := make([]scoring.Transaction, len(snap.Transactions))
	for i, tx := range snap.Transactions {
		if name, ok := names[tx.Category]; ok {
			tx.Category = name
		}
		out[i] = tx
	}
	return out
}

// overviewFor 计算 date 所在周期的评分结果
func (h *AIInsightHandler) overviewFor(c *gin.Context, settings models.UserSettings, date string) (*service.HealthOverview, bool) {
	now := time.Now()
	if date != "" {
		d, err := parseDate(date)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return nil, false
		}
		now = d
	}
	o, err := service.BuildOverview(database.DB, middleware.GetCurrentUserID(c), settings, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "读取财务数据失败"))
		return nil, false
	}
	return o, true
}

// GenerateBudget AI 生成预算
// @Summary AI 生成预算
// @Description 按 50/30/20 原则生成预算建议，"固定支出"固定为第一行。结果不会自动保存为预算，确认后调用 PUT /budget。
// @Tags AI洞察
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateBudgetRequest true "收入与固定支出"
// @Success 200 {object} Response{data=AIReportResponse} "生成成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 502 {object} Response "AI 服务错误"
// @Router /api/v1/ai/budget/generate [post]
func (h *AIInsightHandler) GenerateBudget(c *gin.Context) {
	var req GenerateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.FixedCosts > req.Income {
		BadRequest(c, "固定支出不能超过月收入")
		return
	}

	svc, _, ok := h.insight(c, req.ModelID)
	if !ok {
		return
	}
	ctx, cancel := h.aiContext(c)
	defer cancel()

	budget, err := svc.GenerateBudget(ctx, req.Income, req.FixedCosts)
	if err != nil {
		aiFailed(c, err)
		return
	}
	id := saveReport(middleware.GetCurrentUserID(c), req.ModelID, models.ReportBudgetPlan, time.Time{}, time.Time{}, budget)
	Success(c, AIReportResponse{ReportID: id, Result: budget})
}

// HealthReport AI 财务健康报告
// @Summary AI 财务健康报告
// @Tags AI洞察
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AIRequest true "模型与周期"
// @Success 200 {object} Response{data=AIReportResponse} "生成成功"
// @Failure 400 {object} Response "交易不足"
// @Failure 502 {object} Response "AI 服务错误"
// @Router /api/v1/ai/health-report [post]
func (h *AIInsightHandler) HealthReport(c *gin.Context) {
	var req AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	svc, settings, ok := h.insight(c, req.ModelID)
	if !ok {
		return
	}
	o, ok := h.overviewFor(c, settings, req.Date)
	if !ok {
		return
	}
	if o.Score.IsWelcomeState {
		BadRequest(c, "本周期交易记录不足，暂无法生成报告")
		return
	}

	ctx, cancel := h.aiContext(c)
	defer cancel()

	income, expenses := scoring.Totals(o.Snapshot.Transactions)
	report, err := svc.HealthReport(ctx, o.Budget, NamedTransactions(o.Snapshot), income, expenses)
	if err != nil {
		aiFailed(c, err)
		return
	}
	id := saveReport(middleware.GetCurrentUserID(c), req.ModelID, models.ReportHealth, o.CycleStart, o.CycleEnd, report)
	Success(c, AIReportResponse{ReportID: id, Result: report})
}

// CycleReview AI 周期复盘
// @Summary AI 周期复盘
// @Description 总结周期执行情况并给出下一周期预算建议，可直接用于 POST /budget/rollover
// @Tags AI洞察
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AIRequest true "模型与周期"
// @Success 200 {object} Response{data=AIReportResponse} "生成成功"
// @Failure 400 {object} Response "未设置预算"
// @Failure 502 {object} Response "AI 服务错误"
// @Router /api/v1/ai/cycle-review [post]
func (h *AIInsightHandler) CycleReview(c *gin.Context) {
	var req AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	svc, settings, ok := h.insight(c, req.ModelID)
	if !ok {
		return
	}
	o, ok := h.overviewFor(c, settings, req.Date)
	if !ok {
		return
	}
	if len(o.Budget) == 0 {
		BadRequest(c, "尚未设置预算，无法复盘")
		return
	}

	ctx, cancel := h.aiContext(c)
	defer cancel()

	review, err := svc.CycleReview(ctx, o.Budget, NamedTransactions(o.Snapshot))
	if err != nil {
		aiFailed(c, err)
		return
	}
	id := saveReport(middleware.GetCurrentUserID(c), req.ModelID, models.ReportCycleReview, o.CycleStart, o.CycleEnd, review)
	Success(c, AIReportResponse{ReportID: id, Result: review})
}

// GoalForecast AI 目标可行性预测
// @Summary AI 储蓄目标预测
// @Tags AI洞察
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "目标ID"
// @Param request body AIRequest true "模型"
// @Success 200 {object} Response{data=AIReportResponse} "生成成功"
// @Failure 404 {object} Response "目标不存在"
// @Failure 502 {object} Response "AI 服务错误"
// @Router /api/v1/ai/goals/{id}/forecast [post]
func (h *AIInsightHandler) GoalForecast(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	var goal models.Goal
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&goal).Error; err != nil {
		NotFound(c, "目标不存在")
		return
	}
	svc, settings, ok := h.insight(c, req.ModelID)
	if !ok {
		return
	}
	o, ok := h.overviewFor(c, settings, req.Date)
	if !ok {
		return
	}

	ctx, cancel := h.aiContext(c)
	defer cancel()

	income, expenses := scoring.Totals(o.Snapshot.Transactions)
	forecast, err := svc.GoalFeasibility(ctx, service.GoalInput{
		Name:          goal.Name,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
	}, income, expenses)
	if err != nil {
		aiFailed(c, err)
		return
	}
	id := saveReport(userID, req.ModelID, models.ReportGoal, o.CycleStart, o.CycleEnd, forecast)
	Success(c, AIReportResponse{ReportID: id, Result: forecast})
}

// RecurringScan AI 识别订阅与周期账单
// @Summary AI 识别周期账单
// @Description 回看最近 N 个月的支出，少于 5 笔时直接返回空列表
// @Tags AI洞察
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecurringScanRequest true "模型与回看月数"
// @Success 200 {object} Response{data=AIReportResponse} "识别成功"
// @Failure 502 {object} Response "AI 服务错误"
// @Router /api/v1/ai/recurring-scan [post]
func (h *AIInsightHandler) RecurringScan(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req RecurringScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.Months == 0 {
		req.Months = 3
	}
	svc, _, ok := h.insight(c, req.ModelID)
	if !ok {
		return
	}

	end := time.Now()
	start := end.AddDate(0, -req.Months, 0)
	snap, err := service.LoadSnapshot(database.DB, userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "读取财务数据失败"))
		return
	}

	ctx, cancel := h.aiContext(c)
	defer cancel()

	payments, err := svc.FindRecurringPayments(ctx, snap.Transactions)
	if err != nil {
		aiFailed(c, err)
		return
	}
	var id uint
	if len(payments) > 0 {
		id = saveReport(userID, req.ModelID, models.ReportRecurring, start, end, payments)
	}
	Success(c, AIReportResponse{ReportID: id, Result: payments})
}

// ListReports AI 分析历史
// @Summary AI 分析历史
// @Tags AI洞察
// @Produce json
// @Security BearerAuth
// @Param kind query string false "health_report / cycle_review / budget_plan / goal_forecast / recurring_scan"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.AIReport}} "获取成功"
// @Router /api/v1/ai/reports [get]
func (h *AIInsightHandler) ListReports(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePage(c)

	query := database.DB.Model(&models.AIReport{}).Where("user_id = ?", userID)
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	var list []models.AIReport
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if list == nil {
		list = []models.AIReport{}
	}
	Page(c, total, page, pageSize, list)
}

// DeleteReport 删除 AI 分析记录
// @Summary 删除 AI 分析记录
// @Tags AI洞察
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/ai/reports/{id} [delete]
func (h *AIInsightHandler) DeleteReport(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	result := database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.AIReport{})
	if result.Error != nil {
		InternalError(c, SafeErrorMessage(result.Error, "删除失败"))
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "记录不存在")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
