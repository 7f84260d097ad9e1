package api

import (
	"strings"

	"budgetly/config"
	"budgetly/database"
	"budgetly/middleware"
	"budgetly/models"
	"budgetly/scoring"
	"budgetly/service"

	"github.com/gin-gonic/gin"
)

// SettingsHandler 用户偏好设置
type SettingsHandler struct {
	cfg *config.Config
}

// NewSettingsHandler 创建偏好设置处理器
func NewSettingsHandler(cfg *config.Config) *SettingsHandler {
	return &SettingsHandler{cfg: cfg}
}

// UpdateSettingsRequest 更新设置请求，未传字段保持不变
type UpdateSettingsRequest struct {
	Currency               *string  `json:"currency" binding:"omitempty,min=1,max=10" example:"CNY"`
	CarryoverEnabled       *bool    `json:"carryover_enabled"`
	CycleType              *string  `json:"cycle_type" example:"custom_day"`
	CycleDay               *int     `json:"cycle_day" example:"15"`
	PushEnabled            *bool    `json:"push_enabled"`
	EmailSummariesEnabled  *bool    `json:"email_summaries_enabled"`
	LargeTransactionAmount *float64 `json:"large_transaction_amount" example:"1000"`
	BudgetThresholdPercent *float64 `json:"budget_threshold_percent" example:"80"`
	DefaultTransactionType *string  `json:"default_transaction_type" example:"expense"`
	DefaultAccount         *string  `json:"default_account" binding:"omitempty,max=50" example:"现金"`
}

// Get 获取当前用户的偏好设置
// @Summary 获取偏好设置
// @Tags 设置
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.UserSettings} "获取成功"
// @Router /api/v1/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	settings, err := service.LoadSettings(database.DB, userID, h.cfg.Budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, settings)
}

// Update 更新偏好设置
// @Summary 更新偏好设置
// @Description 预算周期为 monthly 或 custom_day（1-31 日，超出当月天数时取月末），提醒阈值范围 0-100，0 表示关闭
// @Tags 设置
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateSettingsRequest true "设置项"
// @Success 200 {object} Response{data=models.UserSettings} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	settings, err := service.LoadSettings(database.DB, userID, h.cfg.Budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	if msg := applySettings(&settings, req); msg != "" {
		BadRequest(c, msg)
		return
	}

	if err := database.DB.Save(&settings).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "保存失败"))
		return
	}

	SuccessWithMessage(c, "保存成功", settings)
}

// applySettings 合并并校验请求，返回非空字符串表示校验失败
func applySettings(s *models.UserSettings, req UpdateSettingsRequest) string {
	if req.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if cur == "" {
			return "币种不能为空"
		}
		s.Currency = cur
	}
	if req.CarryoverEnabled != nil {
		s.CarryoverEnabled = *req.CarryoverEnabled
	}
	if req.CycleType != nil || req.CycleDay != nil {
		cycle := scoring.BudgetCycle{Type: scoring.CycleType(s.CycleType), DayOfMonth: s.CycleDay}
		if req.CycleType != nil {
			cycle.Type = scoring.CycleType(*req.CycleType)
		}
		if req.CycleDay != nil {
			cycle.DayOfMonth = *req.CycleDay
		}
		if cycle.Type == scoring.CycleMonthly {
			cycle.DayOfMonth = 1
		}
		if err := cycle.Validate(); err != nil {
			return err.Error()
		}
		s.CycleType = string(cycle.Type)
		s.CycleDay = cycle.DayOfMonth
	}
	if req.PushEnabled != nil {
		s.PushEnabled = *req.PushEnabled
	}
	if req.EmailSummariesEnabled != nil {
		s.EmailSummariesEnabled = *req.EmailSummariesEnabled
	}
	if req.LargeTransactionAmount != nil {
		if *req.LargeTransactionAmount < 0 {
			return "大额交易提醒金额不能为负数"
		}
		s.LargeTransactionAmount = *req.LargeTransactionAmount
	}
	if req.BudgetThresholdPercent != nil {
		p := *req.BudgetThresholdPercent
		if p < 0 || p > 100 {
			return "预算提醒阈值应在 0-100 之间"
		}
		s.BudgetThresholdPercent = p
	}
	if req.DefaultTransactionType != nil {
		if !models.IsValidTransactionType(*req.DefaultTransactionType) {
			return "默认交易类型应为 income 或 expense"
		}
		s.DefaultTransactionType = *req.DefaultTransactionType
	}
	if req.DefaultAccount != nil {
		s.DefaultAccount = strings.TrimSpace(*req.DefaultAccount)
	}
	return ""
}
