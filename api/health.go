package api

import (
	"time"

	"budgetly/config"
	"budgetly/database"
	"budgetly/middleware"
	"budgetly/service"

	"github.com/gin-gonic/gin"
)

// HealthHandler 财务健康评分
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler 创建评分处理器
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// GetScore 当前预算周期的健康评分
// @Summary 获取财务健康评分
// @Description 返回健康分、储蓄分、预算分、评分阶段（welcome/no_budget/unallocated/scored），以及预算提醒和大额交易。
// @Description 传入 date 时计算该日期所在的预算周期。
// @Tags 健康评分
// @Produce json
// @Security BearerAuth
// @Param date query string false "所在周期的任意日期 (2024-03-15)"
// @Success 200 {object} Response{data=service.HealthOverview} "获取成功"
// @Failure 400 {object} Response "日期格式错误"
// @Router /api/v1/health-score [get]
func (h *HealthHandler) GetScore(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	now := time.Now()
	if s := c.Query("date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		now = d
	}

	settings, err := service.LoadSettings(database.DB, userID, h.cfg.Budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询设置失败"))
		return
	}
	o, err := service.BuildOverview(database.DB, userID, settings, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "计算评分失败"))
		return
	}
	Success(c, o)
}
