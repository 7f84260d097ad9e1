package api

import (
	"errors"
	"log"
	"strings"
	"time"

	"budgetly/config"
	"budgetly/database"
	"budgetly/middleware"
	"budgetly/models"
	"budgetly/scoring"
	"budgetly/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(cfg *config.Config) *BudgetHandler {
	return &BudgetHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// BudgetRow 预算行及本期执行情况
type BudgetRow struct {
	scoring.BudgetCategory
	Target        float64               `json:"target"`    // 本期可用额度
	Remaining     float64               `json:"remaining"` // 负数表示超支
	Over          bool                  `json:"over"`
	CarryoverKind scoring.CarryoverKind `json:"carryover_kind"`
}

// BudgetView 当前周期预算
type BudgetView struct {
	CycleStart       time.Time             `json:"cycle_start"`
	CycleEnd         time.Time             `json:"cycle_end"`
	CarryoverEnabled bool                  `json:"carryover_enabled"`
	Rows             []BudgetRow           `json:"rows"`
	Summary          scoring.BudgetSummary `json:"summary"`
}

// ReplaceBudgetRequest 预算分配
type ReplaceBudgetRequest struct {
	Budget []scoring.BudgetAllocation `json:"budget" binding:"required"`
}

// RolloverRequest 结转请求，未传 budget 时沿用当前分配额
type RolloverRequest struct {
	Budget []scoring.BudgetAllocation `json:"budget"`
}

// NewBudgetView 由评分结果组装预算视图
func NewBudgetView(o *service.HealthOverview) BudgetView {
	rows := make([]BudgetRow, 0, len(o.Budget))
	for _, b := range o.Budget {
		target := scoring.EffectiveTarget(b, o.CarryoverEnabled)
		kind := scoring.CarryoverNone
		if o.CarryoverEnabled {
			kind = scoring.ClassifyCarryover(b.Carryover)
		}
		rows = append(rows, BudgetRow{
			BudgetCategory: b,
			Target:         target,
			Remaining:      target - b.Spent,
			Over:           scoring.IsOverBudget(b, o.CarryoverEnabled),
			CarryoverKind:  kind,
		})
	}
	return BudgetView{
		CycleStart:       o.CycleStart,
		CycleEnd:         o.CycleEnd,
		CarryoverEnabled: o.CarryoverEnabled,
		Rows:             rows,
		Summary:          o.Summary,
	}
}

// ValidateAllocations 名称非空且不重复，分配额非负
func ValidateAllocations(rows []scoring.BudgetAllocation) string {
	seen := make(map[string]bool, len(rows))
	for i := range rows {
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		name := rows[i].Name
		if name == "" {
			return "预算分类名称不能为空"
		}
		if seen[name] {
			return "预算分类重复: " + name
		}
		if rows[i].Allocated < 0 {
			return "分配金额不能为负数: " + name
		}
		seen[name] = true
	}
	return ""
}

// replaceBudget 用新的预算行整体替换当前用户的预算
func replaceBudget(tx *gorm.DB, userID uint, rows []scoring.BudgetCategory) ([]models.BudgetCategory, error) {
	if err := tx.Where("user_id = ?", userID).Delete(&models.BudgetCategory{}).Error; err != nil {
		return nil, err
	}
	out := make([]models.BudgetCategory, 0, len(rows))
	for i, r := range rows {
		out = append(out, models.BudgetCategory{
			UserID:    userID,
			Name:      r.Name,
			Allocated: r.Allocated,
			Carryover: r.Carryover,
			Sort:      i,
		})
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := tx.Create(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (h *BudgetHandler) overview(c *gin.Context) (*service.HealthOverview, bool) {
	userID := middleware.GetCurrentUserID(c)
	settings, err := service.LoadSettings(database.DB, userID, h.cfg.Budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询设置失败"))
		return nil, false
	}
	o, err := service.BuildOverview(database.DB, userID, settings, time.Now())
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "计算预算失败"))
		return nil, false
	}
	return o, true
}

// Get 当前周期预算
// @Summary 获取当前周期预算
// @Description 返回每个预算行的分配额、结转、本期支出与剩余额度，以及预算总览
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=BudgetView} "获取成功"
// @Router /api/v1/budget [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	o, ok := h.overview(c)
	if !ok {
		return
	}
	Success(c, NewBudgetView(o))
}

// Replace 替换预算分配
// @Summary 设置预算
// @Description 按名称与顶级支出分类匹配；同名预算行保留已有结转额
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReplaceBudgetRequest true "预算分配"
// @Success 200 {object} Response{data=[]models.BudgetCategory} "保存成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/budget [put]
func (h *BudgetHandler) Replace(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ReplaceBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if msg := ValidateAllocations(req.Budget); msg != "" {
		BadRequest(c, msg)
		return
	}

	var saved []models.BudgetCategory
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var current []models.BudgetCategory
		if err := tx.Where("user_id = ?", userID).Find(&current).Error; err != nil {
			return err
		}
		carry := make(map[string]float64, len(current))
		for _, b := range current {
			carry[b.Name] = b.Carryover
		}
		rows := make([]scoring.BudgetCategory, 0, len(req.Budget))
		for _, a := range req.Budget {
			rows = append(rows, scoring.BudgetCategory{Name: a.Name, Allocated: a.Allocated, Carryover: carry[a.Name]})
		}
		var err error
		saved, err = replaceBudget(tx, userID, rows)
		return err
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "保存预算失败"))
		return
	}

	SuccessWithMessage(c, "保存成功", saved)
}

// errAlreadyRolledOver 同一周期重复结转
var errAlreadyRolledOver = errors.New("上一周期已结转")

// ClosedCycle 当前时间之前最近一个已结束的周期
func ClosedCycle(cycle scoring.BudgetCycle, now time.Time) (time.Time, time.Time) {
	start, _ := scoring.CycleWindow(cycle, now)
	return scoring.CycleWindow(cycle, start.Add(-time.Second))
}

// Rollover 结算上一个已结束的周期并生成本周期预算
// @Summary 预算结转
// @Description 结算上一个已结束的周期，每个周期只能结转一次。开启结转时，同名分类的结转额 = 上期可用额度 - 上期支出（可为负）；开启周期总结邮件时发送上期总结
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RolloverRequest false "本周期预算分配"
// @Success 200 {object} Response{data=[]models.BudgetCategory} "结转成功"
// @Failure 400 {object} Response "请求参数错误或该周期已结转"
// @Router /api/v1/budget/rollover [post]
func (h *BudgetHandler) Rollover(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req RolloverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, SafeErrorMessage(err, "参数错误"))
			return
		}
	}

	settings, err := service.LoadSettings(database.DB, userID, h.cfg.Budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询设置失败"))
		return
	}
	closedStart, closedEnd := ClosedCycle(settings.BudgetCycle(), time.Now())
	if settings.RolledOverThrough != nil && !settings.RolledOverThrough.Before(closedStart) {
		BadRequest(c, errAlreadyRolledOver.Error())
		return
	}
	if settings.ID != 0 && settings.CreatedAt.After(closedEnd) {
		BadRequest(c, "当前周期尚未结束，暂无可结转的周期")
		return
	}

	o, err := service.BuildOverview(database.DB, userID, settings, closedStart)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "计算预算失败"))
		return
	}

	next := req.Budget
	if len(next) == 0 {
		for _, b := range o.Budget {
			next = append(next, scoring.BudgetAllocation{Name: b.Name, Allocated: b.Allocated})
		}
	}
	if msg := ValidateAllocations(next); msg != "" {
		BadRequest(c, msg)
		return
	}

	rows := scoring.RollOver(o.Budget, next, settings.CarryoverEnabled)
	var saved []models.BudgetCategory
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := markRolledOver(tx, &settings, closedStart); err != nil {
			return err
		}
		var err error
		saved, err = replaceBudget(tx, userID, rows)
		return err
	})
	if errors.Is(err, errAlreadyRolledOver) {
		BadRequest(c, err.Error())
		return
	}
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "结转失败"))
		return
	}

	if settings.EmailSummariesEnabled && h.emailService.Enabled() {
		h.sendCycleSummary(userID, o)
	}

	SuccessWithMessage(c, "结转成功", saved)
}

// markRolledOver 条件更新，并发结转时只有一个请求成功
func markRolledOver(tx *gorm.DB, settings *models.UserSettings, cycleStart time.Time) error {
	settings.RolledOverThrough = &cycleStart
	if settings.ID == 0 {
		return tx.Create(settings).Error
	}
	res := tx.Model(&models.UserSettings{}).
		Where("id = ? AND (rolled_over_through IS NULL OR rolled_over_through < ?)", settings.ID, cycleStart).
		Update("rolled_over_through", cycleStart)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errAlreadyRolledOver
	}
	return nil
}

// sendCycleSummary 邮件失败不影响结转结果
func (h *BudgetHandler) sendCycleSummary(userID uint, o *service.HealthOverview) {
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil || user.Email == "" {
		return
	}
	if err := h.emailService.SendCycleSummary(user.Email, user.Username, o); err != nil {
		log.Printf("发送周期总结邮件失败 (user=%d): %v", userID, err)
	}
}
