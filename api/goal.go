package api

import (
	"strings"

	"budgetly/database"
	"budgetly/middleware"
	"budgetly/models"
	"budgetly/scoring"

	"github.com/gin-gonic/gin"
)

// GoalHandler 储蓄目标处理器
type GoalHandler struct{}

func NewGoalHandler() *GoalHandler {
	return &GoalHandler{}
}

// GoalView 目标及完成进度
type GoalView struct {
	models.Goal
	Progress float64 `json:"progress"` // 0-100
}

type GoalCreateRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=100" example:"应急基金"`
	TargetAmount  float64 `json:"target_amount" binding:"required,gt=0" example:"10000"`
	CurrentAmount float64 `json:"current_amount" binding:"gte=0" example:"2000"`
	Emoji         string  `json:"emoji" binding:"max=16" example:"🛟"`
}

type GoalUpdateRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=100"`
	TargetAmount  *float64 `json:"target_amount" binding:"omitempty,gt=0"`
	CurrentAmount *float64 `json:"current_amount" binding:"omitempty,gte=0"`
	Emoji         *string  `json:"emoji" binding:"omitempty,max=16"`
}

// ContributeRequest 向目标存入（负数为取出）
type ContributeRequest struct {
	Amount float64 `json:"amount" binding:"required" example:"500"`
}

func newGoalView(g models.Goal) GoalView {
	return GoalView{Goal: g, Progress: scoring.GoalProgress(g.CurrentAmount, g.TargetAmount)}
}

func (h *GoalHandler) find(c *gin.Context) (*models.Goal, bool) {
	userID := middleware.GetCurrentUserID(c)
	var g models.Goal
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&g).Error; err != nil {
		NotFound(c, "目标不存在")
		return nil, false
	}
	return &g, true
}

// List 目标列表
// @Summary 获取储蓄目标
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]GoalView} "获取成功"
// @Router /api/v1/goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var list []models.Goal
	if err := database.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	views := make([]GoalView, 0, len(list))
	for _, g := range list {
		views = append(views, newGoalView(g))
	}
	Success(c, views)
}

// Create 新建目标
// @Summary 新建储蓄目标
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GoalCreateRequest true "目标信息"
// @Success 200 {object} Response{data=GoalView} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req GoalCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	g := models.Goal{
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Emoji:         req.Emoji,
	}
	if err := database.DB.Create(&g).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", newGoalView(g))
}

// Update 更新目标
// @Summary 更新储蓄目标
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "目标ID"
// @Param request body GoalUpdateRequest true "目标信息"
// @Success 200 {object} Response{data=GoalView} "更新成功"
// @Failure 404 {object} Response "目标不存在"
// @Router /api/v1/goals/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
	g, ok := h.find(c)
	if !ok {
		return
	}

	var req GoalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.Name != nil {
		g.Name = strings.TrimSpace(*req.Name)
	}
	if req.TargetAmount != nil {
		g.TargetAmount = *req.TargetAmount
	}
	if req.CurrentAmount != nil {
		g.CurrentAmount = *req.CurrentAmount
	}
	if req.Emoji != nil {
		g.Emoji = *req.Emoji
	}

	if err := database.DB.Save(g).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", newGoalView(*g))
}

// Contribute 存入或取出
// @Summary 调整目标已存金额
// @Description 已存金额不会低于 0
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "目标ID"
// @Param request body ContributeRequest true "金额"
// @Success 200 {object} Response{data=GoalView} "更新成功"
// @Router /api/v1/goals/{id}/contribute [post]
func (h *GoalHandler) Contribute(c *gin.Context) {
	g, ok := h.find(c)
	if !ok {
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	g.CurrentAmount += req.Amount
	if g.CurrentAmount < 0 {
		g.CurrentAmount = 0
	}

	if err := database.DB.Model(g).Update("current_amount", g.CurrentAmount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", newGoalView(*g))
}

// Delete 删除目标
// @Summary 删除储蓄目标
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Param id path string true "目标ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "目标不存在"
// @Router /api/v1/goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	g, ok := h.find(c)
	if !ok {
		return
	}
	if err := database.DB.Delete(g).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
