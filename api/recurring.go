package api

import (
	"strings"
	"time"

	"budgetly/database"
	"budgetly/middleware"
	"budgetly/models"
	"budgetly/scoring"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecurringHandler 周期性账单处理器
type RecurringHandler struct{}

func NewRecurringHandler() *RecurringHandler {
	return &RecurringHandler{}
}

// RecurringView 账单及到期状态
type RecurringView struct {
	models.RecurringPayment
	DueStatus scoring.DueStatus `json:"due_status"`
}

type RecurringCreateRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=100" example:"视频会员"`
	Amount       *float64 `json:"amount" binding:"required,gte=0" example:"25"`
	IsVariable   bool     `json:"is_variable"`
	Category     string   `json:"category" example:"分类ID"`
	BillingCycle string   `json:"billing_cycle" binding:"required,oneof=monthly quarterly annually" example:"monthly"`
	NextDueDate  string   `json:"next_due_date" binding:"required" example:"2024-02-01"`
	IsActive     *bool    `json:"is_active"`
}

type RecurringUpdateRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Amount       *float64 `json:"amount" binding:"omitempty,gte=0"`
	IsVariable   *bool    `json:"is_variable"`
	Category     *string  `json:"category"`
	BillingCycle *string  `json:"billing_cycle" binding:"omitempty,oneof=monthly quarterly annually"`
	NextDueDate  *string  `json:"next_due_date"`
	IsActive     *bool    `json:"is_active"`
}

// AdvanceRequest 标记本期已支付
type AdvanceRequest struct {
	RecordTransaction bool     `json:"record_transaction"` // 同时记一笔支出
	Amount            *float64 `json:"amount" binding:"omitempty,gte=0"` // 浮动金额账单的实际金额
}

func newRecurringView(p models.RecurringPayment, now time.Time) RecurringView {
	return RecurringView{RecurringPayment: p, DueStatus: scoring.GetDueStatus(p.NextDueDate, now)}
}

func checkExpenseCategory(c *gin.Context, userID uint, categoryID string) bool {
	if categoryID == "" {
		return true
	}
	return checkCategory(c, userID, categoryID, models.TransactionExpense)
}

// List 账单列表，按下次到期日升序
// @Summary 获取周期性账单
// @Tags 周期账单
// @Produce json
// @Security BearerAuth
// @Param active query bool false "仅返回启用中的账单"
// @Success 200 {object} Response{data=[]RecurringView} "获取成功"
// @Router /api/v1/recurring-payments [get]
func (h *RecurringHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	var list []models.RecurringPayment
	if err := query.Order("next_due_date ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	now := time.Now()
	views := make([]RecurringView, 0, len(list))
	for _, p := range list {
		views = append(views, newRecurringView(p, now))
	}
	Success(c, views)
}

// Create 新增账单
// @Summary 新增周期性账单
// @Tags 周期账单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecurringCreateRequest true "账单信息"
// @Success 200 {object} Response{data=RecurringView} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/recurring-payments [post]
func (h *RecurringHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req RecurringCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	due, err := parseDate(req.NextDueDate)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}
	if !checkExpenseCategory(c, userID, req.Category) {
		return
	}

	p := models.RecurringPayment{
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		Amount:       *req.Amount,
		IsVariable:   req.IsVariable,
		CategoryID:   req.Category,
		BillingCycle: req.BillingCycle,
		NextDueDate:  due,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if err := database.DB.Create(&p).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", newRecurringView(p, time.Now()))
}

// Update 更新账单
// @Summary 更新周期性账单
// @Tags 周期账单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "账单ID"
// @Param request body RecurringUpdateRequest true "账单信息"
// @Success 200 {object} Response{data=RecurringView} "更新成功"
// @Failure 404 {object} Response "账单不存在"
// @Router /api/v1/recurring-payments/{id} [put]
func (h *RecurringHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var p models.RecurringPayment
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&p).Error; err != nil {
		NotFound(c, "账单不存在")
		return
	}

	var req RecurringUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Amount != nil {
		p.Amount = *req.Amount
	}
	if req.IsVariable != nil {
		p.IsVariable = *req.IsVariable
	}
	if req.Category != nil {
		if !checkExpenseCategory(c, userID, *req.Category) {
			return
		}
		p.CategoryID = *req.Category
	}
	if req.BillingCycle != nil {
		p.BillingCycle = *req.BillingCycle
	}
	if req.NextDueDate != nil {
		due, err := parseDate(*req.NextDueDate)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		p.NextDueDate = due
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&p).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", newRecurringView(p, time.Now()))
}

// Advance 标记已支付并推进到下一个到期日
// @Summary 账单已支付
// @Description 按账单周期推进下次到期日，可选同时记一笔支出（日期为原到期日）
// @Tags 周期账单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "账单ID"
// @Param request body AdvanceRequest false "支付信息"
// @Success 200 {object} Response{data=RecurringView} "已推进"
// @Failure 400 {object} Response "未设置分类"
// @Failure 404 {object} Response "账单不存在"
// @Router /api/v1/recurring-payments/{id}/advance [post]
func (h *RecurringHandler) Advance(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var p models.RecurringPayment
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&p).Error; err != nil {
		NotFound(c, "账单不存在")
		return
	}

	var req AdvanceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, SafeErrorMessage(err, "参数错误"))
			return
		}
	}
	if req.RecordTransaction && p.CategoryID == "" {
		BadRequest(c, "账单未设置分类，无法记账")
		return
	}

	paidOn := p.NextDueDate
	amount := p.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	p.NextDueDate = scoring.NextDueDate(p.NextDueDate, scoring.BillingCycle(p.BillingCycle))

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&p).Update("next_due_date", p.NextDueDate).Error; err != nil {
			return err
		}
		if !req.RecordTransaction {
			return nil
		}
		return tx.Create(&models.Transaction{
			UserID:      userID,
			Date:        paidOn,
			Description: p.Name,
			Amount:      amount,
			CategoryID:  p.CategoryID,
			Type:        models.TransactionExpense,
			Tags:        []string{},
		}).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	SuccessWithMessage(c, "已推进到下一期", newRecurringView(p, time.Now()))
}

// Delete 删除账单
// @Summary 删除周期性账单
// @Tags 周期账单
// @Produce json
// @Security BearerAuth
// @Param id path string true "账单ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "账单不存在"
// @Router /api/v1/recurring-payments/{id} [delete]
func (h *RecurringHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var p models.RecurringPayment
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&p).Error; err != nil {
		NotFound(c, "账单不存在")
		return
	}
	if err := database.DB.Delete(&p).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
