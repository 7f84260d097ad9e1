package api

import (
	"sort"
	"strings"
	"time"

	"budgetly/database"
	"budgetly/middleware"
	"budgetly/models"
	"budgetly/scoring"
	"budgetly/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 交易记录处理器（收入与支出）
type TransactionHandler struct{}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionRequest 创建交易请求
type CreateTransactionRequest struct {
	Date        string   `json:"date" binding:"required" example:"2024-01-15"`
	Description string   `json:"description" binding:"max=255" example:"午餐"`
	Amount      *float64 `json:"amount" binding:"required,gte=0" example:"35.5"`
	Category    string   `json:"category" binding:"required" example:"分类ID"`
	Type        string   `json:"type" binding:"required,oneof=income expense" example:"expense"`
	Account     string   `json:"account" binding:"max=50" example:"现金"`
	Tags        []string `json:"tags"`
}

// UpdateTransactionRequest 更新交易请求，未传字段保持不变
type UpdateTransactionRequest struct {
	Date        *string   `json:"date" example:"2024-01-15"`
	Description *string   `json:"description" binding:"omitempty,max=255"`
	Amount      *float64  `json:"amount" binding:"omitempty,gte=0"`
	Category    *string   `json:"category"`
	Type        *string   `json:"type" binding:"omitempty,oneof=income expense"`
	Account     *string   `json:"account" binding:"omitempty,max=50"`
	Tags        *[]string `json:"tags"`
}

// CategorySpending 按顶级分类汇总的支出
type CategorySpending struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// TransactionSummary 区间收支汇总
type TransactionSummary struct {
	StartTime   string             `json:"start_time"`
	EndTime     string             `json:"end_time"`
	Income      float64            `json:"income"`
	Expenses    float64            `json:"expenses"`
	Net         float64            `json:"net"`
	SavingsRate float64            `json:"savings_rate"` // 百分比，收入为 0 时为 0
	Count       int                `json:"count"`
	ByCategory  []CategorySpending `json:"by_category"`
}

// checkCategory 分类须属于当前用户且收支类型一致
func checkCategory(c *gin.Context, userID uint, categoryID, typ string) bool {
	var cat models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", categoryID, userID).First(&cat).Error; err != nil {
		BadRequest(c, "分类不存在")
		return false
	}
	if cat.Type != typ {
		BadRequest(c, "分类类型与交易类型不一致")
		return false
	}
	return true
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Create 创建交易
// @Summary 创建交易
// @Description 金额恒为非负数，收支方向由 type 决定
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}
	if !checkCategory(c, userID, req.Category, req.Type) {
		return
	}

	tx := models.Transaction{
		UserID:      userID,
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		Amount:      *req.Amount,
		CategoryID:  req.Category,
		Type:        req.Type,
		Account:     strings.TrimSpace(req.Account),
		Tags:        cleanTags(req.Tags),
	}
	if err := database.DB.Create(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", tx)
}

// List 交易列表
// @Summary 获取交易列表
// @Description 分页查询，支持按类型、分类（顶级分类包含其子分类）和日期筛选
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param type query string false "income / expense"
// @Param category query string false "分类ID"
// @Param start_time query string false "开始日期 (2024-01-01)"
// @Param end_time query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePage(c)

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if typ := c.Query("type"); typ != "" {
		if !models.IsValidTransactionType(typ) {
			BadRequest(c, "无效的交易类型")
			return
		}
		query = query.Where("type = ?", typ)
	}
	if categoryID := c.Query("category"); categoryID != "" {
		children := database.DB.Model(&models.Category{}).Select("id").
			Where("user_id = ? AND parent_id = ?", userID, categoryID)
		query = query.Where("(category_id = ? OR category_id IN (?))", categoryID, children)
	}
	if s := c.Query("start_time"); s != "" {
		if start, err := parseDate(s); err == nil {
			query = query.Where("date >= ?", start)
		}
	}
	if s := c.Query("end_time"); s != "" {
		if end, err := parseDate(s); err == nil {
			query = query.Where("date <= ?", end.Add(24*time.Hour-time.Second))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var list []models.Transaction
	offset := (page - 1) * pageSize
	if err := query.Order("date DESC, created_at DESC").Offset(offset).Limit(pageSize).Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if list == nil {
		list = []models.Transaction{}
	}

	Page(c, total, page, pageSize, list)
}

// Get 获取单条交易
// @Summary 获取单条交易
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path string true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	Success(c, tx)
}

// Update 更新交易
// @Summary 更新交易
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "交易ID"
// @Param request body UpdateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		tx.Date = date
	}
	if req.Description != nil {
		tx.Description = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		tx.Amount = *req.Amount
	}
	if req.Type != nil {
		tx.Type = *req.Type
	}
	if req.Category != nil {
		tx.CategoryID = *req.Category
	}
	if req.Account != nil {
		tx.Account = strings.TrimSpace(*req.Account)
	}
	if req.Tags != nil {
		tx.Tags = cleanTags(*req.Tags)
	}
	// 类型或分类变化时重新校验归属
	if req.Type != nil || req.Category != nil {
		if !checkCategory(c, userID, tx.CategoryID, tx.Type) {
			return
		}
	}

	if err := database.DB.Save(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", tx)
}

// Delete 删除交易
// @Summary 删除交易
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path string true "交易ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if err := database.DB.Delete(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Summary 区间收支汇总
// @Summary 收支汇总
// @Description 统计区间内的收入、支出、储蓄率，以及按顶级分类汇总的支出
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param start_time query string true "开始日期 (2024-01-01)"
// @Param end_time query string true "结束日期 (2024-01-31)"
// @Success 200 {object} Response{data=TransactionSummary} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/transactions/summary [get]
func (h *TransactionHandler) Summary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startStr, endStr := c.Query("start_time"), c.Query("end_time")
	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始时间和结束时间")
		return
	}
	start, end, err := parseDateRange(startStr, endStr)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	snap, err := service.LoadSnapshot(database.DB, userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, SummarizeTransactions(snap, startStr, endStr))
}

// SummarizeTransactions 由快照计算收支汇总，分类按支出降序
func SummarizeTransactions(snap scoring.Snapshot, startStr, endStr string) TransactionSummary {
	income, expenses := scoring.Totals(snap.Transactions)
	spending := scoring.AggregateSpending(snap.Transactions, scoring.BuildCategoryLookup(snap.Categories))

	byCategory := make([]CategorySpending, 0, len(spending))
	for name, total := range spending {
		byCategory = append(byCategory, CategorySpending{Name: name, Total: total})
	}
	sort.Slice(byCategory, func(i, j int) bool {
		if byCategory[i].Total != byCategory[j].Total {
			return byCategory[i].Total > byCategory[j].Total
		}
		return byCategory[i].Name < byCategory[j].Name
	})

	s := TransactionSummary{
		StartTime:  startStr,
		EndTime:    endStr,
		Income:     income,
		Expenses:   expenses,
		Net:        income - expenses,
		Count:      len(snap.Transactions),
		ByCategory: byCategory,
	}
	if income > 0 {
		s.SavingsRate = (income - expenses) / income * 100
	}
	return s
}
