package api

import (
	"errors"
	"strings"

	"budgetly/database"
	"budgetly/middleware"
	"budgetly/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler 收支分类管理（最多两级）
type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoryNode 顶级分类及其子分类
type CategoryNode struct {
	models.Category
	Children []models.Category `json:"children"`
}

type CategoryCreateRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=50" example:"餐饮"`
	Type     string  `json:"type" binding:"required,oneof=income expense" example:"expense"`
	ParentID *string `json:"parent_id" example:""`
	Color    string  `json:"color" binding:"omitempty,max=20" example:"#ef4444"`
	Sort     int     `json:"sort"`
}

type CategoryUpdateRequest struct {
	Name  string  `json:"name" binding:"omitempty,min=1,max=50"`
	Color *string `json:"color" binding:"omitempty,max=20"`
	Sort  *int    `json:"sort"`
}

// BuildCategoryTree 按顶级分类分组，父分类不存在或层级超过两级的子分类不展示
func BuildCategoryTree(list []models.Category) []CategoryNode {
	index := make(map[string]int)
	var tree []CategoryNode
	for _, cat := range list {
		if cat.ParentID == nil {
			index[cat.ID] = len(tree)
			tree = append(tree, CategoryNode{Category: cat, Children: []models.Category{}})
		}
	}
	for _, cat := range list {
		if cat.ParentID == nil {
			continue
		}
		if i, ok := index[*cat.ParentID]; ok {
			tree[i].Children = append(tree[i].Children, cat)
		}
	}
	if tree == nil {
		tree = []CategoryNode{}
	}
	return tree
}

// List 分类树
// @Summary 获取分类树
// @Description 返回当前用户的顶级分类及其子分类，可按收支类型筛选
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param type query string false "income / expense"
// @Success 200 {object} Response{data=[]CategoryNode} "获取成功"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if typ := c.Query("type"); typ != "" {
		if !models.IsValidTransactionType(typ) {
			BadRequest(c, "无效的分类类型")
			return
		}
		query = query.Where("type = ?", typ)
	}

	var list []models.Category
	if err := query.Order("sort ASC, name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, BuildCategoryTree(list))
}

// Create 创建分类
// @Summary 创建分类
// @Description 父分类必须是同类型的顶级分类；同类型的顶级分类名称不可重复（预算按名称匹配）
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryCreateRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	cat := models.Category{
		UserID: userID,
		Name:   req.Name,
		Type:   req.Type,
		Color:  req.Color,
		Sort:   req.Sort,
	}

	if req.ParentID != nil && *req.ParentID != "" {
		var parent models.Category
		if err := database.DB.Where("id = ? AND user_id = ?", *req.ParentID, userID).First(&parent).Error; err != nil {
			BadRequest(c, "父分类不存在")
			return
		}
		if parent.ParentID != nil {
			BadRequest(c, "分类最多两级，父分类必须是顶级分类")
			return
		}
		if parent.Type != req.Type {
			BadRequest(c, "子分类类型必须与父分类一致")
			return
		}
		pid := parent.ID
		cat.ParentID = &pid
		if cat.Color == "" {
			cat.Color = parent.Color
		}
	} else {
		var existing models.Category
		err := database.DB.Where("user_id = ? AND name = ? AND type = ? AND parent_id IS NULL", userID, req.Name, req.Type).
			First(&existing).Error
		if err == nil {
			BadRequest(c, "分类名称已存在")
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		}
	}
	if cat.Color == "" {
		cat.Color = "#64748b"
	}

	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", cat)
}

// Update 更新分类
// @Summary 更新分类
// @Description 重命名顶级支出分类时同步更新同名预算行
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Param request body CategoryUpdateRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var cat models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&cat).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	var req CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	oldName := cat.Name
	newName := strings.TrimSpace(req.Name)
	if newName != "" && newName != oldName {
		updates["name"] = newName
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Sort != nil {
		updates["sort"] = *req.Sort
	}
	if len(updates) == 0 {
		Success(c, cat)
		return
	}
	if _, renamed := updates["name"]; renamed && cat.ParentID == nil {
		if msg, err := renameConflict(userID, cat, newName); err != nil {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		} else if msg != "" {
			BadRequest(c, msg)
			return
		}
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&cat).Updates(updates).Error; err != nil {
			return err
		}
		if _, renamed := updates["name"]; renamed && cat.ParentID == nil && cat.Type == models.TransactionExpense {
			return tx.Model(&models.BudgetCategory{}).
				Where("user_id = ? AND name = ?", userID, oldName).
				Update("name", newName).Error
		}
		return nil
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", cat)
}

// renameConflict 顶级分类改名后不能与同类型顶级分类或已有预算行重名
func renameConflict(userID uint, cat models.Category, newName string) (string, error) {
	var n int64
	if err := database.DB.Model(&models.Category{}).
		Where("user_id = ? AND name = ? AND type = ? AND parent_id IS NULL AND id <> ?", userID, newName, cat.Type, cat.ID).
		Count(&n).Error; err != nil {
		return "", err
	}
	if n > 0 {
		return "分类名称已存在", nil
	}
	if cat.Type != models.TransactionExpense {
		return "", nil
	}
	if err := database.DB.Model(&models.BudgetCategory{}).
		Where("user_id = ? AND name = ?", userID, newName).
		Count(&n).Error; err != nil {
		return "", err
	}
	if n > 0 {
		return "预算中已存在同名分类", nil
	}
	return "", nil
}

// Delete 删除分类
// @Summary 删除分类
// @Description 存在子分类时不可删除；已有交易保留原分类ID，评分时视为未归类
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "存在子分类"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var cat models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&cat).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	var children int64
	if err := database.DB.Model(&models.Category{}).Where("user_id = ? AND parent_id = ?", userID, cat.ID).Count(&children).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if children > 0 {
		BadRequest(c, "请先删除该分类下的子分类")
		return
	}

	if err := database.DB.Delete(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
