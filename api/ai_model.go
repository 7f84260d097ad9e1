package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"budgetly/config"
	"budgetly/database"
	"budgetly/models"
	"budgetly/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AIModelHandler AI模型管理处理器
type AIModelHandler struct {
	cfg *config.Config
}

// NewAIModelHandler 创建AI模型管理处理器
func NewAIModelHandler(cfg *config.Config) *AIModelHandler {
	return &AIModelHandler{cfg: cfg}
}

// CreateAIModelRequest 创建AI模型请求
type CreateAIModelRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100" example:"gpt-4o-mini"`
	BaseURL string `json:"base_url" binding:"required,url" example:"https://api.openai.com/v1"`
	APIKey  string `json:"api_key" binding:"required,min=1" example:"sk-..."`
}

// UpdateAIModelRequest 更新AI模型请求
type UpdateAIModelRequest struct {
	Name    string `json:"name" binding:"omitempty,min=1,max=100"`
	BaseURL string `json:"base_url" binding:"omitempty,url"`
	APIKey  string `json:"api_key" binding:"omitempty,min=1"`
}

// ReorderAIModelsRequest 排序请求
type ReorderAIModelsRequest struct {
	ModelIDs []uint `json:"model_ids" binding:"required,min=1"` // 按新顺序排列的模型 ID 列表
}

// loadAIModel 读取模型配置（包含密钥），失败时已写入响应
func loadAIModel(c *gin.Context, id uint) (*models.AIModel, bool) {
	var m models.AIModel
	if err := database.DB.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "AI模型不存在")
		} else {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
		}
		return nil, false
	}
	return &m, true
}

// List 获取AI模型列表（不包含 APIKey）
// @Summary 获取AI模型列表
// @Tags AI模型
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.AIModel} "获取成功"
// @Router /api/v1/ai-models [get]
func (h *AIModelHandler) List(c *gin.Context) {
	var list []models.AIModel
	if err := database.DB.Order("sort_order ASC, id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if list == nil {
		list = []models.AIModel{}
	}
	Success(c, list)
}

// Create 创建AI模型配置
// @Summary 创建AI模型
// @Tags 管理-AI模型
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAIModelRequest true "AI模型信息"
// @Success 200 {object} Response{data=models.AIModel} "创建成功"
// @Failure 400 {object} Response "参数错误或模型名称已存在"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/admin/ai-models [post]
func (h *AIModelHandler) Create(c *gin.Context) {
	var req CreateAIModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	var existing models.AIModel
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		BadRequest(c, "模型名称已存在")
		return
	}

	// 新模型排在最后
	var maxOrder int
	database.DB.Model(&models.AIModel{}).Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder)

	m := models.AIModel{
		Name:      req.Name,
		BaseURL:   req.BaseURL,
		APIKey:    req.APIKey,
		SortOrder: maxOrder + 1,
	}
	if err := database.DB.Create(&m).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", m)
}

// Update 更新AI模型配置
// @Summary 更新AI模型
// @Description 未传 api_key 时保留原密钥
// @Tags 管理-AI模型
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "AI模型ID"
// @Param request body UpdateAIModelRequest true "AI模型信息"
// @Success 200 {object} Response{data=models.AIModel} "更新成功"
// @Failure 404 {object} Response "模型不存在"
// @Router /api/v1/admin/ai-models/{id} [put]
func (h *AIModelHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	m, ok := loadAIModel(c, id)
	if !ok {
		return
	}

	var req UpdateAIModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" && name != m.Name {
		var existing models.AIModel
		if err := database.DB.Where("name = ? AND id <> ?", name, m.ID).First(&existing).Error; err == nil {
			BadRequest(c, "模型名称已存在")
			return
		}
		updates["name"] = name
	}
	if req.BaseURL != "" {
		updates["base_url"] = req.BaseURL
	}
	if req.APIKey != "" {
		updates["api_key"] = req.APIKey
	}
	if len(updates) > 0 {
		if err := database.DB.Model(m).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}
	SuccessWithMessage(c, "更新成功", m)
}

// Test 检测AI接口可用性
// @Summary 检测AI接口可用性
// @Description 向AI模型发送轻量测试请求
// @Tags 管理-AI模型
// @Produce json
// @Security BearerAuth
// @Param id path int true "AI模型ID"
// @Success 200 {object} Response "接口可用"
// @Failure 502 {object} Response "接口不可用"
// @Router /api/v1/admin/ai-models/{id}/test [post]
func (h *AIModelHandler) Test(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	m, ok := loadAIModel(c, id)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	client := service.NewAIClient(*m, h.cfg.AI)
	if _, err := client.Complete(ctx, []service.ChatMessage{{Role: "user", Content: "hi"}}, false); err != nil {
		Error(c, 502, SafeErrorMessage(err, "接口不可用"))
		return
	}
	SuccessWithMessage(c, "接口可用", nil)
}

// Reorder 拖拽排序AI模型
// @Summary 排序AI模型
// @Tags 管理-AI模型
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReorderAIModelsRequest true "模型ID顺序"
// @Success 200 {object} Response "排序已保存"
// @Router /api/v1/admin/ai-models/reorder [put]
func (h *AIModelHandler) Reorder(c *gin.Context) {
	var req ReorderAIModelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range req.ModelIDs {
			if err := tx.Model(&models.AIModel{}).Where("id = ?", id).Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		InternalError(c, "排序保存失败")
		return
	}
	SuccessWithMessage(c, "排序已保存", nil)
}

// Delete 删除AI模型配置（软删除）
// @Summary 删除AI模型
// @Tags 管理-AI模型
// @Produce json
// @Security BearerAuth
// @Param id path int true "AI模型ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "模型不存在"
// @Router /api/v1/admin/ai-models/{id} [delete]
func (h *AIModelHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	m, ok := loadAIModel(c, id)
	if !ok {
		return
	}
	if err := database.DB.Delete(m).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
