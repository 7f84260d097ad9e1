package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"budgetly/config"
	"budgetly/database"
	"budgetly/middleware"
	"budgetly/models"
	"budgetly/service"

	"github.com/gin-gonic/gin"
)

const chatSystemPrompt = "你是一个专业、友好、简洁的个人财务助手。请用中文回答。"

type sseChatFrame struct {
	Type    string `json:"type"`              // delta | done | error
	Content string `json:"content,omitempty"` // delta内容或错误信息
}

func writeSSEJSON(c *gin.Context, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = c.Writer.WriteString("data: " + string(b) + "\n\n")
	c.Writer.Flush()
}

// AIChatHandler AI聊天处理器
type AIChatHandler struct {
	cfg *config.Config
}

func NewAIChatHandler(cfg *config.Config) *AIChatHandler {
	return &AIChatHandler{cfg: cfg}
}

// AIChatRequest AI聊天请求
type AIChatRequest struct {
	ModelID        uint   `json:"model_id" binding:"required"`
	Message        string `json:"message" binding:"required,min=1"`
	IncludeContext bool   `json:"include_context"` // 附带本周期评分与预算
}

// chatContext 本周期评分摘要及周期起始日，读取失败时返回空串
func (h *AIChatHandler) chatContext(userID uint) (string, *time.Time) {
	settings, err := service.LoadSettings(database.DB, userID, h.cfg.Budget)
	if err != nil {
		return "", nil
	}
	o, err := service.BuildOverview(database.DB, userID, settings, time.Now())
	if err != nil {
		return "", nil
	}
	summary := struct {
		Currency string      `json:"currency"`
		Score    interface{} `json:"score"`
		Budget   interface{} `json:"budget"`
	}{settings.Currency, o.Score, o.Budget}
	b, err := json.Marshal(summary)
	if err != nil {
		return "", nil
	}
	start := o.CycleStart
	return fmt.Sprintf("用户本周期（%s 至 %s）的财务数据：%s",
		o.CycleStart.Format(dateLayout), o.CycleEnd.Format(dateLayout), string(b)), &start
}

// ChatStream AI聊天（SSE流式返回），正常结束后写入聊天记录
// @Summary AI聊天（流式）
// @Description SSE流式返回JSON帧（delta/done/error）。客户端中途断开时不保存记录。
// @Tags AI聊天
// @Accept json
// @Produce text/event-stream
// @Security BearerAuth
// @Param request body AIChatRequest true "聊天请求"
// @Success 200 {string} string "SSE流：data: {\"type\":\"delta\",\"content\":\"...\"}"
// @Failure 400 {object} Response "参数错误"
// @Failure 404 {object} Response "AI模型不存在"
// @Router /api/v1/ai/chat [post]
func (h *AIChatHandler) ChatStream(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req AIChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	m, ok := loadAIModel(c, req.ModelID)
	if !ok {
		return
	}

	messages := []service.ChatMessage{{Role: "system", Content: chatSystemPrompt}}
	var cycleStart *time.Time
	if req.IncludeContext {
		var ctxText string
		if ctxText, cycleStart = h.chatContext(userID); ctxText != "" {
			messages = append(messages, service.ChatMessage{Role: "system", Content: ctxText})
		}
	}
	messages = append(messages, service.ChatMessage{Role: "user", Content: req.Message})

	// SSE响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	client := service.NewAIClient(*m, h.cfg.AI)
	text, err := client.Stream(ctx, messages, func(delta string) {
		writeSSEJSON(c, sseChatFrame{Type: "delta", Content: delta})
	})
	if err != nil {
		// 客户端断开：不落库，避免保存半截内容
		if ctx.Err() != nil {
			return
		}
		writeSSEJSON(c, sseChatFrame{Type: "error", Content: SafeErrorMessage(err, "AI服务暂时不可用")})
		writeSSEJSON(c, sseChatFrame{Type: "done"})
		return
	}

	msg := models.AIChatMessage{
		AIModelID:  req.ModelID,
		UserID:     userID,
		Question:   req.Message,
		Answer:     text,
		CycleStart: cycleStart,
	}
	_ = database.DB.Create(&msg).Error
	writeSSEJSON(c, sseChatFrame{Type: "done"})
}

// History 聊天记录，按用户+模型分页
// @Summary AI聊天记录
// @Tags AI聊天
// @Produce json
// @Security BearerAuth
// @Param model_id query int true "AI模型ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.AIChatMessage}} "获取成功"
// @Failure 400 {object} Response "缺少 model_id"
// @Router /api/v1/ai/chat/history [get]
func (h *AIChatHandler) History(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	modelID, err := strconv.ParseUint(c.Query("model_id"), 10, 32)
	if err != nil || modelID == 0 {
		BadRequest(c, "无效的 model_id")
		return
	}
	page, pageSize := parsePage(c)

	query := database.DB.Model(&models.AIChatMessage{}).Where("user_id = ? AND ai_model_id = ?", userID, modelID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var list []models.AIChatMessage
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if list == nil {
		list = []models.AIChatMessage{}
	}
	Page(c, total, page, pageSize, list)
}

// DeleteMessage 删除一条聊天记录
// @Summary 删除聊天记录
// @Tags AI聊天
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/ai/chat/history/{id} [delete]
func (h *AIChatHandler) DeleteMessage(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	result := database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.AIChatMessage{})
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
