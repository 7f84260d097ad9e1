package api

import (
	"budgetly/config"
	"budgetly/database"
	"budgetly/middleware"
	"budgetly/models"
	"budgetly/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理员工具
type AdminHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewAdminHandler 创建管理员处理器
func NewAdminHandler(cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// TestEmailRequest 测试邮件请求
type TestEmailRequest struct {
	Email string `json:"email" binding:"omitempty,email" example:"admin@example.com"` // 为空时发送到当前管理员邮箱
}

// GetEmailConfig 邮件配置（隐藏账号）
// @Summary 查看邮件配置
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/admin/email-config [get]
func (h *AdminHandler) GetEmailConfig(c *gin.Context) {
	Success(c, gin.H{
		"enabled":  h.cfg.Email.Enabled,
		"host":     h.cfg.Email.Host,
		"port":     h.cfg.Email.Port,
		"username": maskEmail(h.cfg.Email.Username),
	})
}

// SendTestEmail 发送测试邮件
// @Summary 发送测试邮件
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TestEmailRequest false "收件人"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "邮件服务未启用或缺少收件人"
// @Router /api/v1/admin/test-email [post]
func (h *AdminHandler) SendTestEmail(c *gin.Context) {
	if !h.emailService.Enabled() {
		BadRequest(c, "邮件服务未启用")
		return
	}

	var req TestEmailRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "参数错误: "+err.Error())
			return
		}
	}
	to := req.Email
	if to == "" {
		var user models.User
		if err := database.DB.First(&user, middleware.GetCurrentUserID(c)).Error; err != nil {
			NotFound(c, "用户不存在")
			return
		}
		to = user.Email
	}
	if to == "" {
		BadRequest(c, "请提供收件人邮箱")
		return
	}

	if err := h.emailService.SendTestEmail(to); err != nil {
		InternalError(c, SafeErrorMessage(err, "发送失败"))
		return
	}
	SuccessWithMessage(c, "发送成功", nil)
}

// maskEmail 隐藏邮箱中间部分
func maskEmail(email string) string {
	if email == "" {
		return ""
	}
	if len(email) < 5 {
		return "****"
	}
	return email[:2] + "****" + email[len(email)-4:]
}
