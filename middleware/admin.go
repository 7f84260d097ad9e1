package middleware

import (
	"net/http"

	"budgetly/database"
	"budgetly/models"

	"github.com/gin-gonic/gin"
)

// AdminOnly 仅管理员可访问，需在 JWTAuth 之后使用
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetCurrentUserID(c)
		if userID == 0 {
			abortUnauthorized(c, "请先登录")
			return
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			abortUnauthorized(c, "用户不存在")
			return
		}

		if !user.IsAdmin || user.Status != models.UserStatusActive {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    http.StatusForbidden,
				"message": "权限不足",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
