package api

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "", maskEmail(""))
	assert.Equal(t, "****", maskEmail("a@b"))
	assert.Equal(t, "no****.com", maskEmail("noreply@example.com"))
}

func TestAdminHandler_SendTestEmail_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/admin/test-email", NewAdminHandler(testConfig()).SendTestEmail)

	w := doJSON(router, "POST", "/admin/test-email", `{"email":"a@example.com"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "邮件服务未启用", decode(t, w)["message"])
}
