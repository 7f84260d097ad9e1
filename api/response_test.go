package api

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Page(c, 25, 2, 10, []string{"a"})
	assert.Equal(t, 200, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 25.0, data["total"])
	assert.Equal(t, 2.0, data["page"])
	assert.Equal(t, 10.0, data["page_size"])
	assert.Equal(t, []interface{}{"a"}, data["list"])
}

func TestErrorHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for code, fn := range map[int]func(*gin.Context, string){
		403: Forbidden,
		429: TooManyRequests,
		502: BadGateway,
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		fn(c, "失败")
		assert.Equal(t, code, w.Code)
		resp := decode(t, w)
		assert.Equal(t, float64(code), resp["code"])
		assert.Equal(t, "失败", resp["message"])
		assert.NotContains(t, resp, "data")
	}
}
