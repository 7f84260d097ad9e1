package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoginRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 短窗口 200ms，最多 2 次
	router := gin.New()
	router.Use(LoginRateLimit(2, 200*time.Millisecond))
	router.POST("/login", func(c *gin.Context) {
		c.String(200, "ok")
	})

	doReq := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/login", nil)
		req.Header.Set("X-Real-IP", ip)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, 200, doReq("192.168.1.1").Code)
	assert.Equal(t, 200, doReq("192.168.1.1").Code)
	w3 := doReq("192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w3.Code)
	assert.Contains(t, w3.Body.String(), "频繁")

	// 不同 IP 互不影响
	assert.Equal(t, 200, doReq("192.168.1.2").Code)
	assert.Equal(t, 200, doReq("192.168.1.2").Code)

	// 窗口过后恢复
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 200, doReq("192.168.1.1").Code)
}

func TestAIRateLimit_ByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var userID uint
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	router.Use(AIRateLimit(1, time.Minute))
	router.POST("/ai", func(c *gin.Context) {
		c.String(200, "ok")
	})

	doReq := func(id uint) int {
		userID = id
		req := httptest.NewRequest("POST", "/ai", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, 200, doReq(1))
	assert.Equal(t, http.StatusTooManyRequests, doReq(1))
	// 同一 IP 的其他用户不受影响
	assert.Equal(t, 200, doReq(2))
}

func TestSlidingWindow_Cleanup(t *testing.T) {
	sw := &slidingWindow{window: time.Second, store: make(map[string][]time.Time)}
	now := time.Now()
	assert.True(t, sw.allow("a", 1, now))
	sw.cleanup(now.Add(2 * time.Second))
	assert.Empty(t, sw.store)
}
