package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// KeyFunc 限流维度
type KeyFunc func(c *gin.Context) string

// ByClientIP 按客户端 IP 限流
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByUser 按登录用户限流，未登录时退化为 IP
func ByUser(c *gin.Context) string {
	if id := GetCurrentUserID(c); id != 0 {
		return fmt.Sprintf("user:%d", id)
	}
	return c.ClientIP()
}

// slidingWindow 每个 key 在 window 内的请求时间戳
type slidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	store  map[string][]time.Time
}

func (w *slidingWindow) prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// allow 记录一次请求，超过上限返回 false
func (w *slidingWindow) allow(key string, max int, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	ts := w.prune(w.store[key], now.Add(-w.window))
	if len(ts) >= max {
		w.store[key] = ts
		return false
	}
	w.store[key] = append(ts, now)
	return true
}

func (w *slidingWindow) cleanup(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := now.Add(-w.window)
	for key, ts := range w.store {
		if kept := w.prune(ts, cutoff); len(kept) == 0 {
			delete(w.store, key)
		} else {
			w.store[key] = kept
		}
	}
}

// RateLimit 滑动窗口限流：每个 key 在 window 内最多 maxAttempts 次，超过返回 429
func RateLimit(maxAttempts int, window time.Duration, key KeyFunc, message string) gin.HandlerFunc {
	sw := &slidingWindow{window: window, store: make(map[string][]time.Time)}
	// 定期清理过期数据
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			sw.cleanup(now)
		}
	}()

	return func(c *gin.Context) {
		if !sw.allow(key(c), maxAttempts, time.Now()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": message,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRateLimit 登录接口限流，按 IP
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	return RateLimit(maxAttempts, window, ByClientIP, "登录尝试过于频繁，请稍后再试")
}

// AIRateLimit AI 接口限流，按用户
func AIRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	return RateLimit(maxAttempts, window, ByUser, "AI 请求过于频繁，请稍后再试")
}
