package router

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"budgetly/config"
	"budgetly/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouterConfig() *config.Config {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: "router-secret", ExpireTime: time.Hour},
	}
	middleware.InitJWT(cfg)
	return cfg
}

func TestHealthEndpoint(t *testing.T) {
	r := SetupRouter(testRouterConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r := SetupRouter(testRouterConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/api/v1/transactions", nil))
	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := SetupRouter(testRouterConfig())

	for _, path := range []string{"/api/v1/health-score", "/api/v1/budget", "/api/v1/export/csv", "/api/v1/ai/reports"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, 401, w.Code, path)
	}
}

func TestSwaggerDoc(t *testing.T) {
	r := SetupRouter(testRouterConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/doc.json", nil))
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Budgetly")

	var doc struct {
		Paths       map[string]map[string]interface{} `json:"paths"`
		Definitions map[string]interface{}            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc.Paths, "/api/v1/health-score")
	assert.Contains(t, doc.Paths["/api/v1/budget/rollover"], "post")
	assert.Contains(t, doc.Paths["/api/v1/categories/{id}"], "put")
	assert.Contains(t, doc.Definitions, "service.HealthOverview")
}
