package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budgetly/config"
	"budgetly/scoring"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamedTransactions(t *testing.T) {
	snap := exportSnapshot()
	snap.Transactions = append(snap.Transactions, scoring.Transaction{ID: "3", Category: "gone", Type: scoring.TypeExpense})

	named := NamedTransactions(snap)
	require.Len(t, named, 3)
	assert.Equal(t, "买菜", named[0].Category)
	assert.Equal(t, "工资", named[1].Category)
	// 找不到分类时保留原值
	assert.Equal(t, "gone", named[2].Category)
	// 不修改原快照
	assert.Equal(t, "groceries", snap.Transactions[0].Category)
}

func TestAIInsightHandler_GenerateBudget_FixedCostsExceedIncome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/ai/budget/generate", NewAIInsightHandler(testConfig()).GenerateBudget)

	w := doJSON(router, "POST", "/ai/budget/generate", `{"model_id":1,"income":3000,"fixed_costs":5000}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "固定支出不能超过月收入", decode(t, w)["message"])
}

func TestAIInsightHandler_GenerateBudget(t *testing.T) {
	aiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"budget\":[{\"name\":\"餐饮\",\"allocated\":2000},{\"name\":\"储蓄\",\"allocated\":1600}]}"}}]}`))
	}))
	defer aiServer.Close()

	mock, cleanup := setupMockDB(t)
	defer cleanup()
	cfg := testConfig()
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `ai_models`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "base_url", "api_key", "sort_order", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "gpt-test", aiServer.URL+"/v1/", "sk-test", 0, now, now, nil))
	mock.ExpectQuery("SELECT .* FROM `user_settings`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ai_reports`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/ai/budget/generate", NewAIInsightHandler(cfg).GenerateBudget)

	w := doJSON(router, "POST", "/ai/budget/generate", `{"model_id":1,"income":8000,"fixed_costs":4400}`)
	require.Equal(t, 200, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["report_id"])
	result := data["result"].([]interface{})
	require.Len(t, result, 3)
	first := result[0].(map[string]interface{})
	assert.Equal(t, 4400.0, first["allocated"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAIInsightHandler_ModelNotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `ai_models`").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/ai/health-report", NewAIInsightHandler(testConfig()).HealthReport)

	w := doJSON(router, "POST", "/ai/health-report", `{"model_id":9}`)
	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "AI模型不存在", decode(t, w)["message"])
}
