package api

import (
	"testing"
	"time"

	"budgetly/config"
	"budgetly/scoring"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summarySnapshot() scoring.Snapshot {
	food := "food"
	transport := "transport"
	return scoring.Snapshot{
		Categories: []scoring.Category{
			{ID: food, Name: "餐饮", Type: scoring.TypeExpense},
			{ID: "groceries", Name: "买菜", Type: scoring.TypeExpense, ParentID: &food},
			{ID: transport, Name: "交通", Type: scoring.TypeExpense},
			{ID: "bus", Name: "公共交通", Type: scoring.TypeExpense, ParentID: &transport},
			{ID: "salary", Name: "工资", Type: scoring.TypeIncome},
		},
		Transactions: []scoring.Transaction{
			{ID: "1", Amount: 5000, Category: "salary", Type: scoring.TypeIncome},
			{ID: "2", Amount: 300, Category: "groceries", Type: scoring.TypeExpense},
			{ID: "3", Amount: 200, Category: "food", Type: scoring.TypeExpense},
			{ID: "4", Amount: 700, Category: "bus", Type: scoring.TypeExpense},
			{ID: "5", Amount: 50, Category: "unknown", Type: scoring.TypeExpense},
		},
	}
}

func TestSummarizeTransactions(t *testing.T) {
	s := SummarizeTransactions(summarySnapshot(), "2024-03-01", "2024-03-31")

	assert.Equal(t, 5000.0, s.Income)
	assert.Equal(t, 1250.0, s.Expenses)
	assert.Equal(t, 3750.0, s.Net)
	assert.Equal(t, 75.0, s.SavingsRate)
	assert.Equal(t, 5, s.Count)
	// 无法解析分类的支出计入总额，但不归入任何分类
	assert.Equal(t, []CategorySpending{{Name: "交通", Total: 700}, {Name: "餐饮", Total: 500}}, s.ByCategory)
}

func TestSummarizeTransactions_NoIncome(t *testing.T) {
	s := SummarizeTransactions(scoring.Snapshot{}, "2024-03-01", "2024-03-31")
	assert.Equal(t, 0.0, s.SavingsRate)
	assert.Equal(t, []CategorySpending{}, s.ByCategory)
}

func TestCleanTags(t *testing.T) {
	assert.Equal(t, []string{"周末", "聚餐"}, cleanTags([]string{" 周末 ", "", "  ", "聚餐"}))
	assert.Equal(t, []string{}, cleanTags(nil))
}

func TestTransactionHandler_Create_UnknownCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("nope", 1).
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	w := doJSON(router, "POST", "/transactions", `{"date":"2024-03-02","amount":30,"category":"nope","type":"expense"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "分类不存在", decode(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_TypeMismatch(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("salary", 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("salary", 1, "工资", "income", nil, "#10b981", 10, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	w := doJSON(router, "POST", "/transactions", `{"date":"2024-03-02","amount":30,"category":"salary","type":"expense"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "分类类型与交易类型不一致", decode(t, w)["message"])
}

func TestTransactionHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("groceries", 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("groceries", 1, "买菜", "expense", "food", "#ef4444", 10, now, now, nil))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	w := doJSON(router, "POST", "/transactions", `{"date":"2024-03-02","description":" 超市 ","amount":0,"category":"groceries","type":"expense","tags":["周末",""]}`)
	require.Equal(t, 200, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "超市", data["description"])
	assert.Equal(t, 0.0, data["amount"])
	assert.Equal(t, []interface{}{"周末"}, data["tags"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_NegativeAmount(t *testing.T) {
	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	w := doJSON(router, "POST", "/transactions", `{"date":"2024-03-02","amount":-5,"category":"groceries","type":"expense"}`)
	assert.Equal(t, 400, w.Code)
}

func TestTransactionHandler_Summary_MissingParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions/summary", NewTransactionHandler().Summary)

	w := doJSON(router, "GET", "/transactions/summary?start_time=2024-03-01", "")
	assert.Equal(t, 400, w.Code)
}
