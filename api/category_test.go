package api

import (
	"testing"
	"time"

	"budgetly/config"
	"budgetly/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryColumns = []string{"id", "user_id", "name", "type", "parent_id", "color", "sort", "created_at", "updated_at", "deleted_at"}

func strPtr(s string) *string { return &s }

func TestBuildCategoryTree(t *testing.T) {
	list := []models.Category{
		{ID: "food", Name: "餐饮", Type: "expense"},
		{ID: "groceries", Name: "买菜", Type: "expense", ParentID: strPtr("food")},
		{ID: "salary", Name: "工资", Type: "income"},
		{ID: "orphan", Name: "悬空", Type: "expense", ParentID: strPtr("missing")},
		{ID: "deep", Name: "三级", Type: "expense", ParentID: strPtr("groceries")},
	}

	tree := BuildCategoryTree(list)
	require.Len(t, tree, 2)
	assert.Equal(t, "餐饮", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "买菜", tree[0].Children[0].Name)
	assert.Equal(t, "工资", tree[1].Name)
	assert.NotNil(t, tree[1].Children)
	assert.Empty(t, tree[1].Children)

	assert.Equal(t, []CategoryNode{}, BuildCategoryTree(nil))
}

func TestCategoryHandler_Create_ParentMustBeTopLevel(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("groceries", 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("groceries", 1, "买菜", "expense", "food", "#ef4444", 10, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/categories", NewCategoryHandler().Create)

	w := doJSON(router, "POST", "/categories", `{"name":"有机蔬菜","type":"expense","parent_id":"groceries"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "分类最多两级，父分类必须是顶级分类", decode(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_TypeMismatch(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("food", 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("food", 1, "餐饮", "expense", nil, "#ef4444", 10, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/categories", NewCategoryHandler().Create)

	w := doJSON(router, "POST", "/categories", `{"name":"奖金","type":"income","parent_id":"food"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "子分类类型必须与父分类一致", decode(t, w)["message"])
}

func TestCategoryHandler_Create_DuplicateTopLevel(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1, "餐饮", "expense").
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("food", 1, "餐饮", "expense", nil, "#ef4444", 10, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/categories", NewCategoryHandler().Create)

	w := doJSON(router, "POST", "/categories", `{"name":" 餐饮 ","type":"expense"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "分类名称已存在", decode(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_ChildInheritsColor(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("food", 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("food", 1, "餐饮", "expense", nil, "#ef4444", 10, now, now, nil))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/categories", NewCategoryHandler().Create)

	w := doJSON(router, "POST", "/categories", `{"name":"咖啡","type":"expense","parent_id":"food"}`)
	require.Equal(t, 200, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "#ef4444", data["color"])
	assert.Equal(t, "food", data["parent_id"])
	assert.NotEmpty(t, data["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Update_RenameSyncsBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("food", 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("food", 1, "餐饮", "expense", nil, "#ef4444", 10, now, now, nil))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WithArgs(1, "吃饭", "expense", "food").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `budget_categories`").
		WithArgs(1, "吃饭").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `budget_categories` SET `name`=").
		WithArgs("吃饭", sqlmock.AnyArg(), 1, "餐饮").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/categories/:id", NewCategoryHandler().Update)

	w := doJSON(router, "PUT", "/categories/food", `{"name":"吃饭"}`)
	require.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Update_RenameToExistingName(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("food", 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("food", 1, "餐饮", "expense", nil, "#ef4444", 10, now, now, nil))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WithArgs(1, "交通", "expense", "food").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/categories/:id", NewCategoryHandler().Update)

	w := doJSON(router, "PUT", "/categories/food", `{"name":"交通"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "分类名称已存在", decode(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Update_RenameToExistingBudgetRow(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("food", 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("food", 1, "餐饮", "expense", nil, "#ef4444", 10, now, now, nil))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WithArgs(1, "旅行", "expense", "food").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `budget_categories`").
		WithArgs(1, "旅行").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/categories/:id", NewCategoryHandler().Update)

	w := doJSON(router, "PUT", "/categories/food", `{"name":"旅行"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "预算中已存在同名分类", decode(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Update_ChildRenameSkipsBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("groceries", 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("groceries", 1, "买菜", "expense", "food", "#ef4444", 10, now, now, nil))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/categories/:id", NewCategoryHandler().Update)

	w := doJSON(router, "PUT", "/categories/groceries", `{"name":"生鲜"}`)
	require.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
