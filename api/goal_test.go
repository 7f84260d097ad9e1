package api

import (
	"testing"
	"time"

	"budgetly/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goalColumns = []string{"id", "user_id", "name", "target_amount", "current_amount", "emoji", "created_at", "updated_at", "deleted_at"}

func TestNewGoalView(t *testing.T) {
	assert.Equal(t, 25.0, newGoalView(models.Goal{TargetAmount: 4000, CurrentAmount: 1000}).Progress)
	assert.Equal(t, 100.0, newGoalView(models.Goal{TargetAmount: 100, CurrentAmount: 150}).Progress)
}

func TestGoalHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `goals`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(goalColumns).
			AddRow("g1", 1, "应急基金", 10000.0, 2500.0, "🛟", now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/goals", NewGoalHandler().List)

	w := doJSON(router, "GET", "/goals", "")
	require.Equal(t, 200, w.Code)
	list := decode(t, w)["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, 25.0, list[0].(map[string]interface{})["progress"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Contribute_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `goals`").
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/goals/:id/contribute", NewGoalHandler().Contribute)

	w := doJSON(router, "POST", "/goals/missing/contribute", `{"amount":100}`)
	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "目标不存在", decode(t, w)["message"])
}
