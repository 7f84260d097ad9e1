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

var recurringColumns = []string{"id", "user_id", "name", "amount", "is_variable", "category_id", "billing_cycle", "next_due_date", "is_active", "created_at", "updated_at", "deleted_at"}

func TestNewRecurringView(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)
	v := newRecurringView(models.RecurringPayment{NextDueDate: time.Date(2024, 5, 13, 0, 0, 0, 0, time.Local)}, now)
	assert.Equal(t, 3, v.DueStatus.Days)
	assert.Equal(t, "3 天后到期", v.DueStatus.Text)
}

func TestRecurringHandler_Advance_RecordsTransaction(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	due := time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local)
	mock.ExpectQuery("SELECT .* FROM `recurring_payments`").
		WithArgs("r1", 1).
		WillReturnRows(sqlmock.NewRows(recurringColumns).
			AddRow("r1", 1, "视频会员", 25.0, false, "subs", "monthly", due, true, now, now, nil))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `recurring_payments`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/recurring-payments/:id/advance", NewRecurringHandler().Advance)

	w := doJSON(router, "POST", "/recurring-payments/r1/advance", `{"record_transaction":true}`)
	require.Equal(t, 200, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	next, err := time.Parse(time.RFC3339, data["next_due_date"].(string))
	require.NoError(t, err)
	// 月末日期截断到 2 月最后一天
	assert.Equal(t, 29, next.Day())
	assert.Equal(t, time.February, next.Month())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringHandler_Advance_RequiresCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `recurring_payments`").
		WithArgs("r2", 1).
		WillReturnRows(sqlmock.NewRows(recurringColumns).
			AddRow("r2", 1, "电费", 0.0, true, "", "monthly", now, true, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/recurring-payments/:id/advance", NewRecurringHandler().Advance)

	w := doJSON(router, "POST", "/recurring-payments/r2/advance", `{"record_transaction":true,"amount":180}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "账单未设置分类，无法记账", decode(t, w)["message"])
}
