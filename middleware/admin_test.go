package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budgetly/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupAdminMockDB(t *testing.T) sqlmock.Sqlmock {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	t.Cleanup(func() {
		database.DB = oldDB
		sqlDB.Close()
	})
	return mock
}

func userRows(isAdmin bool, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "password", "email", "is_admin", "status", "created_at", "updated_at", "deleted_at"}).
		AddRow(7, "u7", "hash", "u7@example.com", isAdmin, status, time.Now(), time.Now(), nil)
}

func adminRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set("userID", userID)
		}
		c.Next()
	})
	r.Use(AdminOnly())
	r.GET("/admin", func(c *gin.Context) { c.String(200, "ok") })
	return r
}

func TestAdminOnly(t *testing.T) {
	mock := setupAdminMockDB(t)
	mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(userRows(true, "active"))

	w := httptest.NewRecorder()
	adminRouter(7).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminOnly_NotAdmin(t *testing.T) {
	mock := setupAdminMockDB(t)
	mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(userRows(false, "active"))

	w := httptest.NewRecorder()
	adminRouter(7).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminOnly_NoUser(t *testing.T) {
	w := httptest.NewRecorder()
	adminRouter(0).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
