package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExportRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	h := NewExportHandler()
	router.GET("/export/csv", h.ExportCSV)
	router.GET("/export/excel", h.ExportExcel)
	return router
}

func TestExportHandler_ExportCSV(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows(expenseColumns()).
			AddRow(1, "午餐", 99.99, "餐饮", 1, now, now, now, nil).
			AddRow(2, "打车", 23.50, "交通", 1, now, now, now, nil))

	router := newExportRouter(1)

	req := httptest.NewRequest("GET", "/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	body := w.Body.String()
	// BOM 开头，保证 Excel 打开时中文不乱码
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	assert.Contains(t, body, "午餐")
	assert.Contains(t, body, "99.99")
	assert.Contains(t, body, "打车")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportCSV_TimeRange(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows(expenseColumns()).
			AddRow(1, "午餐", 99.99, "餐饮", 1, now, now, now, nil))

	router := newExportRouter(1)

	req := httptest.NewRequest("GET", "/export/csv?start_time=2024-01-01&end_time=2024-12-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportCSV_InvalidTime(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newExportRouter(1)

	req := httptest.NewRequest("GET", "/export/csv?start_time=not-a-date", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "开始时间格式错误")
}

func TestExportHandler_ExportExcel(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows(expenseColumns()).
			AddRow(1, "午餐", 99.99, "餐饮", 1, now, now, now, nil))

	router := newExportRouter(1)

	req := httptest.NewRequest("GET", "/export/excel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx 本质是 zip，以 PK 开头
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
	require.NoError(t, mock.ExpectationsWereMet())
}
