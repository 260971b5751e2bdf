package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryColumns() []string {
	return []string{"id", "category_name", "balance", "user_id", "created_at", "updated_at"}
}

func newCategoryRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	h := NewCategoryHandler()
	router.POST("/categories", h.Create)
	router.GET("/categories", h.List)
	router.GET("/categories/balance", h.GetTotalBalance)
	router.GET("/categories/positive", h.GetPositive)
	router.PUT("/categories/transfer", h.Transfer)
	router.GET("/categories/:id", h.Get)
	router.PUT("/categories/:id/fund", h.Fund)
	router.PUT("/categories/:id/spend", h.Spend)
	return router
}

func TestCategoryHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := newCategoryRouter(1)

	body := `{"category_name":"餐饮"}`
	req := httptest.NewRequest("POST", "/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "餐饮", data["category_name"])
	assert.Equal(t, float64(0), data["balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_EmptyName(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newCategoryRouter(1)

	body := `{"category_name":"   "}`
	req := httptest.NewRequest("POST", "/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestCategoryHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "餐饮", 100.0, 1, now, now).
			AddRow(2, "交通", 0.0, 1, now, now))

	router := newCategoryRouter(1)

	req := httptest.NewRequest("GET", "/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	assert.Len(t, data, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 其他用户的分类同样返回无记录
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := newCategoryRouter(1)

	req := httptest.NewRequest("GET", "/categories/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "分类不存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Fund(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(150.0))
	mock.ExpectCommit()

	router := newCategoryRouter(1)

	body := `{"amount":50}`
	req := httptest.NewRequest("PUT", "/categories/10/fund", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "充值成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 150.0, data["balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Fund_InvalidAmount(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newCategoryRouter(1)

	// 金额必须大于 0，校验失败时不应发起任何 SQL
	for _, body := range []string{`{"amount":0}`, `{"amount":-5}`, `{}`} {
		req := httptest.NewRequest("PUT", "/categories/10/fund", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, 400, w.Code, "body: %s", body)
	}
}

func TestCategoryHandler_Spend_InsufficientFunds(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectRollback()

	router := newCategoryRouter(1)

	body := `{"amount":99999}`
	req := httptest.NewRequest("PUT", "/categories/10/spend", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "余额不足", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Spend_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectRollback()

	router := newCategoryRouter(1)

	body := `{"amount":10}`
	req := httptest.NewRequest("PUT", "/categories/999/spend", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Transfer(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `categories` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "餐饮", 120.0, 1, now, now).
			AddRow(2, "交通", 0.0, 1, now, now))
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := newCategoryRouter(1)

	body := `{"from_category_id":1,"to_category_id":2,"amount":120}`
	req := httptest.NewRequest("PUT", "/categories/transfer", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "转账成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 0.0, data["from_balance"])
	assert.Equal(t, 120.0, data["to_balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Transfer_SameCategory(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newCategoryRouter(1)

	body := `{"from_category_id":3,"to_category_id":3,"amount":50}`
	req := httptest.NewRequest("PUT", "/categories/transfer", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestCategoryHandler_GetTotalBalance(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(balance\\), 0\\) FROM `categories`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"COALESCE(SUM(balance), 0)"}).AddRow(1234.56))

	router := newCategoryRouter(1)

	req := httptest.NewRequest("GET", "/categories/balance", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 1234.56, data["total_balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_GetTotalBalance_NoCategories(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 没有分类时 COALESCE 返回 0 而不是 NULL
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(balance\\), 0\\) FROM `categories`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"COALESCE(SUM(balance), 0)"}).AddRow(0.0))

	router := newCategoryRouter(1)

	req := httptest.NewRequest("GET", "/categories/balance", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 0.0, data["total_balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_GetPositive(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "餐饮", 100.0, 1, now, now))

	router := newCategoryRouter(1)

	req := httptest.NewRequest("GET", "/categories/positive", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	require.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "餐饮", first["category_name"])
	require.NoError(t, mock.ExpectationsWereMet())
}
