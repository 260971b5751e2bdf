package api

import (
	"strconv"
	"strings"
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
)

// recentExpenseLimit 最近消费记录的固定条数
const recentExpenseLimit = 5

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct{}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{}
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	Description string  `json:"description" binding:"required,max=255" example:"午餐"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"99.99"`
	Category    string  `json:"category" binding:"required,max=255" example:"餐饮"`
}

// UpdateExpenseRequest 更新消费记录请求（整体替换三个可变字段）
type UpdateExpenseRequest struct {
	Description string  `json:"description" binding:"required,max=255" example:"晚餐"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"59.99"`
	Category    string  `json:"category" binding:"required,max=255" example:"餐饮"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Page     int    `form:"page" example:"1"`
	PageSize int    `form:"page_size" example:"10"`
	Category string `form:"category" example:"餐饮"`
}

// TotalExpensesResponse 消费总额响应
type TotalExpensesResponse struct {
	TotalExpenses float64 `json:"total_expenses" example:"321.50"`
}

// CategorySummary 按分类汇总的一行
type CategorySummary struct {
	Category   string  `json:"category" example:"餐饮"`
	TotalSpent float64 `json:"total_spent" example:"123.45"`
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 创建一条新的消费记录，消费时间由服务端赋值。分类是自由文本标签，不要求对应已存在的预算分类。
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		BadRequest(c, "分类不能为空")
		return
	}

	expense := models.Expense{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		UserID:      userID,
		Date:        time.Now(),
	}

	if err := database.DB.Create(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建消费记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", expense)
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 获取当前用户的消费记录列表，支持分页和按分类筛选
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category query string false "分类筛选"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Expense}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	var total int64
	query.Count(&total)

	var expenses []models.Expense
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("date DESC").Offset(offset).Limit(req.PageSize).Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     expenses,
	})
}

// Get 获取单条消费记录
// @Summary 获取单条消费记录
// @Description 根据ID获取消费记录详情，其他用户的记录视为不存在
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, expense)
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 整体替换消费记录的描述、金额和分类。记录不存在（或属于其他用户）返回 404。
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Param request body UpdateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		BadRequest(c, "分类不能为空")
		return
	}

	updates := map[string]interface{}{
		"description": req.Description,
		"amount":      req.Amount,
		"category":    req.Category,
	}
	if err := database.DB.Model(&expense).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&expense, expense.ID)
	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Description 删除指定的消费记录。记录不存在（或属于其他用户）返回 404。
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// Search 按描述搜索消费记录
// @Summary 搜索消费记录
// @Description 按描述子串搜索当前用户的消费记录（LIKE 匹配）
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param query path string true "搜索关键词"
// @Success 200 {object} Response{data=[]models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/search/{query} [get]
func (h *ExpenseHandler) Search(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	keyword := c.Param("query")

	var expenses []models.Expense
	if err := database.DB.
		Where("user_id = ? AND description LIKE ?", userID, "%"+keyword+"%").
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, expenses)
}

// Recent 获取最近消费记录
// @Summary 获取最近消费记录
// @Description 按消费时间倒序获取当前用户最近 5 条消费记录
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/recent [get]
func (h *ExpenseHandler) Recent(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var expenses []models.Expense
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(recentExpenseLimit).
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, expenses)
}

// GetTotal 获取消费总额
// @Summary 获取消费总额
// @Description 统计当前用户所有消费记录的金额之和，没有记录时返回 0
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=TotalExpensesResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/total [get]
func (h *ExpenseHandler) GetTotal(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var total float64
	if err := database.DB.Model(&models.Expense{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, TotalExpensesResponse{TotalExpenses: total})
}

// GetSummary 按分类汇总消费
// @Summary 按分类汇总消费
// @Description 按分类标签分组统计当前用户的消费金额，按总额降序排列
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]CategorySummary} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/summary [get]
func (h *ExpenseHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var summary []CategorySummary
	if err := database.DB.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total_spent").
		Where("user_id = ?", userID).
		Group("category").
		Order("total_spent DESC").
		Scan(&summary).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, summary)
}
