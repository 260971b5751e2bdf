package api

import (
	"errors"
	"strconv"
	"strings"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 预算分类处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建预算分类处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoryCreateRequest 创建分类请求
type CategoryCreateRequest struct {
	CategoryName string `json:"category_name" binding:"required,min=1,max=255" example:"餐饮"`
}

// AmountRequest 充值/扣款请求
type AmountRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"100.00"`
}

// TransferRequest 转账请求
type TransferRequest struct {
	FromCategoryID uint    `json:"from_category_id" binding:"required" example:"1"`
	ToCategoryID   uint    `json:"to_category_id" binding:"required" example:"2"`
	Amount         float64 `json:"amount" binding:"required,gt=0" example:"50.00"`
}

// BalanceResponse 余额响应
type BalanceResponse struct {
	Balance float64 `json:"balance" example:"150.00"`
}

// TotalBalanceResponse 总余额响应
type TotalBalanceResponse struct {
	TotalBalance float64 `json:"total_balance" example:"1234.56"`
}

// ledgerError 把账本服务的错误映射为 HTTP 响应
func ledgerError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInsufficientFunds), errors.Is(err, service.ErrSameCategory):
		BadRequest(c, err.Error())
	default:
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}

// Create 创建分类
// @Summary 创建预算分类
// @Description 为当前用户创建一个新的预算分类，初始余额为 0
// @Tags 预算分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryCreateRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.CategoryName = strings.TrimSpace(req.CategoryName)
	if req.CategoryName == "" {
		BadRequest(c, "分类名称不能为空")
		return
	}

	category := models.Category{
		CategoryName: req.CategoryName,
		UserID:       userID,
	}
	if err := database.DB.Create(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建分类失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", category)
}

// List 获取分类列表
// @Summary 获取分类列表
// @Description 获取当前用户的全部预算分类
// @Tags 预算分类
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var categories []models.Category
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, categories)
}

// Get 获取单个分类
// @Summary 获取单个分类
// @Description 根据ID获取分类详情，其他用户的分类视为不存在
// @Tags 预算分类
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} Response{data=models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id64, userID).First(&category).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	Success(c, category)
}

// Fund 给分类充值
// @Summary 给分类充值
// @Description 向指定分类转入资金，返回更新后的余额
// @Tags 预算分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param request body AmountRequest true "充值金额"
// @Success 200 {object} Response{data=BalanceResponse} "充值成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id}/fund [put]
func (h *CategoryHandler) Fund(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误，金额必须大于 0"))
		return
	}

	ledger := service.NewLedgerService(database.GetDB())
	balance, err := ledger.Fund(userID, uint(id64), req.Amount)
	if err != nil {
		ledgerError(c, err, "充值失败")
		return
	}

	SuccessWithMessage(c, "充值成功", BalanceResponse{Balance: balance})
}

// Spend 从分类扣款
// @Summary 从分类扣款
// @Description 从指定分类支出资金，余额不足时返回 400，返回更新后的余额
// @Tags 预算分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param request body AmountRequest true "扣款金额"
// @Success 200 {object} Response{data=BalanceResponse} "扣款成功"
// @Failure 400 {object} Response "请求参数错误或余额不足"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id}/spend [put]
func (h *CategoryHandler) Spend(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误，金额必须大于 0"))
		return
	}

	ledger := service.NewLedgerService(database.GetDB())
	balance, err := ledger.Spend(userID, uint(id64), req.Amount)
	if err != nil {
		ledgerError(c, err, "扣款失败")
		return
	}

	SuccessWithMessage(c, "扣款成功", BalanceResponse{Balance: balance})
}

// Transfer 分类间转账
// @Summary 分类间转账
// @Description 在当前用户的两个分类之间转账，扣减和入账在同一事务内完成
// @Tags 预算分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransferRequest true "转账信息"
// @Success 200 {object} Response{data=service.TransferResult} "转账成功"
// @Failure 400 {object} Response "请求参数错误或转出分类余额不足"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/transfer [put]
func (h *CategoryHandler) Transfer(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误，金额必须大于 0"))
		return
	}

	ledger := service.NewLedgerService(database.GetDB())
	result, err := ledger.Transfer(userID, req.FromCategoryID, req.ToCategoryID, req.Amount)
	if err != nil {
		ledgerError(c, err, "转账失败")
		return
	}

	SuccessWithMessage(c, "转账成功", result)
}

// GetTotalBalance 获取分类总余额
// @Summary 获取分类总余额
// @Description 统计当前用户所有分类的余额之和，没有分类时返回 0
// @Tags 预算分类
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=TotalBalanceResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories/balance [get]
func (h *CategoryHandler) GetTotalBalance(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var totalBalance float64
	if err := database.DB.Model(&models.Category{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&totalBalance).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, TotalBalanceResponse{TotalBalance: totalBalance})
}

// GetPositive 获取余额为正的分类
// @Summary 获取余额为正的分类
// @Description 获取当前用户所有余额大于 0 的分类
// @Tags 预算分类
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories/positive [get]
func (h *CategoryHandler) GetPositive(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var categories []models.Category
	if err := database.DB.Where("user_id = ? AND balance > 0", userID).Order("id ASC").Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, categories)
}
