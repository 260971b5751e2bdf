package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// loadExpenses 查询当前用户的消费记录，时间范围可选
func (h *ExportHandler) loadExpenses(c *gin.Context) ([]models.Expense, bool) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)

	if startTimeStr := c.Query("start_time"); startTimeStr != "" {
		startTime, err := time.ParseInLocation("2006-01-02", startTimeStr, time.Local)
		if err != nil {
			BadRequest(c, "开始时间格式错误，应为: 2006-01-02")
			return nil, false
		}
		query = query.Where("date >= ?", startTime)
	}
	if endTimeStr := c.Query("end_time"); endTimeStr != "" {
		endTime, err := time.ParseInLocation("2006-01-02", endTimeStr, time.Local)
		if err != nil {
			BadRequest(c, "结束时间格式错误，应为: 2006-01-02")
			return nil, false
		}
		// 包含结束日期当天
		endTime = endTime.Add(24*time.Hour - time.Second)
		query = query.Where("date <= ?", endTime)
	}

	var expenses []models.Expense
	if err := query.Order("date DESC").Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return nil, false
	}
	return expenses, true
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录（CSV）
// @Description 导出当前用户的消费记录为 CSV 文件，可选时间范围
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	expenses, ok := h.loadExpenses(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "描述", "金额", "分类", "消费时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, expense := range expenses {
		row := []string{
			fmt.Sprintf("%d", expense.ID),
			expense.Description,
			fmt.Sprintf("%.2f", expense.Amount),
			expense.Category,
			expense.Date.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s.csv", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录（Excel）
// @Description 导出当前用户的消费记录为 xlsx 文件，末尾附合计行，可选时间范围
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	expenses, ok := h.loadExpenses(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "消费记录"
	f.SetSheetName("Sheet1", sheetName)

	// 表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 数据样式
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	headers := []string{"ID", "描述", "金额", "分类", "消费时间"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var totalAmount float64
	for i, expense := range expenses {
		row := i + 2
		values := []interface{}{
			expense.ID,
			expense.Description,
			expense.Amount,
			expense.Category,
			expense.Date.Format("2006-01-02 15:04:05"),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheetName, cell, value)
			f.SetCellStyle(sheetName, cell, cell, dataStyle)
		}
		totalAmount += expense.Amount
	}

	// 合计行
	totalRow := len(expenses) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", totalRow), "合计")
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", totalRow), totalAmount)

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s.xlsx", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
