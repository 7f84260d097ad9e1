package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"budgetly/config"
	"budgetly/database"
	"budgetly/middleware"
	"budgetly/scoring"
	"budgetly/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	cfg *config.Config
}

// NewExportHandler 创建导出处理器
func NewExportHandler(cfg *config.Config) *ExportHandler {
	return &ExportHandler{cfg: cfg}
}

// ExportRow 导出的一行交易
type ExportRow struct {
	Date        string   `json:"date"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Bucket      string   `json:"bucket"` // 所属顶级分类
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Account     string   `json:"account"`
	Tags        []string `json:"tags"`
}

var exportHeaders = []string{"日期", "类型", "分类", "顶级分类", "描述", "金额", "账户", "标签"}

func typeLabel(t scoring.TransactionType) string {
	if t == scoring.TypeIncome {
		return "收入"
	}
	return "支出"
}

// BuildExportRows 将快照中的交易转换为带分类名称的导出行
func BuildExportRows(snap scoring.Snapshot) []ExportRow {
	names := make(map[string]string, len(snap.Categories))
	for _, cat := range snap.Categories {
		names[cat.ID] = cat.Name
	}
	lookup := scoring.BuildCategoryLookup(snap.Categories)

	rows := make([]ExportRow, 0, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		bucket, _ := lookup.Resolve(tx.Category)
		tags := tx.Tags
		if tags == nil {
			tags = []string{}
		}
		rows = append(rows, ExportRow{
			Date:        tx.Date.Format(dateLayout),
			Type:        string(tx.Type),
			Category:    names[tx.Category],
			Bucket:      bucket,
			Description: tx.Description,
			Amount:      tx.Amount,
			Account:     tx.Account,
			Tags:        tags,
		})
	}
	return rows
}

// loadRange 解析时间范围并读取快照，失败时已写入响应
func (h *ExportHandler) loadRange(c *gin.Context) (scoring.Snapshot, time.Time, time.Time, bool) {
	startStr, endStr := c.Query("start_time"), c.Query("end_time")
	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始时间和结束时间")
		return scoring.Snapshot{}, time.Time{}, time.Time{}, false
	}
	start, end, err := parseDateRange(startStr, endStr)
	if err != nil {
		BadRequest(c, err.Error())
		return scoring.Snapshot{}, time.Time{}, time.Time{}, false
	}
	snap, err := service.LoadSnapshot(database.DB, middleware.GetCurrentUserID(c), start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return scoring.Snapshot{}, time.Time{}, time.Time{}, false
	}
	return snap, start, end, true
}

// ExportCSV 导出交易为 CSV
// @Summary 导出交易记录为 CSV
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	snap, start, end, ok := h.loadRange(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)

	if err := writer.Write(exportHeaders); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for _, r := range BuildExportRows(snap) {
		record := []string{
			r.Date,
			typeLabel(scoring.TransactionType(r.Type)),
			r.Category,
			r.Bucket,
			r.Description,
			fmt.Sprintf("%.2f", r.Amount),
			r.Account,
			strings.Join(r.Tags, ";"),
		}
		if err := writer.Write(record); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s_%s.csv", start.Format(dateLayout), end.Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出交易为 JSON
// @Summary 导出交易记录为 JSON
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {object} Response "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	snap, start, end, ok := h.loadRange(c)
	if !ok {
		return
	}
	income, expenses := scoring.Totals(snap.Transactions)
	Success(c, gin.H{
		"start_time":     start.Format(dateLayout),
		"end_time":       end.Format(dateLayout),
		"total_count":    len(snap.Transactions),
		"total_income":   income,
		"total_expenses": expenses,
		"transactions":   BuildExportRows(snap),
	})
}

// ExportExcel 导出 Excel：交易明细 + 预算与评分
// @Summary 导出交易记录为 Excel
// @Description 第一个工作表为交易明细，第二个工作表为该区间的预算执行与健康评分
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	snap, start, end, ok := h.loadRange(c)
	if !ok {
		return
	}
	settings, err := service.LoadSettings(database.DB, middleware.GetCurrentUserID(c), h.cfg.Budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询设置失败"))
		return
	}
	overview := service.Summarize(snap, settings, start, end)

	f, err := BuildWorkbook(BuildExportRows(snap), overview)
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("交易记录_%s_%s.xlsx", start.Format(dateLayout), end.Format(dateLayout))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}

// ExportPDF 导出当前预算周期报告
// @Summary 导出预算周期 PDF 报告
// @Description 包含健康评分、各分类预算执行与大额交易，需在配置中指定中文字体 export.pdf_font
// @Tags 导出
// @Produce application/pdf
// @Security BearerAuth
// @Param date query string false "所在周期的任意日期 (2024-03-15)"
// @Success 200 {file} file "PDF 文件"
// @Failure 400 {object} Response "请求参数错误或未配置字体"
// @Router /api/v1/export/pdf [get]
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	if h.cfg.Export.PDFFont == "" {
		BadRequest(c, "未配置 PDF 字体")
		return
	}
	userID := middleware.GetCurrentUserID(c)

	now := time.Now()
	if s := c.Query("date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		now = d
	}

	settings, err := service.LoadSettings(database.DB, userID, h.cfg.Budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询设置失败"))
		return
	}
	o, err := service.BuildOverview(database.DB, userID, settings, now)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "计算评分失败"))
		return
	}

	var buf bytes.Buffer
	if err := service.WriteCycleReportPDF(&buf, c.GetString("username"), o, h.cfg.Export.PDFFont); err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 PDF 失败"))
		return
	}

	filename := fmt.Sprintf("预算报告_%s_%s.pdf", o.CycleStart.Format(dateLayout), o.CycleEnd.Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

var cellBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

type workbookStyles struct {
	header, data, summary, over int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	}); err != nil {
		return s, err
	}
	if s.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	}); err != nil {
		return s, err
	}
	if s.summary, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	}); err != nil {
		return s, err
	}
	s.over, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "DC2626"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	})
	return s, err
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	f.SetCellStyle(sheet, first, last, style)
}

// BuildWorkbook 生成导出工作簿，调用方负责 Close
func BuildWorkbook(rows []ExportRow, o *service.HealthOverview) (*excelize.File, error) {
	f := excelize.NewFile()
	styles, err := newWorkbookStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	// 交易明细
	txSheet := "交易记录"
	f.SetSheetName("Sheet1", txSheet)
	f.SetColWidth(txSheet, "A", "B", 12)
	f.SetColWidth(txSheet, "C", "D", 14)
	f.SetColWidth(txSheet, "E", "E", 30)
	f.SetColWidth(txSheet, "F", "G", 12)
	f.SetColWidth(txSheet, "H", "H", 20)
	writeHeader(f, txSheet, exportHeaders, styles.header)

	var income, expenses float64
	for i, r := range rows {
		writeRow(f, txSheet, i+2, []interface{}{
			r.Date, typeLabel(scoring.TransactionType(r.Type)), r.Category, r.Bucket,
			r.Description, r.Amount, r.Account, strings.Join(r.Tags, ";"),
		}, styles.data)
		if r.Type == string(scoring.TypeIncome) {
			income += r.Amount
		} else {
			expenses += r.Amount
		}
	}
	summaryRow := len(rows) + 2
	writeRow(f, txSheet, summaryRow, []interface{}{
		"合计", fmt.Sprintf("共 %d 条记录", len(rows)), "收入", income, "支出", expenses, "结余", income - expenses,
	}, styles.summary)

	// 预算与评分
	budgetSheet := "预算与评分"
	if _, err := f.NewSheet(budgetSheet); err != nil {
		f.Close()
		return nil, err
	}
	f.SetColWidth(budgetSheet, "A", "A", 16)
	f.SetColWidth(budgetSheet, "B", "F", 12)
	writeHeader(f, budgetSheet, []string{"分类", "分配额", "结转", "可用额度", "已支出", "剩余"}, styles.header)

	for i, b := range o.Budget {
		target := scoring.EffectiveTarget(b, o.CarryoverEnabled)
		style := styles.data
		if scoring.IsOverBudget(b, o.CarryoverEnabled) {
			style = styles.over
		}
		writeRow(f, budgetSheet, i+2, []interface{}{b.Name, b.Allocated, b.Carryover, target, b.Spent, target - b.Spent}, style)
	}
	row := len(o.Budget) + 2
	writeRow(f, budgetSheet, row, []interface{}{
		"合计", o.Summary.TotalAllocated, o.Summary.TotalCarryover, o.Summary.TotalBudget, o.Summary.TotalSpent, o.Summary.TotalBudget - o.Summary.TotalSpent,
	}, styles.summary)

	health := "暂无（交易不足）"
	if o.Score.HealthScore != nil {
		health = fmt.Sprintf("%d", *o.Score.HealthScore)
	}
	scoreRows := [][]interface{}{
		{"健康分", health},
		{"储蓄分", o.Score.SavingsScore},
		{"预算分", o.Score.BudgetingScore},
		{"评分阶段", string(o.Score.State)},
	}
	for i, values := range scoreRows {
		writeRow(f, budgetSheet, row+2+i, values, styles.data)
	}

	return f, nil
}
