package service

import (
	"errors"
	"fmt"
	"io"
	"time"

	"budgetly/scoring"

	"github.com/phpdave11/gofpdf"
)

// ErrPDFFontMissing 未配置中文字体，内置字体无法渲染中文
var ErrPDFFontMissing = errors.New("未配置 PDF 字体（export.pdf_font）")

const pdfFontFamily = "cjk"

// WriteCycleReportPDF 生成周期报告：评分、预算执行与大额交易
func WriteCycleReportPDF(w io.Writer, username string, o *HealthOverview, fontPath string) error {
	if fontPath == "" {
		return ErrPDFFontMissing
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddUTF8Font(pdfFontFamily, "", fontPath)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("加载 PDF 字体失败: %w", err)
	}
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont(pdfFontFamily, "", 18)
	pdf.Cell(0, 10, "预算周期报告")
	pdf.Ln(10)

	pdf.SetFont(pdfFontFamily, "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, fmt.Sprintf("周期: %s 至 %s", o.CycleStart.Format("2006-01-02"), o.CycleEnd.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, "用户: "+username)
	pdf.Ln(10)

	// 评分
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont(pdfFontFamily, "", 11)

	health := "数据不足"
	if o.Score.HealthScore != nil {
		health = fmt.Sprintf("%d", *o.Score.HealthScore)
	}
	sumW := []float64{46, 46, 45, 45}
	pdf.CellFormat(sumW[0], 10, "健康分", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "储蓄分", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "预算分", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[3], 10, "结余 ("+o.Currency+")", "1", 1, "C", true, 0, "")
	pdf.CellFormat(sumW[0], 10, health, "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, fmt.Sprintf("%d", o.Score.SavingsScore), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, fmt.Sprintf("%d", o.Score.BudgetingScore), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[3], 10, fmt.Sprintf("%.2f", o.Score.Income-o.Score.Expenses), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	// 预算执行
	colW := []float64{52, 32, 32, 32, 34}
	header := func() {
		pdf.SetFont(pdfFontFamily, "", 10)
		pdf.SetFillColor(245, 245, 245)
		for i, h := range []string{"分类", "可用额度", "已支出", "剩余", "状态"} {
			pdf.CellFormat(colW[i], 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()
	pdf.SetFont(pdfFontFamily, "", 9)
	for _, b := range o.Budget {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
			pdf.SetFont(pdfFontFamily, "", 9)
		}
		target := scoring.EffectiveTarget(b, o.CarryoverEnabled)
		status := "正常"
		if scoring.IsOverBudget(b, o.CarryoverEnabled) {
			status = "超支"
			pdf.SetTextColor(220, 38, 38)
		}
		pdf.CellFormat(colW[0], 8, b.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], 8, fmt.Sprintf("%.2f", target), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[2], 8, fmt.Sprintf("%.2f", b.Spent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[3], 8, fmt.Sprintf("%.2f", target-b.Spent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[4], 8, status, "1", 1, "C", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
	}

	if len(o.LargeTransactions) > 0 {
		pdf.Ln(6)
		pdf.SetFont(pdfFontFamily, "", 12)
		pdf.Cell(0, 8, "大额交易")
		pdf.Ln(8)
		pdf.SetFont(pdfFontFamily, "", 9)
		for _, tx := range o.LargeTransactions {
			pdf.CellFormat(30, 7, tx.Date.Format("2006-01-02"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(122, 7, tx.Description, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", tx.Amount), "1", 1, "R", false, 0, "")
		}
	}

	pdf.SetAutoPageBreak(false, 0)
	pdf.SetY(-18)
	pdf.SetFont(pdfFontFamily, "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Budgetly · "+time.Now().Format("2006-01-02 15:04"), "", 0, "C", false, 0, "")

	return pdf.Output(w)
}
