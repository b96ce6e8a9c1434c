package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/service/menu"
	"github.com/justinnewbold/86d-game-sub000/internal/store"
)

const (
	SheetPL       = "P&L"
	SheetCashFlow = "Cash Flow"
	SheetBills    = "Bills"
	SheetMenu     = "Menu"
)

// HistorySource 导出所需的周历史
type HistorySource interface {
	ListPL(locationID string) ([]store.PLRecord, error)
	ListCashFlow(locationID string) ([]store.CashFlowRecord, error)
}

// Exporter 门店经营报表导出器
type Exporter struct {
	history HistorySource
}

// NewExporter 创建导出器
func NewExporter(history HistorySource) *Exporter {
	return &Exporter{history: history}
}

// FileName 导出文件名：{prefix}_{门店名}_week{N}.xlsx
func FileName(prefix string, loc *model.Location) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, loc.Name)
	if prefix == "" {
		return fmt.Sprintf("%s_week%d.xlsx", name, loc.CurrentWeek-1)
	}
	return fmt.Sprintf("%s_%s_week%d.xlsx", prefix, name, loc.CurrentWeek-1)
}

// Export 导出门店工作簿：损益、现金流、待付账单、菜单四张表
func (e *Exporter) Export(loc *model.Location, progress func(ProgressEvent)) (*excelize.File, error) {
	if loc == nil {
		return nil, fmt.Errorf("export: location is nil")
	}

	reportProgress(progress, 5, "读取历史数据")
	pls, err := e.history.ListPL(loc.ID)
	if err != nil {
		return nil, fmt.Errorf("读取损益历史失败: %w", err)
	}
	flows, err := e.history.ListCashFlow(loc.ID)
	if err != nil {
		return nil, fmt.Errorf("读取现金流历史失败: %w", err)
	}

	f := excelize.NewFile()
	w := &sheetWriter{f: f}
	if w.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	}); err != nil {
		_ = f.Close()
		return nil, err
	}
	money := "$#,##0.00;[Red]-$#,##0.00"
	if w.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &money}); err != nil {
		_ = f.Close()
		return nil, err
	}
	pct := "0.0%"
	if w.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pct}); err != nil {
		_ = f.Close()
		return nil, err
	}

	steps := []struct {
		percent int
		stage   string
		fill    func() error
	}{
		{25, "写入损益表", func() error { return w.fillPL(pls) }},
		{50, "写入现金流", func() error { return w.fillCashFlow(flows) }},
		{75, "写入待付账单", func() error { return w.fillBills(loc.CashFlow.PendingBills) }},
		{95, "写入菜单分析", func() error { return w.fillMenu(menu.AnalyzeMenu(loc.Menu)) }},
	}
	for _, s := range steps {
		reportProgress(progress, s.percent, s.stage)
		if err := s.fill(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%s失败: %w", s.stage, err)
		}
	}

	// NewFile 自带的 Sheet1 在写入 P&L 前已被重命名
	if idx, err := f.GetSheetIndex(SheetPL); err == nil {
		f.SetActiveSheet(idx)
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   loc.Name,
		Created: time.Now().UTC().Format(time.RFC3339),
	})
	reportProgress(progress, 100, "完成")
	return f, nil
}

type sheetWriter struct {
	f       *excelize.File
	header  int
	money   int
	percent int
}

// newSheet 第一张表复用默认的 Sheet1
func (w *sheetWriter) newSheet(name string, headers []string, widths []float64) error {
	if w.f.SheetCount == 1 && w.f.GetSheetName(0) == "Sheet1" {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := w.f.SetSheetRow(name, "A1", &row); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(name, "A1", last, w.header); err != nil {
		return err
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(name, col, col, width); err != nil {
			return err
		}
	}
	return w.f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (w *sheetWriter) writeRow(sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(sheet, cell, &values)
}

// styleCols 按列设置数字格式，列号从 1 开始
func (w *sheetWriter) styleCols(sheet string, firstRow, lastRow int, cols []int, style int) error {
	if lastRow < firstRow {
		return nil
	}
	for _, c := range cols {
		from, err := excelize.CoordinatesToCellName(c, firstRow)
		if err != nil {
			return err
		}
		to, err := excelize.CoordinatesToCellName(c, lastRow)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(sheet, from, to, style); err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) fillPL(records []store.PLRecord) error {
	headers := []string{
		"Week", "Revenue", "COGS", "Gross Profit", "Labor", "Prime Cost", "Overhead", "Net Profit",
		"Prime Cost %", "Food Cost %", "Labor Cost %", "Occupancy %", "Net Margin", "Score", "Grade",
	}
	if err := w.newSheet(SheetPL, headers, []float64{8, 14, 14, 14, 14, 14, 14, 14, 12, 12, 12, 12, 12, 8, 8}); err != nil {
		return err
	}
	for i, r := range records {
		p := r.PL
		if err := w.writeRow(SheetPL, i+2, []interface{}{
			r.Week, p.Revenue.Total, p.COGS.Total, p.GrossProfit, p.Labor.Total, p.PrimeCost, p.Overhead.Total, p.NetProfit,
			p.PrimeCostPercentage, p.FoodCostPercentage, p.LaborCostPercentage, p.OccupancyCostPercentage, p.NetProfitMargin,
			r.Score, r.Grade,
		}); err != nil {
			return err
		}
	}
	last := len(records) + 1
	if err := w.styleCols(SheetPL, 2, last, []int{2, 3, 4, 5, 6, 7, 8}, w.money); err != nil {
		return err
	}
	return w.styleCols(SheetPL, 2, last, []int{9, 10, 11, 12, 13}, w.percent)
}

func (w *sheetWriter) fillCashFlow(records []store.CashFlowRecord) error {
	headers := []string{
		"Week", "Cash In", "Rent", "Payroll", "Suppliers", "Utilities", "Loans", "Taxes", "Other",
		"Cash Out", "Net Cash Flow", "Ending Cash", "Accounting Profit", "Profit vs Cash Gap", "Runway (weeks)",
	}
	if err := w.newSheet(SheetCashFlow, headers, []float64{8, 14, 12, 12, 12, 12, 12, 12, 12, 14, 14, 14, 16, 16, 14}); err != nil {
		return err
	}
	for i, r := range records {
		fl := r.Flow
		if err := w.writeRow(SheetCashFlow, i+2, []interface{}{
			fl.Week, fl.TotalCashIn, fl.RentPaid, fl.PayrollPaid, fl.SuppliersPaid, fl.UtilitiesPaid,
			fl.LoanPaymentsPaid, fl.TaxesPaid, fl.OtherPaid, fl.TotalCashOut, fl.NetCashFlow, fl.EndingCash,
			fl.AccountingProfit, fl.CashFlowDifference, r.WeeksOfRunway,
		}); err != nil {
			return err
		}
	}
	return w.styleCols(SheetCashFlow, 2, len(records)+1, []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}, w.money)
}

func (w *sheetWriter) fillBills(bills []model.Bill) error {
	headers := []string{"ID", "Type", "Description", "Amount", "Due Week", "Status"}
	if err := w.newSheet(SheetBills, headers, []float64{18, 12, 28, 14, 10, 10}); err != nil {
		return err
	}
	for i, b := range bills {
		status := "pending"
		switch {
		case b.IsPaid:
			status = "paid"
		case b.IsOverdue:
			status = "overdue"
		}
		if err := w.writeRow(SheetBills, i+2, []interface{}{
			b.ID, string(b.Type), b.Description, b.Amount, b.DueWeek, status,
		}); err != nil {
			return err
		}
	}
	return w.styleCols(SheetBills, 2, len(bills)+1, []int{4}, w.money)
}

func (w *sheetWriter) fillMenu(a model.MenuAnalysis) error {
	headers := []string{
		"Item", "Category", "Price", "Food Cost", "Food Cost %", "Contribution Margin",
		"Units / Week", "Menu Mix", "Popularity Rank", "Class", "Signature", "86'd",
	}
	if err := w.newSheet(SheetMenu, headers, []float64{24, 14, 10, 10, 12, 18, 12, 10, 14, 12, 10, 8}); err != nil {
		return err
	}
	for i, it := range a.Items {
		if err := w.writeRow(SheetMenu, i+2, []interface{}{
			it.Name, it.Category, it.Price, it.TotalFoodCost, it.FoodCostPercentage, it.ContributionMargin,
			it.WeeklyUnitsSold, it.MenuMix, it.PopularityRank, string(it.Profitability), it.IsSignatureDish, it.Is86d,
		}); err != nil {
			return err
		}
	}
	last := len(a.Items) + 1
	if err := w.styleCols(SheetMenu, 2, last, []int{3, 4, 6}, w.money); err != nil {
		return err
	}
	return w.styleCols(SheetMenu, 2, last, []int{5, 8}, w.percent)
}
