package parser

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/service/menu"
)

// MenuParser 从工作簿中读取菜单与配方
type MenuParser struct {
	file       *excelize.File
	recognizer *SheetRecognizer
	mapper     *FieldMapper
}

// NewMenuParser 创建菜单解析器
func NewMenuParser(file *excelize.File) *MenuParser {
	return &MenuParser{
		file:       file,
		recognizer: NewSheetRecognizer(),
		mapper:     NewFieldMapper(),
	}
}

// ParseMenuReader 读取上传的工作簿并解析菜单
func ParseMenuReader(r io.Reader, filename string) ([]model.MenuItem, *ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	items, report, err := NewMenuParser(f).Parse()
	if report != nil {
		report.Filename = filename
	}
	return items, report, err
}

type recipeLine struct {
	item       string
	ingredient model.RecipeIngredient
}

// Parse 解析所有可识别的 Sheet
// 配方行按菜品 ID 或名称（不区分大小写）挂到菜品上；菜品未填食材成本时用配方成本
func (p *MenuParser) Parse() ([]model.MenuItem, *ImportReport, error) {
	start := time.Now()
	report := &ImportReport{Sheets: []ParseResult{}}

	var items []model.MenuItem
	var recipes []recipeLine

	for _, sheet := range p.file.GetSheetList() {
		report.TotalSheets++
		sheetStart := time.Now()

		rows, err := p.file.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			report.Sheets = append(report.Sheets, ParseResult{
				SheetName: sheet,
				SheetType: SheetTypeUnknown,
				Status:    "error",
				Errors:    []string{err.Error()},
			})
			continue
		}
		if len(rows) < 2 {
			report.SkippedSheets++
			report.Sheets = append(report.Sheets, ParseResult{SheetName: sheet, SheetType: SheetTypeUnknown, Status: "skipped"})
			continue
		}

		recognized := p.recognizer.Recognize(sheet, rows[0])
		var res ParseResult
		switch recognized.SheetType {
		case SheetTypeMenu:
			var parsed []model.MenuItem
			parsed, res = p.parseMenuRows(rows)
			items = append(items, parsed...)
		case SheetTypeRecipe:
			var parsed []recipeLine
			parsed, res = p.parseRecipeRows(rows)
			recipes = append(recipes, parsed...)
		default:
			res = ParseResult{Status: "skipped"}
		}
		res.SheetName = sheet
		res.SheetType = recognized.SheetType
		res.Duration = time.Since(sheetStart)

		if res.Status == "skipped" {
			report.SkippedSheets++
		} else {
			report.ImportedSheets++
		}
		report.TotalRows += len(rows) - 1
		report.ImportedRows += res.ImportedRows
		report.ErrorRows += res.ErrorRows
		report.Sheets = append(report.Sheets, res)
	}

	if len(items) == 0 {
		report.Duration = time.Since(start)
		return nil, report, fmt.Errorf("%w: no menu sheet found", menu.ErrInvalidInput)
	}

	attachRecipes(items, recipes)
	assignIDs(items)

	report.Duration = time.Since(start)
	return items, report, nil
}

func (p *MenuParser) parseMenuRows(rows [][]string) ([]model.MenuItem, ParseResult) {
	cols := columnsByField(p.mapper.MapMenu(rows[0]))
	res := ParseResult{Status: "imported"}
	items := make([]model.MenuItem, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rowNo := i + 2
		name := cellAt(row, cols, FieldName)
		if name == "" {
			continue
		}

		item := model.MenuItem{
			ID:              cellAt(row, cols, FieldID),
			Name:            name,
			Category:        cellAt(row, cols, FieldCategory),
			IsSignatureDish: ParseBool(cellAt(row, cols, FieldSignature)),
			Is86d:           ParseBool(cellAt(row, cols, FieldIs86d)),
		}
		var err error
		if item.Price, err = numberAt(row, cols, FieldPrice); err == nil {
			if item.TotalFoodCost, err = numberAt(row, cols, FieldFoodCost); err == nil {
				item.WeeklyUnitsSold, err = numberAt(row, cols, FieldUnitsSold)
			}
		}
		if err != nil {
			res.ErrorRows++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", rowNo, err))
			continue
		}

		items = append(items, item)
		res.ImportedRows++
	}
	return items, res
}

func (p *MenuParser) parseRecipeRows(rows [][]string) ([]recipeLine, ParseResult) {
	cols := columnsByField(p.mapper.MapRecipe(rows[0]))
	res := ParseResult{Status: "imported"}
	lines := make([]recipeLine, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rowNo := i + 2
		item := cellAt(row, cols, FieldItem)
		name := cellAt(row, cols, FieldIngredient)
		if item == "" || name == "" {
			continue
		}

		qty, err := numberAt(row, cols, FieldQuantity)
		var cpu float64
		if err == nil {
			cpu, err = numberAt(row, cols, FieldCostPerUnit)
		}
		if err != nil {
			res.ErrorRows++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", rowNo, err))
			continue
		}

		lines = append(lines, recipeLine{
			item: item,
			ingredient: model.RecipeIngredient{
				Name:        name,
				Quantity:    qty,
				Unit:        cellAt(row, cols, FieldUnit),
				CostPerUnit: cpu,
				TotalCost:   qty * cpu,
			},
		})
		res.ImportedRows++
	}
	return lines, res
}

func attachRecipes(items []model.MenuItem, recipes []recipeLine) {
	if len(recipes) == 0 {
		return
	}
	index := make(map[string]int, len(items)*2)
	for i, it := range items {
		if it.ID != "" {
			index[strings.ToLower(it.ID)] = i
		}
		index[strings.ToLower(it.Name)] = i
	}
	for _, r := range recipes {
		if i, ok := index[strings.ToLower(r.item)]; ok {
			items[i].Recipe = append(items[i].Recipe, r.ingredient)
		}
	}
	for i := range items {
		if len(items[i].Recipe) > 0 && items[i].TotalFoodCost == 0 {
			items[i].TotalFoodCost = menu.CalculateRecipeCost(items[i].Recipe).TotalCost
		}
	}
}

// assignIDs 缺 ID 的菜品按名称生成，重名追加序号
func assignIDs(items []model.MenuItem) {
	used := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ID != "" {
			used[it.ID] = true
		}
	}
	for i := range items {
		if items[i].ID != "" {
			continue
		}
		base := Slug(items[i].Name)
		if base == "" {
			base = "item"
		}
		id := base
		for n := 2; used[id]; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		used[id] = true
		items[i].ID = id
	}
}

func cellAt(row []string, cols map[Field]int, f Field) string {
	idx, ok := cols[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func numberAt(row []string, cols map[Field]int, f Field) (float64, error) {
	v, err := ParseNumber(cellAt(row, cols, f))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", f, err)
	}
	return v, nil
}
