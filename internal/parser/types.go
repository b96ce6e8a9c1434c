package parser

import "time"

// SheetType Sheet 类型
type SheetType string

const (
	SheetTypeMenu    SheetType = "menu"
	SheetTypeRecipe  SheetType = "recipe"
	SheetTypeUnknown SheetType = "unknown"
)

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string    `json:"sheetName"`
	SheetType  SheetType `json:"sheetType"`
	Confidence float64   `json:"confidence"` // 置信度 0-1
}

// Field 导入字段
type Field string

const (
	FieldID          Field = "id"
	FieldName        Field = "name"
	FieldCategory    Field = "category"
	FieldPrice       Field = "price"
	FieldFoodCost    Field = "totalFoodCost"
	FieldUnitsSold   Field = "weeklyUnitsSold"
	FieldSignature   Field = "isSignatureDish"
	FieldIs86d       Field = "is86d"
	FieldItem        Field = "item" // 配方表中所属菜品
	FieldIngredient  Field = "ingredient"
	FieldQuantity    Field = "quantity"
	FieldUnit        Field = "unit"
	FieldCostPerUnit Field = "costPerUnit"
)

// FieldMapping 字段映射结果
type FieldMapping struct {
	ColumnIndex int    `json:"columnIndex"` // Excel 列索引
	ColumnName  string `json:"columnName"`  // Excel 列名
	Field       Field  `json:"field"`
}

// ParseResult 单个 Sheet 的解析结果
type ParseResult struct {
	SheetName    string        `json:"sheetName"`
	SheetType    SheetType     `json:"sheetType"`
	Status       string        `json:"status"` // imported/skipped/error
	ImportedRows int           `json:"importedRows"`
	ErrorRows    int           `json:"errorRows"`
	Errors       []string      `json:"errors,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// ImportReport 导入报告
type ImportReport struct {
	Filename       string        `json:"filename"`
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	TotalRows      int           `json:"totalRows"`
	ImportedRows   int           `json:"importedRows"`
	ErrorRows      int           `json:"errorRows"`
	Duration       time.Duration `json:"duration"`
	Sheets         []ParseResult `json:"sheets"`
}
