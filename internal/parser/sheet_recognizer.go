package parser

import "strings"

// SheetRecognizer Sheet 类型识别器
type SheetRecognizer struct{}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{}
}

// Recognize 识别 Sheet 类型
// 配方表和菜单表都有菜品列，先按配方特征判断
func (r *SheetRecognizer) Recognize(sheetName string, columnNames []string) SheetRecognitionResult {
	mapper := NewFieldMapper()

	if result := r.score(sheetName, SheetTypeRecipe, mapper.MapRecipe(columnNames), recipeKeyFields, "recipe"); result.Confidence >= 0.75 {
		return result
	}
	if result := r.score(sheetName, SheetTypeMenu, mapper.MapMenu(columnNames), menuKeyFields, "menu"); result.Confidence >= 0.5 {
		return result
	}

	// 无法识别
	return SheetRecognitionResult{
		SheetName:  sheetName,
		SheetType:  SheetTypeUnknown,
		Confidence: 0,
	}
}

var (
	menuKeyFields   = []Field{FieldName, FieldPrice, FieldFoodCost, FieldUnitsSold}
	recipeKeyFields = []Field{FieldItem, FieldIngredient, FieldQuantity, FieldCostPerUnit}
)

func (r *SheetRecognizer) score(sheetName string, t SheetType, mappings map[int]FieldMapping, keyFields []Field, nameHint string) SheetRecognitionResult {
	found := make(map[Field]bool, len(mappings))
	for _, m := range mappings {
		found[m.Field] = true
	}

	matchCount := 0
	for _, f := range keyFields {
		if found[f] {
			matchCount++
		}
	}
	confidence := float64(matchCount) / float64(len(keyFields))

	// Sheet 名命中时提升置信度
	if strings.Contains(NormalizeColumnName(sheetName), nameHint) {
		confidence += 0.25
	}
	if confidence > 1 {
		confidence = 1
	}

	return SheetRecognitionResult{
		SheetName:  sheetName,
		SheetType:  t,
		Confidence: confidence,
	}
}
