package parser

// FieldMapper 字段映射器
type FieldMapper struct {
	menu   []columnAlias
	recipe []columnAlias
}

type columnAlias struct {
	field   Field
	aliases []string // 规范化后的列名
}

// NewFieldMapper 创建字段映射器
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{
		menu: []columnAlias{
			{FieldID, []string{"id", "itemid", "sku"}},
			{FieldName, []string{"item", "name", "itemname", "dish", "menuitem"}},
			{FieldCategory, []string{"category", "section", "course"}},
			{FieldPrice, []string{"price", "menuprice", "sellingprice"}},
			{FieldFoodCost, []string{"foodcost", "totalfoodcost", "platecost", "cost"}},
			{FieldUnitsSold, []string{"units/week", "unitsweek", "weeklyunitssold", "unitssold", "weeklysales", "sold"}},
			{FieldSignature, []string{"signature", "signaturedish", "issignaturedish"}},
			{FieldIs86d, []string{"86d", "86", "is86d", "outofstock"}},
		},
		recipe: []columnAlias{
			{FieldItem, []string{"item", "menuitem", "dish", "itemname"}},
			{FieldIngredient, []string{"ingredient", "ingredientname"}},
			{FieldQuantity, []string{"quantity", "qty", "amount"}},
			{FieldUnit, []string{"unit", "uom"}},
			{FieldCostPerUnit, []string{"cost/unit", "costunit", "costperunit", "unitcost"}},
		},
	}
}

// MapMenu 映射菜单表字段
func (m *FieldMapper) MapMenu(columnNames []string) map[int]FieldMapping {
	return mapColumns(columnNames, m.menu)
}

// MapRecipe 映射配方表字段
func (m *FieldMapper) MapRecipe(columnNames []string) map[int]FieldMapping {
	return mapColumns(columnNames, m.recipe)
}

// mapColumns 按列名精确匹配别名，同一字段只取最左侧的一列
func mapColumns(columnNames []string, aliases []columnAlias) map[int]FieldMapping {
	lookup := make(map[string]Field)
	for _, a := range aliases {
		for _, name := range a.aliases {
			lookup[name] = a.field
		}
	}

	mappings := make(map[int]FieldMapping)
	taken := make(map[Field]bool)
	for idx, col := range columnNames {
		normalized := NormalizeColumnName(col)
		if normalized == "" {
			continue
		}
		field, ok := lookup[normalized]
		if !ok || taken[field] {
			continue
		}
		taken[field] = true
		mappings[idx] = FieldMapping{
			ColumnIndex: idx,
			ColumnName:  col,
			Field:       field,
		}
	}
	return mappings
}

// columnsByField 反查字段所在列
func columnsByField(mappings map[int]FieldMapping) map[Field]int {
	out := make(map[Field]int, len(mappings))
	for idx, m := range mappings {
		out[m.Field] = idx
	}
	return out
}
