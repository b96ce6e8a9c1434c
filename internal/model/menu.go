package model

// Profitability 菜单工程四象限
type Profitability string

const (
	ProfitabilityStar      Profitability = "star"
	ProfitabilityPuzzle    Profitability = "puzzle"
	ProfitabilityPlowHorse Profitability = "plow_horse"
	ProfitabilityDog       Profitability = "dog"
)

// RecipeIngredient 配方原料
type RecipeIngredient struct {
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	CostPerUnit float64 `json:"costPerUnit"`
	TotalCost   float64 `json:"totalCost"`
}

// MenuItem 菜品
// ContributionMargin/MenuMix/FoodCostPercentage/PopularityRank/Profitability 为派生字段，
// 调用方传入的值会被分析重新计算
type MenuItem struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Category        string             `json:"category"`
	Price           float64            `json:"price"`
	TotalFoodCost   float64            `json:"totalFoodCost"`
	WeeklyUnitsSold float64            `json:"weeklyUnitsSold"`
	Recipe          []RecipeIngredient `json:"recipe"`
	IsSignatureDish bool               `json:"isSignatureDish"`
	Is86d           bool               `json:"is86d"`

	FoodCostPercentage float64       `json:"foodCostPercentage"`
	ContributionMargin float64       `json:"contributionMargin"`
	MenuMix            float64       `json:"menuMix"`
	PopularityRank     int           `json:"popularityRank"`
	Profitability      Profitability `json:"profitability"`
}

// MenuSummary 菜单汇总
type MenuSummary struct {
	TotalItems            int     `json:"totalItems"`
	TotalUnitsSold        float64 `json:"totalUnitsSold"`
	TotalRevenue          float64 `json:"totalRevenue"`
	TotalFoodCost         float64 `json:"totalFoodCost"`
	TotalContribution     float64 `json:"totalContribution"`
	AvgContributionMargin float64 `json:"avgContributionMargin"`
	AvgMenuMix            float64 `json:"avgMenuMix"`
	AvgFoodCostPercentage float64 `json:"avgFoodCostPercentage"` // 按销量加权

	StarCount      int `json:"starCount"`
	PuzzleCount    int `json:"puzzleCount"`
	PlowHorseCount int `json:"plowHorseCount"`
	DogCount       int `json:"dogCount"`
}

// MenuRecommendation 菜单调整建议
type MenuRecommendation struct {
	Category string   `json:"category"` // 四象限名称或 food_cost / restock
	ItemIDs  []string `json:"itemIds"`
	Action   string   `json:"action"`
	Message  string   `json:"message"`
}

// MenuAnalysis 菜单工程分析结果
type MenuAnalysis struct {
	Items               []MenuItem           `json:"items"`
	Summary             MenuSummary          `json:"summary"`
	Stars               []MenuItem           `json:"stars"`
	Puzzles             []MenuItem           `json:"puzzles"`
	PlowHorses          []MenuItem           `json:"plowHorses"`
	Dogs                []MenuItem           `json:"dogs"`
	Recommendations     []MenuRecommendation `json:"recommendations"`
	EducationalInsights []string             `json:"educationalInsights"`
}

// RecipeCost 配方成本
type RecipeCost struct {
	TotalCost         float64 `json:"totalCost"`
	LargestCostDriver string  `json:"largestCostDriver"`
}

// CompetitorComparison 与竞品价格对比
type CompetitorComparison struct {
	CompetitorPrice float64 `json:"competitorPrice"`
	Difference      float64 `json:"difference"`    // 建议价 - 竞品价
	DifferencePct   float64 `json:"differencePct"` // 相对竞品价，竞品价为 0 时取 0
	Position        string  `json:"position"`      // above / below / at
}

// PriceSuggestion 定价建议
type PriceSuggestion struct {
	RawPrice           float64               `json:"rawPrice"`
	SuggestedPrice     float64               `json:"suggestedPrice"`
	FoodCostPercentage float64               `json:"foodCostPercentage"` // 按建议价计算的实际食材成本率
	VsCompetitor       *CompetitorComparison `json:"vsCompetitor,omitempty"`
}
