package model

// RevenueBreakdown 周收入构成
type RevenueBreakdown struct {
	Food     float64 `json:"food"`     // 堂食收入中的餐食部分 (75%)
	Beverage float64 `json:"beverage"` // 堂食收入中的饮品部分 (25%)
	Delivery float64 `json:"delivery"` // 外卖收入
	Catering float64 `json:"catering"` // 宴会/团餐收入
	Other    float64 `json:"other"`    // 其他收入
	Total    float64 `json:"total"`
}

// COGS 销货成本（食材成本）
type COGS struct {
	Food     float64 `json:"food"`     // 堂食餐食成本
	Delivery float64 `json:"delivery"` // 外卖餐食成本
	Total    float64 `json:"total"`
}

// Labor 人工成本（调用方已按周汇总）
type Labor struct {
	HourlyWages float64 `json:"hourlyWages"`
	Salaries    float64 `json:"salaries"`
	Total       float64 `json:"total"`
}

// Overhead 固定经营费用
type Overhead struct {
	WeeklyRent      float64 `json:"weeklyRent"`
	WeeklyUtilities float64 `json:"weeklyUtilities"`
	WeeklyInsurance float64 `json:"weeklyInsurance"`
	Total           float64 `json:"total"`
}

// WeeklyPL 周损益表
type WeeklyPL struct {
	Revenue  RevenueBreakdown `json:"revenue"`
	COGS     COGS             `json:"cogs"`
	Labor    Labor            `json:"labor"`
	Overhead Overhead         `json:"overhead"`

	GrossProfit   float64 `json:"grossProfit"`
	PrimeCost     float64 `json:"primeCost"` // COGS + 人工
	TotalExpenses float64 `json:"totalExpenses"`
	NetProfit     float64 `json:"netProfit"`

	// 比率均以收入为分母，收入为 0 时取 0
	PrimeCostPercentage     float64 `json:"primeCostPercentage"`
	FoodCostPercentage      float64 `json:"foodCostPercentage"`
	LaborCostPercentage     float64 `json:"laborCostPercentage"`
	OccupancyCostPercentage float64 `json:"occupancyCostPercentage"`
	NetProfitMargin         float64 `json:"netProfitMargin"`
}

// Benchmarks 行业基准
type Benchmarks struct {
	PrimeCostTarget float64 `json:"primeCostTarget"`
	PrimeCostMax    float64 `json:"primeCostMax"`

	FoodCostTarget  float64 `json:"foodCostTarget"`
	FoodCostWarning float64 `json:"foodCostWarning"`
	FoodCostMax     float64 `json:"foodCostMax"`

	LaborCostTarget  float64 `json:"laborCostTarget"`
	LaborCostWarning float64 `json:"laborCostWarning"`
	LaborCostMax     float64 `json:"laborCostMax"`

	OccupancyWarning float64 `json:"occupancyWarning"`
	OccupancyMax     float64 `json:"occupancyMax"`

	NetMarginHealthy float64 `json:"netMarginHealthy"`
	NetMarginMin     float64 `json:"netMarginMin"`
}

// IssueCategory 损益问题分类
type IssueCategory string

const (
	IssueRevenue      IssueCategory = "revenue"
	IssuePrimeCost    IssueCategory = "prime_cost"
	IssueFoodCost     IssueCategory = "food_cost"
	IssueLaborCost    IssueCategory = "labor_cost"
	IssueOccupancy    IssueCategory = "occupancy"
	IssueProfitMargin IssueCategory = "profit_margin"
)

// Severity 严重程度
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// PLIssue 单条基准偏离
type PLIssue struct {
	Category IssueCategory `json:"category"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Actual   float64       `json:"actual"`
	Target   float64       `json:"target"`
}

// PLAnalysis 损益分析结果
type PLAnalysis struct {
	Issues []PLIssue `json:"issues"`
	Score  int       `json:"score"`
	Grade  string    `json:"grade"` // A-F
}

// HasIssue 判断是否包含指定分类的问题
func (a PLAnalysis) HasIssue(category IssueCategory) bool {
	for _, it := range a.Issues {
		if it.Category == category {
			return true
		}
	}
	return false
}

// BreakEven 保本点
type BreakEven struct {
	ContributionMarginPerCover float64 `json:"contributionMarginPerCover"`
	CoversPerMonth             float64 `json:"coversPerMonth"`
	RevenuePerMonth            float64 `json:"revenuePerMonth"`
	CoversPerWeek              float64 `json:"coversPerWeek"`
}
