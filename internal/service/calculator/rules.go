package calculator

import (
	"fmt"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

// IndustryBenchmarks 餐饮行业基准（只读）
var IndustryBenchmarks = model.Benchmarks{
	PrimeCostTarget: 0.60,
	PrimeCostMax:    0.70,

	FoodCostTarget:  0.30,
	FoodCostWarning: 0.35,
	FoodCostMax:     0.40,

	LaborCostTarget:  0.30,
	LaborCostWarning: 0.35,
	LaborCostMax:     0.40,

	OccupancyWarning: 0.10,
	OccupancyMax:     0.15,

	NetMarginHealthy: 0.10,
	NetMarginMin:     0.03,
}

const (
	warningPenalty  = 15
	criticalPenalty = 30
)

// plRule 单条基准规则，未触发时返回 nil
type plRule func(pl *model.WeeklyPL, b model.Benchmarks) *model.PLIssue

// plRules 全部规则，逐条独立评估
var plRules = []plRule{
	revenueRule,
	primeCostRule,
	foodCostRule,
	laborCostRule,
	occupancyRule,
	profitMarginRule,
}

// AnalyzePL 对照行业基准分析周损益并评级
func AnalyzePL(pl *model.WeeklyPL) model.PLAnalysis {
	analysis := model.PLAnalysis{Issues: []model.PLIssue{}}
	if pl == nil {
		analysis.Grade = gradeFor(0)
		return analysis
	}

	for _, rule := range plRules {
		if issue := rule(pl, IndustryBenchmarks); issue != nil {
			analysis.Issues = append(analysis.Issues, *issue)
		}
	}

	analysis.Score = scoreIssues(analysis.Issues)
	analysis.Grade = gradeFor(analysis.Score)
	return analysis
}

func revenueRule(pl *model.WeeklyPL, _ model.Benchmarks) *model.PLIssue {
	if pl.Revenue.Total > 0 {
		return nil
	}
	return &model.PLIssue{
		Category: model.IssueRevenue,
		Severity: model.SeverityCritical,
		Message:  "No revenue this week. Every cost is coming straight out of cash.",
		Actual:   pl.Revenue.Total,
	}
}

func primeCostRule(pl *model.WeeklyPL, b model.Benchmarks) *model.PLIssue {
	return thresholdIssue(model.IssuePrimeCost, "Prime cost", pl.PrimeCostPercentage, b.PrimeCostTarget, b.PrimeCostTarget, b.PrimeCostMax)
}

func foodCostRule(pl *model.WeeklyPL, b model.Benchmarks) *model.PLIssue {
	return thresholdIssue(model.IssueFoodCost, "Food cost", pl.FoodCostPercentage, b.FoodCostTarget, b.FoodCostWarning, b.FoodCostMax)
}

func laborCostRule(pl *model.WeeklyPL, b model.Benchmarks) *model.PLIssue {
	return thresholdIssue(model.IssueLaborCost, "Labor cost", pl.LaborCostPercentage, b.LaborCostTarget, b.LaborCostWarning, b.LaborCostMax)
}

func occupancyRule(pl *model.WeeklyPL, b model.Benchmarks) *model.PLIssue {
	return thresholdIssue(model.IssueOccupancy, "Rent", pl.OccupancyCostPercentage, b.OccupancyWarning, b.OccupancyWarning, b.OccupancyMax)
}

func profitMarginRule(pl *model.WeeklyPL, b model.Benchmarks) *model.PLIssue {
	if pl.Revenue.Total <= 0 {
		// 无收入时利润率被置 0，亏损由 revenue 规则体现
		return nil
	}
	margin := pl.NetProfitMargin
	switch {
	case margin < 0:
		return &model.PLIssue{
			Category: model.IssueProfitMargin,
			Severity: model.SeverityCritical,
			Message:  fmt.Sprintf("Losing money: net margin is %.1f%%.", margin*100),
			Actual:   margin,
			Target:   b.NetMarginHealthy,
		}
	case margin < b.NetMarginMin:
		return &model.PLIssue{
			Category: model.IssueProfitMargin,
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("Net margin of %.1f%% is below the %.0f%% minimum.", margin*100, b.NetMarginMin*100),
			Actual:   margin,
			Target:   b.NetMarginHealthy,
		}
	}
	return nil
}

// thresholdIssue 超过 warning 为警告，超过 limit 为严重
func thresholdIssue(category model.IssueCategory, label string, actual, target, warning, limit float64) *model.PLIssue {
	var severity model.Severity
	switch {
	case actual > limit:
		severity = model.SeverityCritical
	case actual > warning:
		severity = model.SeverityWarning
	default:
		return nil
	}
	return &model.PLIssue{
		Category: category,
		Severity: severity,
		Message:  fmt.Sprintf("%s is %.1f%% of revenue, above the %.0f%% benchmark.", label, actual*100, target*100),
		Actual:   actual,
		Target:   target,
	}
}

func scoreIssues(issues []model.PLIssue) int {
	score := 100
	for _, it := range issues {
		switch it.Severity {
		case model.SeverityCritical:
			score -= criticalPenalty
		case model.SeverityWarning:
			score -= warningPenalty
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

func gradeFor(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 75:
		return "B"
	case score >= 60:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}
