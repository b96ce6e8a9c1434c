package menu

import (
	"fmt"
	"sort"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

// EmptyMenuInsight 空菜单时的固定提示
const EmptyMenuInsight = "Your menu is empty. Add a few items with prices, food costs and weekly sales to see which ones are stars, puzzles, plow horses and dogs."

// highFoodCostPct 单品食材成本率警戒线
const highFoodCostPct = 0.35

// AnalyzeMenu 菜单工程分析
// 派生字段在副本上重新计算，调用方传入的切片不被修改
func AnalyzeMenu(items []model.MenuItem) model.MenuAnalysis {
	analysis := model.MenuAnalysis{
		Items:               []model.MenuItem{},
		Stars:               []model.MenuItem{},
		Puzzles:             []model.MenuItem{},
		PlowHorses:          []model.MenuItem{},
		Dogs:                []model.MenuItem{},
		Recommendations:     []model.MenuRecommendation{},
		EducationalInsights: []string{},
	}
	if len(items) == 0 {
		analysis.EducationalInsights = append(analysis.EducationalInsights, EmptyMenuInsight)
		return analysis
	}

	derived := deriveItems(items)
	summary := summarize(derived)

	for i := range derived {
		derived[i].Profitability = ClassifyMenuItem(derived[i], summary.AvgContributionMargin, summary.AvgMenuMix)
		switch derived[i].Profitability {
		case model.ProfitabilityStar:
			analysis.Stars = append(analysis.Stars, derived[i])
		case model.ProfitabilityPuzzle:
			analysis.Puzzles = append(analysis.Puzzles, derived[i])
		case model.ProfitabilityPlowHorse:
			analysis.PlowHorses = append(analysis.PlowHorses, derived[i])
		default:
			analysis.Dogs = append(analysis.Dogs, derived[i])
		}
	}

	summary.StarCount = len(analysis.Stars)
	summary.PuzzleCount = len(analysis.Puzzles)
	summary.PlowHorseCount = len(analysis.PlowHorses)
	summary.DogCount = len(analysis.Dogs)

	analysis.Items = derived
	analysis.Summary = summary
	analysis.Recommendations = recommend(analysis)
	analysis.EducationalInsights = insights(analysis)
	return analysis
}

// deriveItems 计算边际贡献、点单占比、食材成本率与人气排名
func deriveItems(items []model.MenuItem) []model.MenuItem {
	out := make([]model.MenuItem, len(items))
	copy(out, items)

	var totalUnits float64
	for _, it := range out {
		totalUnits += it.WeeklyUnitsSold
	}

	for i := range out {
		out[i].ContributionMargin = out[i].Price - out[i].TotalFoodCost
		out[i].MenuMix = ratio(out[i].WeeklyUnitsSold, totalUnits)
		out[i].FoodCostPercentage = ratio(out[i].TotalFoodCost, out[i].Price)
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return out[order[a]].WeeklyUnitsSold > out[order[b]].WeeklyUnitsSold
	})
	for rank, idx := range order {
		out[idx].PopularityRank = rank + 1
	}
	return out
}

func summarize(items []model.MenuItem) model.MenuSummary {
	s := model.MenuSummary{TotalItems: len(items)}

	var marginSum, mixSum float64
	for _, it := range items {
		s.TotalUnitsSold += it.WeeklyUnitsSold
		s.TotalRevenue += it.Price * it.WeeklyUnitsSold
		s.TotalFoodCost += it.TotalFoodCost * it.WeeklyUnitsSold
		marginSum += it.ContributionMargin
		mixSum += it.MenuMix
	}
	n := float64(len(items))
	s.TotalContribution = s.TotalRevenue - s.TotalFoodCost
	s.AvgContributionMargin = ratio(marginSum, n)
	s.AvgMenuMix = ratio(mixSum, n)
	s.AvgFoodCostPercentage = ratio(s.TotalFoodCost, s.TotalRevenue)
	return s
}

func recommend(a model.MenuAnalysis) []model.MenuRecommendation {
	recs := make([]model.MenuRecommendation, 0, 6)

	if len(a.Stars) > 0 {
		recs = append(recs, model.MenuRecommendation{
			Category: string(model.ProfitabilityStar),
			ItemIDs:  itemIDs(a.Stars),
			Action:   "keep",
			Message:  fmt.Sprintf("Protect %s: keep quality and portion consistent and feature them prominently.", itemNames(a.Stars)),
		})
		var out86 []model.MenuItem
		for _, it := range a.Stars {
			if it.Is86d {
				out86 = append(out86, it)
			}
		}
		if len(out86) > 0 {
			recs = append(recs, model.MenuRecommendation{
				Category: "restock",
				ItemIDs:  itemIDs(out86),
				Action:   "restock",
				Message:  fmt.Sprintf("%s is 86'd. Every week it is off the menu costs your best margin.", itemNames(out86)),
			})
		}
	}

	if len(a.Puzzles) > 0 {
		recs = append(recs, model.MenuRecommendation{
			Category: string(model.ProfitabilityPuzzle),
			ItemIDs:  itemIDs(a.Puzzles),
			Action:   "promote",
			Message:  fmt.Sprintf("%s earn well but sell slowly. Move them to a better menu spot, rename them, or have servers suggest them.", itemNames(a.Puzzles)),
		})
	}

	if len(a.PlowHorses) > 0 {
		recs = append(recs, model.MenuRecommendation{
			Category: string(model.ProfitabilityPlowHorse),
			ItemIDs:  itemIDs(a.PlowHorses),
			Action:   "reprice",
			Message:  fmt.Sprintf("%s sell well but earn little. Nudge the price up or trim the plate cost.", itemNames(a.PlowHorses)),
		})
	}

	if len(a.Dogs) > 0 {
		var signature, others []model.MenuItem
		for _, it := range a.Dogs {
			if it.IsSignatureDish {
				signature = append(signature, it)
			} else {
				others = append(others, it)
			}
		}
		if len(others) > 0 {
			recs = append(recs, model.MenuRecommendation{
				Category: string(model.ProfitabilityDog),
				ItemIDs:  itemIDs(others),
				Action:   "remove",
				Message:  fmt.Sprintf("%s neither sell nor earn. Consider dropping them to simplify the kitchen.", itemNames(others)),
			})
		}
		if len(signature) > 0 {
			recs = append(recs, model.MenuRecommendation{
				Category: string(model.ProfitabilityDog),
				ItemIDs:  itemIDs(signature),
				Action:   "rework",
				Message:  fmt.Sprintf("%s is a signature dish but underperforms. Rework the recipe or price instead of removing it.", itemNames(signature)),
			})
		}
	}

	var costly []model.MenuItem
	for _, it := range a.Items {
		if it.FoodCostPercentage > highFoodCostPct {
			costly = append(costly, it)
		}
	}
	if len(costly) > 0 {
		recs = append(recs, model.MenuRecommendation{
			Category: "food_cost",
			ItemIDs:  itemIDs(costly),
			Action:   "reduce_cost",
			Message:  fmt.Sprintf("%s run above a %.0f%% food cost.", itemNames(costly), highFoodCostPct*100),
		})
	}

	return recs
}

func insights(a model.MenuAnalysis) []string {
	s := a.Summary
	out := []string{
		fmt.Sprintf("Your average item contributes $%.2f after food cost; items at or above that line count as high margin.", s.AvgContributionMargin),
		fmt.Sprintf("An average item accounts for %.1f%% of sales; items at or above that share count as popular.", s.AvgMenuMix*100),
		fmt.Sprintf("You have %d star(s), %d puzzle(s), %d plow horse(s) and %d dog(s).", s.StarCount, s.PuzzleCount, s.PlowHorseCount, s.DogCount),
	}
	if s.TotalRevenue > 0 {
		out = append(out, fmt.Sprintf("Menu-wide food cost is %.1f%% of item sales.", s.AvgFoodCostPercentage*100))
	}
	if s.StarCount == 0 {
		out = append(out, "No item is both popular and profitable yet. Stars are what carry a menu.")
	}
	return out
}

func itemIDs(items []model.MenuItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func itemNames(items []model.MenuItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	out := ""
	for i, n := range names {
		switch {
		case i == 0:
			out = n
		case i == len(names)-1:
			out += ", and " + n
		default:
			out += ", " + n
		}
	}
	return out
}

// ratio 分母为 0 时返回 0
func ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
