package menu

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

// NoCostDriver 空配方时的成本驱动项
const NoCostDriver = "None"

// ErrInvalidInput 输入不合法
var ErrInvalidInput = errors.New("invalid input")

// priceEnding 心理价位尾数
var priceEnding = decimal.RequireFromString("0.99")

// CalculateRecipeCost 汇总配方成本并找出最大成本项（并列取第一个）
func CalculateRecipeCost(ingredients []model.RecipeIngredient) model.RecipeCost {
	if len(ingredients) == 0 {
		return model.RecipeCost{TotalCost: 0, LargestCostDriver: NoCostDriver}
	}

	total := decimal.Zero
	driver := ingredients[0]
	for _, ing := range ingredients {
		total = total.Add(decimal.NewFromFloat(ing.TotalCost))
		if ing.TotalCost > driver.TotalCost {
			driver = ing
		}
	}

	return model.RecipeCost{
		TotalCost:         total.InexactFloat64(),
		LargestCostDriver: driver.Name,
	}
}

// SuggestPrice 按目标食材成本率给出 .99 结尾的建议价
// competitorPrice 为 nil 时不做竞品对比
func SuggestPrice(cost, targetFoodCostPct float64, competitorPrice *float64) (*model.PriceSuggestion, error) {
	if !isFinite(cost) || !isFinite(targetFoodCostPct) {
		return nil, fmt.Errorf("%w: cost and target food cost must be finite numbers", ErrInvalidInput)
	}
	if cost < 0 {
		return nil, fmt.Errorf("%w: cost must not be negative, got %v", ErrInvalidInput, cost)
	}
	if targetFoodCostPct <= 0 || targetFoodCostPct >= 1 {
		return nil, fmt.Errorf("%w: target food cost %% must be between 0 and 1, got %v", ErrInvalidInput, targetFoodCostPct)
	}
	if competitorPrice != nil && !isFinite(*competitorPrice) {
		return nil, fmt.Errorf("%w: competitor price must be a finite number", ErrInvalidInput)
	}

	raw := decimal.NewFromFloat(cost).Div(decimal.NewFromFloat(targetFoodCostPct))
	// 取不低于原始价的最小 n.99
	tier := decimal.Max(raw.Sub(priceEnding).Ceil(), decimal.Zero)
	suggested := tier.Add(priceEnding)

	s := &model.PriceSuggestion{
		RawPrice:       raw.Round(2).InexactFloat64(),
		SuggestedPrice: suggested.InexactFloat64(),
	}
	s.FoodCostPercentage = ratio(cost, s.SuggestedPrice)

	if competitorPrice != nil {
		competitor := decimal.NewFromFloat(*competitorPrice)
		diff := suggested.Sub(competitor)
		cmp := &model.CompetitorComparison{
			CompetitorPrice: *competitorPrice,
			Difference:      diff.InexactFloat64(),
		}
		if !competitor.IsZero() {
			cmp.DifferencePct = diff.Div(competitor).Round(4).InexactFloat64()
		}
		switch diff.Sign() {
		case 1:
			cmp.Position = "above"
		case -1:
			cmp.Position = "below"
		default:
			cmp.Position = "at"
		}
		s.VsCompetitor = cmp
	}
	return s, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
