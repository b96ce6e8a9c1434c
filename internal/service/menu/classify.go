package menu

import "github.com/justinnewbold/86d-game-sub000/internal/model"

// ClassifyMenuItem 按边际贡献与点单占比的四象限分类，等于平均值视为“高”
func ClassifyMenuItem(item model.MenuItem, avgContributionMargin, avgMenuMix float64) model.Profitability {
	highMargin := item.ContributionMargin >= avgContributionMargin
	highMix := item.MenuMix >= avgMenuMix

	switch {
	case highMargin && highMix:
		return model.ProfitabilityStar
	case highMargin:
		return model.ProfitabilityPuzzle
	case highMix:
		return model.ProfitabilityPlowHorse
	default:
		return model.ProfitabilityDog
	}
}
