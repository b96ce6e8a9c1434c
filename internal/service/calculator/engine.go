package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

const (
	foodShare     = 0.75 // 堂食收入中餐食占比
	beverageShare = 0.25 // 堂食收入中饮品占比
	weeksPerMonth = 4
)

var (
	// ErrInvalidInput 输入不是有限数值
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoContributionMargin 每位客人边际贡献不为正，无法保本
	ErrNoContributionMargin = errors.New("contribution margin per cover is not positive")
)

// CalculateWeeklyPL 计算周损益表
// 负数不做拦截，按原值参与计算；收入为 0 时各比率取 0
func CalculateWeeklyPL(in model.OperatingInputs) (*model.WeeklyPL, error) {
	if err := validateOperatingInputs(in); err != nil {
		return nil, err
	}

	dineIn := in.WeeklyCovers * in.AvgTicket
	revenue := model.RevenueBreakdown{
		Food:     dineIn * foodShare,
		Beverage: dineIn * beverageShare,
		Delivery: in.DeliveryOrders * in.DeliveryAvgTicket,
		Catering: in.CateringRevenue,
		Other:    in.OtherRevenue,
	}
	revenue.Total = revenue.Food + revenue.Beverage + revenue.Delivery + revenue.Catering + revenue.Other

	cogs := model.COGS{
		Food:     revenue.Food * in.MenuFoodCostPct,
		Delivery: revenue.Delivery * in.MenuFoodCostPct,
	}
	cogs.Total = cogs.Food + cogs.Delivery

	labor := model.Labor{
		HourlyWages: in.Labor.HourlyWages,
		Salaries:    in.Labor.Salaries,
	}
	labor.Total = labor.HourlyWages + labor.Salaries

	overhead := model.Overhead{
		WeeklyRent:      in.Overhead.WeeklyRent,
		WeeklyUtilities: in.Overhead.WeeklyUtilities,
		WeeklyInsurance: in.Overhead.WeeklyInsurance,
	}
	overhead.Total = overhead.WeeklyRent + overhead.WeeklyUtilities + overhead.WeeklyInsurance

	pl := &model.WeeklyPL{
		Revenue:  revenue,
		COGS:     cogs,
		Labor:    labor,
		Overhead: overhead,
	}
	pl.GrossProfit = revenue.Total - cogs.Total
	pl.PrimeCost = cogs.Total + labor.Total
	pl.TotalExpenses = pl.PrimeCost + overhead.Total
	pl.NetProfit = revenue.Total - pl.TotalExpenses

	pl.PrimeCostPercentage = safeRatio(pl.PrimeCost, revenue.Total)
	pl.FoodCostPercentage = safeRatio(cogs.Total, revenue.Total)
	pl.LaborCostPercentage = safeRatio(labor.Total, revenue.Total)
	pl.OccupancyCostPercentage = safeRatio(overhead.WeeklyRent, revenue.Total)
	pl.NetProfitMargin = safeRatio(pl.NetProfit, revenue.Total)

	return pl, nil
}

// CalculateBreakEven 计算月度保本客数与收入
func CalculateBreakEven(fixedCostsMonthly, avgTicket, foodCostPct, laborCostPct float64) (*model.BreakEven, error) {
	if err := requireFinite(
		field{"fixedCostsMonthly", fixedCostsMonthly},
		field{"avgTicket", avgTicket},
		field{"foodCostPct", foodCostPct},
		field{"laborCostPct", laborCostPct},
	); err != nil {
		return nil, err
	}

	cm := avgTicket * (1 - foodCostPct - laborCostPct)
	if cm <= 0 {
		return nil, fmt.Errorf("%w: %.2f", ErrNoContributionMargin, cm)
	}

	coversPerMonth := fixedCostsMonthly / cm
	return &model.BreakEven{
		ContributionMarginPerCover: cm,
		CoversPerMonth:             coversPerMonth,
		RevenuePerMonth:            coversPerMonth * avgTicket,
		CoversPerWeek:              coversPerMonth / weeksPerMonth,
	}, nil
}

// safeRatio 分母为 0 时返回 0
func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func validateOperatingInputs(in model.OperatingInputs) error {
	return requireFinite(
		field{"weeklyCovers", in.WeeklyCovers},
		field{"avgTicket", in.AvgTicket},
		field{"deliveryOrders", in.DeliveryOrders},
		field{"deliveryAvgTicket", in.DeliveryAvgTicket},
		field{"menuFoodCostPct", in.MenuFoodCostPct},
		field{"cateringRevenue", in.CateringRevenue},
		field{"otherRevenue", in.OtherRevenue},
		field{"labor.hourlyWages", in.Labor.HourlyWages},
		field{"labor.salaries", in.Labor.Salaries},
		field{"overhead.weeklyRent", in.Overhead.WeeklyRent},
		field{"overhead.weeklyUtilities", in.Overhead.WeeklyUtilities},
		field{"overhead.weeklyInsurance", in.Overhead.WeeklyInsurance},
	)
}

type field struct {
	name  string
	value float64
}

func requireFinite(fields ...field) error {
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, f.name)
		}
	}
	return nil
}
