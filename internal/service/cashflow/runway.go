package cashflow

import "github.com/justinnewbold/86d-game-sub000/internal/model"

// RunwayCapWeeks 跑道预测上限，超过一年的预测没有意义
const RunwayCapWeeks = 52

// CalculateRunway 逐周模拟现金消耗，返回现金耗尽（<= 0）的周序号
// bills 的 DueWeek 为相对周：1 表示下一周
func CalculateRunway(cashOnHand, weeklyBurnRate float64, bills []model.Bill) int {
	return RunwayFrom(0, cashOnHand, weeklyBurnRate, bills)
}

// RunwayFrom 以 currentWeek 为基准计算跑道，bills 的 DueWeek 为绝对周
// 已逾期未付的账单计入第 1 周，金额非正的账单不计
func RunwayFrom(currentWeek int, cashOnHand, weeklyBurnRate float64, bills []model.Bill) int {
	if cashOnHand <= 0 {
		return 0
	}

	due := make(map[int]float64)
	for _, b := range bills {
		if b.IsPaid || b.Amount <= 0 {
			continue
		}
		offset := b.DueWeek - currentWeek
		if offset < 1 {
			offset = 1
		}
		if offset > RunwayCapWeeks {
			continue
		}
		due[offset] += b.Amount
	}

	cash := cashOnHand
	for week := 1; week <= RunwayCapWeeks; week++ {
		cash -= weeklyBurnRate + due[week]
		if cash <= 0 {
			return week
		}
	}
	return RunwayCapWeeks
}
