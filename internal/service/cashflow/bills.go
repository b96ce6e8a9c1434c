package cashflow

import (
	"fmt"
	"sort"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

const (
	// BillHorizonWeeks 账单生成的前瞻周数（覆盖 3 个租金周期、6 个工资周期）
	BillHorizonWeeks = 12

	rentCycleWeeks    = 4
	payrollCycleWeeks = 2
	utilityCycleWeeks = 4
	utilityOffset     = 2 // 水电账单错开租金周 2 周
)

// BillScheduleInput 账单生成参数
type BillScheduleInput struct {
	StartWeek      int                   `json:"startWeek"`
	RentAnchorWeek int                   `json:"rentAnchorWeek"` // 为 0 时取 StartWeek
	WeeklyRent     float64               `json:"weeklyRent"`
	WeeklyPayroll  float64               `json:"weeklyPayroll"`
	WeeklyOther    float64               `json:"weeklyOther"`
	ExistingBills  []model.Bill          `json:"existingBills"`
	ExtraRecurring []model.RecurringBill `json:"extraRecurring"`
}

// GenerateUpcomingBills 生成未来 BillHorizonWeeks 周内尚不存在的周期账单
// 账单 ID 为 <周期键>-w<周>，已有账单按 ID 去重；只返回新生成的账单，按到期周、类型排序
func GenerateUpcomingBills(in BillScheduleInput) []model.Bill {
	anchor := in.RentAnchorWeek
	if anchor == 0 {
		anchor = in.StartWeek
	}

	taken := make(map[string]bool, len(in.ExistingBills))
	for _, b := range in.ExistingBills {
		taken[b.ID] = true
	}

	bills := make([]model.Bill, 0)
	add := func(key string, t model.BillType, desc string, amount float64, week int) {
		if amount <= 0 {
			return
		}
		id := fmt.Sprintf("%s-w%d", key, week)
		if taken[id] {
			return
		}
		taken[id] = true
		bills = append(bills, model.Bill{
			ID:          id,
			Type:        t,
			Description: desc,
			Amount:      amount,
			DueWeek:     week,
		})
	}

	end := in.StartWeek + BillHorizonWeeks
	for week := in.StartWeek; week < end; week++ {
		if mod(week, rentCycleWeeks) == mod(anchor, rentCycleWeeks) {
			add(string(model.BillRent), model.BillRent, "Monthly rent", in.WeeklyRent*rentCycleWeeks, week)
		}
		if mod(week, payrollCycleWeeks) == 0 {
			add(string(model.BillPayroll), model.BillPayroll, "Bi-weekly payroll", in.WeeklyPayroll*payrollCycleWeeks, week)
		}
		if mod(week-anchor, utilityCycleWeeks) == utilityOffset {
			add(string(model.BillUtilities), model.BillUtilities, "Utilities and insurance", in.WeeklyOther*utilityCycleWeeks, week)
		}
		for i, r := range in.ExtraRecurring {
			if r.IntervalWeeks <= 0 || week < r.AnchorWeek {
				continue
			}
			if (week-r.AnchorWeek)%r.IntervalWeeks == 0 {
				add(RecurringKey(i, r), r.Type, r.Description, r.Amount, week)
			}
		}
	}

	sort.SliceStable(bills, func(i, j int) bool {
		if bills[i].DueWeek != bills[j].DueWeek {
			return bills[i].DueWeek < bills[j].DueWeek
		}
		return bills[i].Type < bills[j].Type
	})
	return bills
}

// RecurringKey 周期账单的去重键：优先用调用方给的 ID，否则用类型加序号
// 同类型的多份合同因此各自出账
func RecurringKey(index int, r model.RecurringBill) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("%s-%d", r.Type, index+1)
}

// mod 非负取模
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
