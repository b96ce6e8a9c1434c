package week

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/service/calculator"
	"github.com/justinnewbold/86d-game-sub000/internal/service/cashflow"
)

// Defaults 新门店的初始资金
type Defaults struct {
	StartingCash    float64
	CreditLineLimit float64
	CreditLineRate  float64
}

// NewLocation 以第 1 周开业创建门店，经营数据不合法时返回 calculator.ErrInvalidInput
func NewLocation(name string, ops model.OperatingInputs, d Defaults) (*model.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", calculator.ErrInvalidInput)
	}
	if _, err := calculator.CalculateWeeklyPL(ops); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &model.Location{
		ID:             fmt.Sprintf("loc_%s", uuid.New().String()[:8]),
		Name:           name,
		CurrentWeek:    1,
		OpenedWeek:     1,
		Operations:     ops,
		Menu:           []model.MenuItem{},
		RecurringBills: []model.RecurringBill{},
		CashFlow: model.CashFlowState{
			CashOnHand:             d.StartingCash,
			PendingBills:           []model.Bill{},
			CashFlowHistory:        []model.WeeklyCashFlow{},
			WeeksOfRunway:          cashflow.CalculateRunway(d.StartingCash, 0, nil),
			CashCrunchWarning:      d.StartingCash <= 0,
			CreditLineAvailable:    d.CreditLineLimit,
			CreditLineInterestRate: d.CreditLineRate,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// WithRecurringIDs 返回副本，为没有 ID 的周期账单补上固定 ID
// 之后调整列表顺序不会让已出的账单重复生成
func WithRecurringIDs(bills []model.RecurringBill) []model.RecurringBill {
	out := make([]model.RecurringBill, len(bills))
	for i, b := range bills {
		if b.ID == "" {
			b.ID = fmt.Sprintf("rb_%s", uuid.New().String()[:8])
		}
		out[i] = b
	}
	return out
}
