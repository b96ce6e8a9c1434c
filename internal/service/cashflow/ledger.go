package cashflow

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

const (
	// LowRunwayWeeks 跑道低于该周数时预警
	LowRunwayWeeks = 4

	weeksPerYear = 52
)

// ErrInvalidInput 输入不合法
var ErrInvalidInput = errors.New("invalid input")

// WeeklyCashFlowInput 周现金流结算输入
type WeeklyCashFlowInput struct {
	Week                int                 `json:"week"`
	State               model.CashFlowState `json:"state"`
	Receipts            model.CashReceipts  `json:"receipts"`
	WeeklyExpensesTotal float64             `json:"weeklyExpensesTotal"` // 非账单类周支出，计入供应商付款
	// AccountingProfit 本周会计利润，为 nil 时取 到账现金 - 周支出
	AccountingProfit *float64 `json:"accountingProfit,omitempty"`
}

// WeeklyCashFlowResult 周现金流结算结果
type WeeklyCashFlowResult struct {
	WeekFlow  model.WeeklyCashFlow  `json:"weekFlow"`
	NewState  model.CashFlowState   `json:"newState"`
	PaidBills []model.Bill          `json:"paidBills"`
	Alerts    []model.CashFlowAlert `json:"alerts"`
}

// ProcessWeeklyCashFlow 结算一周现金流，返回新的台账，不修改输入
func ProcessWeeklyCashFlow(in WeeklyCashFlowInput) (*WeeklyCashFlowResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	state := in.State
	flow := model.WeeklyCashFlow{
		Week:             in.Week,
		CashFromSales:    in.Receipts.Sales,
		CashFromDelivery: in.Receipts.Delivery,
		CashFromCatering: in.Receipts.Catering,
		CashFromOther:    in.Receipts.Other,
		TotalCashIn:      in.Receipts.Total(),
		SuppliersPaid:    in.WeeklyExpensesTotal,
	}

	// 信用额度利息先于账单支付
	interest := state.CreditLineUsed * state.CreditLineInterestRate / weeksPerYear
	if interest > 0 {
		flow.OtherPaid += interest
	}

	available := state.CashOnHand + flow.TotalCashIn - in.WeeklyExpensesTotal - interest
	creditUsed := state.CreditLineUsed

	due, notDue := splitDueBills(state.PendingBills, in.Week)

	var (
		paid         []model.Bill
		pending      = notDue
		alerts       []model.CashFlowAlert
		creditDrawn  float64
		newlyOverdue []model.Bill
	)
	for _, b := range due {
		switch {
		case available >= b.Amount:
			available -= b.Amount
			addPaid(&flow, b)
			b.IsPaid = true
			b.IsOverdue = false
			paid = append(paid, b)
		case state.CreditLineAvailable-creditUsed >= b.Amount:
			// 由信用额度直接支付，不经过现金
			creditUsed += b.Amount
			creditDrawn += b.Amount
			b.IsPaid = true
			b.IsOverdue = false
			paid = append(paid, b)
		default:
			if !b.IsOverdue {
				newlyOverdue = append(newlyOverdue, b)
			}
			b.IsOverdue = true
			pending = append(pending, b)
		}
	}
	sortBills(pending)

	// 本周没有动用额度时，才用结余归还
	if creditDrawn == 0 {
		if repay := creditRepayment(available, creditUsed, state.CashOnHand, pending, in.Week); repay > 0 {
			creditUsed -= repay
			flow.LoanPaymentsPaid += repay
		}
	}

	flow.TotalCashOut = flow.RentPaid + flow.PayrollPaid + flow.SuppliersPaid + flow.UtilitiesPaid +
		flow.LoanPaymentsPaid + flow.TaxesPaid + flow.OtherPaid
	flow.NetCashFlow = flow.TotalCashIn - flow.TotalCashOut
	flow.EndingCash = state.CashOnHand + flow.NetCashFlow
	if in.AccountingProfit != nil {
		flow.AccountingProfit = *in.AccountingProfit
	} else {
		flow.AccountingProfit = flow.TotalCashIn - in.WeeklyExpensesTotal
	}
	flow.CashFlowDifference = flow.AccountingProfit - flow.NetCashFlow

	history := make([]model.WeeklyCashFlow, 0, len(state.CashFlowHistory)+1)
	history = append(history, state.CashFlowHistory...)
	history = append(history, flow)

	burn := math.Max(0, in.WeeklyExpensesTotal-flow.TotalCashIn)
	runway := RunwayFrom(in.Week, flow.EndingCash, burn, pending)

	newState := model.CashFlowState{
		CashOnHand:             flow.EndingCash,
		PendingBills:           pending,
		AccountsReceivable:     state.AccountsReceivable,
		CashFlowHistory:        history,
		WeeksOfRunway:          runway,
		CashCrunchWarning:      runway < LowRunwayWeeks || flow.EndingCash < 0,
		CreditLineAvailable:    state.CreditLineAvailable,
		CreditLineUsed:         creditUsed,
		CreditLineInterestRate: state.CreditLineInterestRate,
	}

	alerts = append(alerts, evaluateAlerts(flow, newState, newlyOverdue, creditDrawn)...)

	if paid == nil {
		paid = []model.Bill{}
	}
	return &WeeklyCashFlowResult{
		WeekFlow:  flow,
		NewState:  newState,
		PaidBills: paid,
		Alerts:    alerts,
	}, nil
}

// creditRepayment 可归还的信用额度：只动用超出期初现金和近期账单的部分
// 仍有逾期账单时先不还
func creditRepayment(available, used, openingCash float64, pending []model.Bill, week int) float64 {
	if used <= 0 {
		return 0
	}
	dueSoon := 0.0
	for _, b := range pending {
		if b.IsOverdue {
			return 0
		}
		if b.DueWeek <= week+LowRunwayWeeks {
			dueSoon += b.Amount
		}
	}
	reserve := math.Max(math.Max(openingCash, 0), dueSoon)
	return math.Min(used, math.Max(0, available-reserve))
}

// splitDueBills 拆分本周（含以前）到期与未到期的未付账单，返回副本
func splitDueBills(bills []model.Bill, week int) (due, notDue []model.Bill) {
	due = make([]model.Bill, 0)
	notDue = make([]model.Bill, 0, len(bills))
	for _, b := range bills {
		if b.IsPaid {
			continue
		}
		if b.DueWeek <= week {
			due = append(due, b)
		} else {
			notDue = append(notDue, b)
		}
	}
	sortBills(due)
	return due, notDue
}

func sortBills(bills []model.Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].DueWeek < bills[j].DueWeek
	})
}

// addPaid 按账单类型归集付款
func addPaid(flow *model.WeeklyCashFlow, b model.Bill) {
	switch b.Type {
	case model.BillRent:
		flow.RentPaid += b.Amount
	case model.BillPayroll:
		flow.PayrollPaid += b.Amount
	case model.BillSupplier:
		flow.SuppliersPaid += b.Amount
	case model.BillUtilities:
		flow.UtilitiesPaid += b.Amount
	case model.BillLoan:
		flow.LoanPaymentsPaid += b.Amount
	case model.BillTax:
		flow.TaxesPaid += b.Amount
	default:
		flow.OtherPaid += b.Amount
	}
}

func validateInput(in WeeklyCashFlowInput) error {
	if in.Week < 1 {
		return fmt.Errorf("%w: week must be >= 1, got %d", ErrInvalidInput, in.Week)
	}
	values := map[string]float64{
		"state.cashOnHand":             in.State.CashOnHand,
		"state.creditLineAvailable":    in.State.CreditLineAvailable,
		"state.creditLineUsed":         in.State.CreditLineUsed,
		"state.creditLineInterestRate": in.State.CreditLineInterestRate,
		"receipts.sales":               in.Receipts.Sales,
		"receipts.delivery":            in.Receipts.Delivery,
		"receipts.catering":            in.Receipts.Catering,
		"receipts.other":               in.Receipts.Other,
		"weeklyExpensesTotal":          in.WeeklyExpensesTotal,
	}
	if in.AccountingProfit != nil {
		values["accountingProfit"] = *in.AccountingProfit
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v := values[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, name)
		}
	}
	for _, b := range in.State.PendingBills {
		if math.IsNaN(b.Amount) || math.IsInf(b.Amount, 0) {
			return fmt.Errorf("%w: bill %s amount must be a finite number", ErrInvalidInput, b.ID)
		}
	}
	return nil
}
