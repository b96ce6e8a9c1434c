package cashflow

import (
	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

// evaluateAlerts 逐条独立判断，互不抑制
func evaluateAlerts(flow model.WeeklyCashFlow, state model.CashFlowState, newlyOverdue []model.Bill, creditDrawn float64) []model.CashFlowAlert {
	alerts := make([]model.CashFlowAlert, 0)

	if flow.AccountingProfit > 0 && flow.NetCashFlow < 0 {
		alerts = append(alerts, model.CashFlowAlert{
			Type:     model.AlertProfitableButNegativeCash,
			Severity: model.SeverityWarning,
			Message: printer.Sprintf("You made %s in profit but cash dropped by %s this week.",
				money(flow.AccountingProfit), money(-flow.NetCashFlow)),
		})
	}

	if state.WeeksOfRunway < LowRunwayWeeks {
		severity := model.SeverityWarning
		if state.WeeksOfRunway <= 1 {
			severity = model.SeverityCritical
		}
		alerts = append(alerts, model.CashFlowAlert{
			Type:     model.AlertLowRunway,
			Severity: severity,
			Message:  printer.Sprintf("Only %d week(s) of cash runway left.", state.WeeksOfRunway),
		})
	}

	for _, b := range newlyOverdue {
		alerts = append(alerts, model.CashFlowAlert{
			Type:     model.AlertBillOverdue,
			Severity: model.SeverityCritical,
			Message:  printer.Sprintf("%s bill of %s due week %d could not be paid.", b.Type, money(b.Amount), b.DueWeek),
		})
	}

	if state.CashOnHand < 0 {
		alerts = append(alerts, model.CashFlowAlert{
			Type:     model.AlertNegativeCash,
			Severity: model.SeverityCritical,
			Message:  printer.Sprintf("Cash on hand is negative: %s.", money(state.CashOnHand)),
		})
	}

	if creditDrawn > 0 {
		alerts = append(alerts, model.CashFlowAlert{
			Type:     model.AlertCreditLineDrawn,
			Severity: model.SeverityInfo,
			Message: printer.Sprintf("Drew %s from the credit line to cover bills (%s of %s used).",
				money(creditDrawn), money(state.CreditLineUsed), money(state.CreditLineAvailable)),
		})
	}

	return alerts
}
