package cashflow

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

var printer = message.NewPrinter(language.English)

// gapTolerance 小于 1 美分视为无差异
const gapTolerance = 0.01

// money 格式化为 $1,234 / -$1,234
func money(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.0f", -v)
	}
	return printer.Sprintf("$%.0f", v)
}

// ExplainCashFlowGap 用自然语言解释会计利润与现金流之间的差异，不修改任何状态
func ExplainCashFlowGap(record model.WeeklyCashFlow) string {
	profit := record.AccountingProfit
	net := record.NetCashFlow
	gap := profit - net

	var b strings.Builder
	switch {
	case math.Abs(gap) < gapTolerance:
		b.WriteString(printer.Sprintf("Week %d: cash moved in step with profit (%s). ", record.Week, money(profit)))
	case profit > 0 && net < 0:
		b.WriteString(printer.Sprintf(
			"Week %d: you were profitable on paper (%s profit), yet cash fell by %s. ",
			record.Week, money(profit), money(-net)))
		b.WriteString("Profit counts what you earned this week; cash counts what actually left the bank. ")
	case profit > net:
		if profit > 0 {
			b.WriteString(printer.Sprintf(
				"Week %d: you were profitable (%s), but only %s of net cash came in. ",
				record.Week, money(profit), money(net)))
		} else {
			b.WriteString(printer.Sprintf(
				"Week %d: you lost %s on paper, and cash fell further (%s). ",
				record.Week, money(-profit), money(net)))
		}
	default:
		if profit < 0 {
			b.WriteString(printer.Sprintf(
				"Week %d: you lost %s on paper, but cash held up better (%s net). ",
				record.Week, money(-profit), money(net)))
		} else {
			b.WriteString(printer.Sprintf(
				"Week %d: cash grew by %s, more than the %s profit. ",
				record.Week, money(net), money(profit)))
		}
		b.WriteString("Bills that were not paid this week will still come due, so do not spend the difference. ")
	}

	if gap > gapTolerance {
		b.WriteString(printer.Sprintf("The %s gap went to ", money(gap)))
		b.WriteString(describeOutflows(record))
		b.WriteString(". ")
	}

	b.WriteString(printer.Sprintf("Ending cash: %s.", money(record.EndingCash)))
	return b.String()
}

// describeOutflows 列出本周的大额集中付款
func describeOutflows(record model.WeeklyCashFlow) string {
	parts := make([]string, 0, 6)
	add := func(label string, v float64) {
		if v > 0 {
			parts = append(parts, printer.Sprintf("%s %s", label, money(v)))
		}
	}
	add("rent", record.RentPaid)
	add("payroll", record.PayrollPaid)
	add("utilities", record.UtilitiesPaid)
	add("loan payments", record.LoanPaymentsPaid)
	add("taxes", record.TaxesPaid)
	add("other bills", record.OtherPaid)

	if len(parts) == 0 {
		return "costs booked this week that have not been collected as cash yet"
	}
	if len(parts) == 1 {
		return "bills paid in a lump sum: " + parts[0]
	}
	return "bills paid in lump sums: " + strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
