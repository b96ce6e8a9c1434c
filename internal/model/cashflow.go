package model

// BillType 账单类型（调用方可自行扩展）
type BillType string

const (
	BillRent      BillType = "rent"
	BillPayroll   BillType = "payroll"
	BillUtilities BillType = "utilities"
	BillSupplier  BillType = "supplier"
	BillLoan      BillType = "loan"
	BillInsurance BillType = "insurance"
	BillTax       BillType = "tax"
	BillOther     BillType = "other"
)

// Bill 待付账单
// 生命周期：pending -> paid，或到期无力支付时 pending -> overdue
type Bill struct {
	ID          string   `json:"id"`
	Type        BillType `json:"type"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	DueWeek     int      `json:"dueWeek"`
	IsPaid      bool     `json:"isPaid"`
	IsOverdue   bool     `json:"isOverdue"`
}

// RecurringBill 调用方定义的额外周期账单（贷款、供应商合同等）
// ID 为空时按在列表中的位置生成
type RecurringBill struct {
	ID            string   `json:"id,omitempty"`
	Type          BillType `json:"type"`
	Description   string   `json:"description"`
	Amount        float64  `json:"amount"`
	IntervalWeeks int      `json:"intervalWeeks"`
	AnchorWeek    int      `json:"anchorWeek"`
}

// CashReceipts 本周实际到账现金
type CashReceipts struct {
	Sales    float64 `json:"sales"`
	Delivery float64 `json:"delivery"`
	Catering float64 `json:"catering"`
	Other    float64 `json:"other"`
}

// Total 到账合计
func (r CashReceipts) Total() float64 {
	return r.Sales + r.Delivery + r.Catering + r.Other
}

// ReceiptsFromRevenue 由收入构成得到到账现金（堂食餐食+饮品计为 sales）
func ReceiptsFromRevenue(rev RevenueBreakdown) CashReceipts {
	return CashReceipts{
		Sales:    rev.Food + rev.Beverage,
		Delivery: rev.Delivery,
		Catering: rev.Catering,
		Other:    rev.Other,
	}
}

// WeeklyCashFlow 周现金流记录，只追加不修改
type WeeklyCashFlow struct {
	Week int `json:"week"`

	CashFromSales    float64 `json:"cashFromSales"`
	CashFromDelivery float64 `json:"cashFromDelivery"`
	CashFromCatering float64 `json:"cashFromCatering"`
	CashFromOther    float64 `json:"cashFromOther"`
	TotalCashIn      float64 `json:"totalCashIn"`

	RentPaid         float64 `json:"rentPaid"`
	PayrollPaid      float64 `json:"payrollPaid"`
	SuppliersPaid    float64 `json:"suppliersPaid"`
	UtilitiesPaid    float64 `json:"utilitiesPaid"`
	LoanPaymentsPaid float64 `json:"loanPaymentsPaid"`
	TaxesPaid        float64 `json:"taxesPaid"`
	OtherPaid        float64 `json:"otherPaid"`
	TotalCashOut     float64 `json:"totalCashOut"`

	NetCashFlow        float64 `json:"netCashFlow"`
	EndingCash         float64 `json:"endingCash"`
	AccountingProfit   float64 `json:"accountingProfit"`
	CashFlowDifference float64 `json:"cashFlowDifference"` // 会计利润 - 净现金流
}

// CashFlowState 调用方持有的现金台账
type CashFlowState struct {
	CashOnHand         float64          `json:"cashOnHand"`
	PendingBills       []Bill           `json:"pendingBills"`
	AccountsReceivable float64          `json:"accountsReceivable"`
	CashFlowHistory    []WeeklyCashFlow `json:"cashFlowHistory"`
	WeeksOfRunway      int              `json:"weeksOfRunway"`
	CashCrunchWarning  bool             `json:"cashCrunchWarning"`

	CreditLineAvailable    float64 `json:"creditLineAvailable"`
	CreditLineUsed         float64 `json:"creditLineUsed"`
	CreditLineInterestRate float64 `json:"creditLineInterestRate"` // 年化
}

// AlertType 现金流预警类型
type AlertType string

const (
	AlertProfitableButNegativeCash AlertType = "profitable_but_negative_cash"
	AlertLowRunway                 AlertType = "low_runway"
	AlertBillOverdue               AlertType = "bill_overdue"
	AlertNegativeCash              AlertType = "negative_cash"
	AlertCreditLineDrawn           AlertType = "credit_line_drawn"
)

// CashFlowAlert 现金流预警
type CashFlowAlert struct {
	Type     AlertType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}
