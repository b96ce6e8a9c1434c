package model

import "time"

// LaborInputs 周人工投入（已汇总）
type LaborInputs struct {
	HourlyWages float64 `json:"hourlyWages"`
	Salaries    float64 `json:"salaries"`
}

// OverheadInputs 周固定费用投入
type OverheadInputs struct {
	WeeklyRent      float64 `json:"weeklyRent"`
	WeeklyUtilities float64 `json:"weeklyUtilities"`
	WeeklyInsurance float64 `json:"weeklyInsurance"`
}

// OperatingInputs 计算周损益所需的经营数据
type OperatingInputs struct {
	WeeklyCovers      float64        `json:"weeklyCovers"`
	AvgTicket         float64        `json:"avgTicket"`
	DeliveryOrders    float64        `json:"deliveryOrders"`
	DeliveryAvgTicket float64        `json:"deliveryAvgTicket"`
	MenuFoodCostPct   float64        `json:"menuFoodCostPct"`
	CateringRevenue   float64        `json:"cateringRevenue"`
	OtherRevenue      float64        `json:"otherRevenue"`
	Labor             LaborInputs    `json:"labor"`
	Overhead          OverheadInputs `json:"overhead"`
}

// Location 存档中的一家门店
type Location struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CurrentWeek    int             `json:"currentWeek"` // 下一次推进将结算的周
	OpenedWeek     int             `json:"openedWeek"`  // 租金周期锚点
	Operations     OperatingInputs `json:"operations"`
	Menu           []MenuItem      `json:"menu"`
	RecurringBills []RecurringBill `json:"recurringBills"`
	CashFlow       CashFlowState   `json:"cashFlow"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
