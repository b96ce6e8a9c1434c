package store

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

// PLRecord 周损益历史
type PLRecord struct {
	LocationID string         `json:"locationId"`
	Week       int            `json:"week"`
	PL         model.WeeklyPL `json:"pl"`
	Score      int            `json:"score"`
	Grade      string         `json:"grade"`
	RecordedAt time.Time      `json:"recordedAt"`
}

// CashFlowRecord 周现金流历史
type CashFlowRecord struct {
	LocationID    string               `json:"locationId"`
	Flow          model.WeeklyCashFlow `json:"flow"`
	WeeksOfRunway int                  `json:"weeksOfRunway"`
	RecordedAt    time.Time            `json:"recordedAt"`
}

// WeekEntry 一次周结算要落库的数据
type WeekEntry struct {
	LocationID    string
	Week          int
	PL            *model.WeeklyPL
	Analysis      model.PLAnalysis
	Flow          model.WeeklyCashFlow
	WeeksOfRunway int
}

// AppendWeek 在同一事务中写入周损益与周现金流，同一门店同一周重复写入时覆盖
func (s *Store) AppendWeek(e WeekEntry) error {
	if e.PL == nil {
		return fmt.Errorf("append week %d for %s: missing P&L", e.Week, e.LocationID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("append week %d for %s: begin: %w", e.Week, e.LocationID, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	pl := e.PL

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO weekly_pl (
			location_id, week,
			revenue_food, revenue_beverage, revenue_delivery, revenue_catering, revenue_other, revenue_total,
			cogs_food, cogs_delivery, cogs_total,
			labor_hourly_wages, labor_salaries, labor_total,
			overhead_rent, overhead_utilities, overhead_insurance, overhead_total,
			gross_profit, prime_cost, total_expenses, net_profit,
			prime_cost_pct, food_cost_pct, labor_cost_pct, occupancy_cost_pct, net_profit_margin,
			score, grade, recorded_at
		) VALUES (
			?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?
		)`,
		e.LocationID, e.Week,
		pl.Revenue.Food, pl.Revenue.Beverage, pl.Revenue.Delivery, pl.Revenue.Catering, pl.Revenue.Other, pl.Revenue.Total,
		pl.COGS.Food, pl.COGS.Delivery, pl.COGS.Total,
		pl.Labor.HourlyWages, pl.Labor.Salaries, pl.Labor.Total,
		pl.Overhead.WeeklyRent, pl.Overhead.WeeklyUtilities, pl.Overhead.WeeklyInsurance, pl.Overhead.Total,
		pl.GrossProfit, pl.PrimeCost, pl.TotalExpenses, pl.NetProfit,
		pl.PrimeCostPercentage, pl.FoodCostPercentage, pl.LaborCostPercentage, pl.OccupancyCostPercentage, pl.NetProfitMargin,
		e.Analysis.Score, e.Analysis.Grade, now,
	); err != nil {
		return fmt.Errorf("append week %d for %s: weekly_pl: %w", e.Week, e.LocationID, err)
	}

	f := e.Flow
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO cash_flow_records (
			location_id, week,
			cash_from_sales, cash_from_delivery, cash_from_catering, cash_from_other, total_cash_in,
			rent_paid, payroll_paid, suppliers_paid, utilities_paid, loan_payments_paid, taxes_paid, other_paid, total_cash_out,
			net_cash_flow, ending_cash, accounting_profit, cash_flow_difference, weeks_of_runway,
			recorded_at
		) VALUES (
			?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?
		)`,
		e.LocationID, e.Week,
		f.CashFromSales, f.CashFromDelivery, f.CashFromCatering, f.CashFromOther, f.TotalCashIn,
		f.RentPaid, f.PayrollPaid, f.SuppliersPaid, f.UtilitiesPaid, f.LoanPaymentsPaid, f.TaxesPaid, f.OtherPaid, f.TotalCashOut,
		f.NetCashFlow, f.EndingCash, f.AccountingProfit, f.CashFlowDifference, e.WeeksOfRunway,
		now,
	); err != nil {
		return fmt.Errorf("append week %d for %s: cash_flow_records: %w", e.Week, e.LocationID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append week %d for %s: commit: %w", e.Week, e.LocationID, err)
	}
	s.logger.Debug("week recorded", zap.String("locationId", e.LocationID), zap.Int("week", e.Week))
	return nil
}

// ListPL 按周升序列出门店的损益历史
func (s *Store) ListPL(locationID string) ([]PLRecord, error) {
	rows, err := s.db.Query(`
		SELECT
			location_id, week,
			revenue_food, revenue_beverage, revenue_delivery, revenue_catering, revenue_other, revenue_total,
			cogs_food, cogs_delivery, cogs_total,
			labor_hourly_wages, labor_salaries, labor_total,
			overhead_rent, overhead_utilities, overhead_insurance, overhead_total,
			gross_profit, prime_cost, total_expenses, net_profit,
			prime_cost_pct, food_cost_pct, labor_cost_pct, occupancy_cost_pct, net_profit_margin,
			score, grade, recorded_at
		FROM weekly_pl
		WHERE location_id = ?
		ORDER BY week ASC
	`, locationID)
	if err != nil {
		return nil, fmt.Errorf("list P&L for %s: %w", locationID, err)
	}
	defer rows.Close()

	out := make([]PLRecord, 0)
	for rows.Next() {
		var r PLRecord
		pl := &r.PL
		if err := rows.Scan(
			&r.LocationID, &r.Week,
			&pl.Revenue.Food, &pl.Revenue.Beverage, &pl.Revenue.Delivery, &pl.Revenue.Catering, &pl.Revenue.Other, &pl.Revenue.Total,
			&pl.COGS.Food, &pl.COGS.Delivery, &pl.COGS.Total,
			&pl.Labor.HourlyWages, &pl.Labor.Salaries, &pl.Labor.Total,
			&pl.Overhead.WeeklyRent, &pl.Overhead.WeeklyUtilities, &pl.Overhead.WeeklyInsurance, &pl.Overhead.Total,
			&pl.GrossProfit, &pl.PrimeCost, &pl.TotalExpenses, &pl.NetProfit,
			&pl.PrimeCostPercentage, &pl.FoodCostPercentage, &pl.LaborCostPercentage, &pl.OccupancyCostPercentage, &pl.NetProfitMargin,
			&r.Score, &r.Grade, &r.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("list P&L for %s: scan: %w", locationID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list P&L for %s: %w", locationID, err)
	}
	return out, nil
}

// ListCashFlow 按周升序列出门店的现金流历史
func (s *Store) ListCashFlow(locationID string) ([]CashFlowRecord, error) {
	rows, err := s.db.Query(`
		SELECT
			location_id, week,
			cash_from_sales, cash_from_delivery, cash_from_catering, cash_from_other, total_cash_in,
			rent_paid, payroll_paid, suppliers_paid, utilities_paid, loan_payments_paid, taxes_paid, other_paid, total_cash_out,
			net_cash_flow, ending_cash, accounting_profit, cash_flow_difference, weeks_of_runway,
			recorded_at
		FROM cash_flow_records
		WHERE location_id = ?
		ORDER BY week ASC
	`, locationID)
	if err != nil {
		return nil, fmt.Errorf("list cash flow for %s: %w", locationID, err)
	}
	defer rows.Close()

	out := make([]CashFlowRecord, 0)
	for rows.Next() {
		var r CashFlowRecord
		f := &r.Flow
		if err := rows.Scan(
			&r.LocationID, &f.Week,
			&f.CashFromSales, &f.CashFromDelivery, &f.CashFromCatering, &f.CashFromOther, &f.TotalCashIn,
			&f.RentPaid, &f.PayrollPaid, &f.SuppliersPaid, &f.UtilitiesPaid, &f.LoanPaymentsPaid, &f.TaxesPaid, &f.OtherPaid, &f.TotalCashOut,
			&f.NetCashFlow, &f.EndingCash, &f.AccountingProfit, &f.CashFlowDifference, &r.WeeksOfRunway,
			&r.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("list cash flow for %s: scan: %w", locationID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cash flow for %s: %w", locationID, err)
	}
	return out, nil
}

// DeleteLocation 删除门店的全部历史
func (s *Store) DeleteLocation(locationID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete history for %s: begin: %w", locationID, err)
	}
	defer tx.Rollback()

	var removed int64
	for _, table := range []string{"weekly_pl", "cash_flow_records"} {
		res, err := tx.Exec("DELETE FROM "+table+" WHERE location_id = ?", locationID)
		if err != nil {
			return fmt.Errorf("delete history for %s: %s: %w", locationID, table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += n
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete history for %s: commit: %w", locationID, err)
	}
	s.logger.Info("location history deleted", zap.String("locationId", locationID), zap.Int64("rows", removed))
	return nil
}
