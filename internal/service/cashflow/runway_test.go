package cashflow

import (
	"testing"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

func TestCalculateRunway(t *testing.T) {
	tests := []struct {
		name     string
		cash     float64
		burn     float64
		bills    []model.Bill
		expected int
	}{
		{"按消耗率耗尽", 10000, 2500, nil, 4},
		{"上限", 1000000, 100, nil, RunwayCapWeeks},
		{"零消耗", 10000, 0, nil, RunwayCapWeeks},
		{"无现金", 0, 100, nil, 0},
		{"负现金", -50, 0, nil, 0},
		{"账单提前耗尽", 10000, 2500, []model.Bill{{Amount: 5000, DueWeek: 2}}, 2},
		{"已付账单不计", 10000, 2500, []model.Bill{{Amount: 5000, DueWeek: 2, IsPaid: true}}, 4},
		{"零消耗但有账单", 10000, 0, []model.Bill{{Amount: 10000, DueWeek: 7}}, 7},
		{"负金额账单不计", 10000, 2500, []model.Bill{{Amount: -50000, DueWeek: 1}}, 4},
		{"零金额账单不计", 10000, 2500, []model.Bill{{Amount: 0, DueWeek: 1}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateRunway(tt.cash, tt.burn, tt.bills); got != tt.expected {
				t.Errorf("CalculateRunway(%v, %v) = %d, want %d", tt.cash, tt.burn, got, tt.expected)
			}
		})
	}
}

func TestRunwayBillsNeverLengthen(t *testing.T) {
	base := CalculateRunway(20000, 1500, nil)
	for week := 1; week <= 20; week++ {
		for _, amount := range []float64{3000, -3000} {
			got := CalculateRunway(20000, 1500, []model.Bill{{Amount: amount, DueWeek: week}})
			if got > base {
				t.Fatalf("bill of %v at week %d lengthened runway: %d > %d", amount, week, got, base)
			}
		}
	}
}

func TestRunwayFromAbsoluteWeeks(t *testing.T) {
	bills := []model.Bill{
		{Amount: 4000, DueWeek: 10}, // 逾期，计入第 1 周
		{Amount: 3000, DueWeek: 13},
	}
	if got := RunwayFrom(12, 5000, 0, bills); got != 1 {
		t.Fatalf("RunwayFrom = %d, want 1", got)
	}
	if got := RunwayFrom(12, 8000, 0, bills); got != RunwayCapWeeks {
		t.Fatalf("RunwayFrom = %d, want %d", got, RunwayCapWeeks)
	}
}
