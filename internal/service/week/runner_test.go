package week

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/service/calculator"
	"github.com/justinnewbold/86d-game-sub000/internal/service/store"
	historystore "github.com/justinnewbold/86d-game-sub000/internal/store"
)

type recordingHistory struct {
	mu      sync.Mutex
	entries []historystore.WeekEntry
	err     error
}

func (h *recordingHistory) AppendWeek(e historystore.WeekEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	return h.err
}

type countingSaver struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSaver) ScheduleSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// 每周：收入 30000，食材 6750，人工 8000，房租 2000，水电保险 800
func healthyOps() model.OperatingInputs {
	return model.OperatingInputs{
		WeeklyCovers:    1000,
		AvgTicket:       30,
		MenuFoodCostPct: 0.30,
		Labor:           model.LaborInputs{HourlyWages: 6000, Salaries: 2000},
		Overhead:        model.OverheadInputs{WeeklyRent: 2000, WeeklyUtilities: 500, WeeklyInsurance: 300},
	}
}

func newTestRunner(t *testing.T, ops model.OperatingInputs, d Defaults) (*Runner, *store.MemoryStore, *recordingHistory, *countingSaver, string) {
	t.Helper()
	memStore := store.NewMemoryStore()
	loc, err := NewLocation("Main Street", ops, d)
	if err != nil {
		t.Fatalf("NewLocation failed: %v", err)
	}
	memStore.AddLocation(loc)
	history := &recordingHistory{}
	saver := &countingSaver{}
	return NewRunner(memStore, history, saver, nil), memStore, history, saver, loc.ID
}

// TestAdvanceWeekFirstWeek 测试第一周结算
func TestAdvanceWeekFirstWeek(t *testing.T) {
	runner, memStore, history, saver, id := newTestRunner(t, healthyOps(), Defaults{StartingCash: 50000})

	res, err := runner.AdvanceWeek(id)
	if err != nil {
		t.Fatalf("AdvanceWeek failed: %v", err)
	}

	if res.Week != 1 {
		t.Errorf("Week = %d, want 1", res.Week)
	}
	if !floatEquals(res.PL.NetProfit, 12450) {
		t.Errorf("NetProfit = %v, want 12450", res.PL.NetProfit)
	}

	flow := res.CashFlow.WeekFlow
	if !floatEquals(flow.RentPaid, 8000) {
		t.Errorf("RentPaid = %v, want 8000 (rent due on opening week)", flow.RentPaid)
	}
	if !floatEquals(flow.SuppliersPaid, 6750) {
		t.Errorf("SuppliersPaid = %v, want 6750", flow.SuppliersPaid)
	}
	if !floatEquals(flow.EndingCash, 65250) {
		t.Errorf("EndingCash = %v, want 65250", flow.EndingCash)
	}
	if !floatEquals(flow.AccountingProfit, 12450) {
		t.Errorf("AccountingProfit = %v, want 12450", flow.AccountingProfit)
	}
	if res.Explanation == "" {
		t.Error("expected an explanation")
	}

	loc, _ := memStore.GetLocation(id)
	if loc.CurrentWeek != 2 {
		t.Errorf("CurrentWeek = %d, want 2", loc.CurrentWeek)
	}
	if !floatEquals(loc.CashFlow.CashOnHand, 65250) {
		t.Errorf("stored CashOnHand = %v, want 65250", loc.CashFlow.CashOnHand)
	}
	// 12 周内：工资 6 次，房租第 5、9 周，水电第 3、7、11 周
	if len(loc.CashFlow.PendingBills) != 11 {
		t.Errorf("pending bills = %d, want 11", len(loc.CashFlow.PendingBills))
	}
	if len(loc.CashFlow.CashFlowHistory) != 1 {
		t.Errorf("history length = %d, want 1", len(loc.CashFlow.CashFlowHistory))
	}

	if len(history.entries) != 1 || history.entries[0].Week != 1 || history.entries[0].LocationID != id {
		t.Errorf("history entries = %+v", history.entries)
	}
	if saver.calls != 1 {
		t.Errorf("ScheduleSave calls = %d, want 1", saver.calls)
	}
}

// TestAdvanceWeekSequence 测试连续推进时账单不重复、现金连续
func TestAdvanceWeekSequence(t *testing.T) {
	runner, memStore, _, _, id := newTestRunner(t, healthyOps(), Defaults{StartingCash: 50000})

	var prevEnding = 50000.0
	for w := 1; w <= 8; w++ {
		res, err := runner.AdvanceWeek(id)
		if err != nil {
			t.Fatalf("AdvanceWeek week %d failed: %v", w, err)
		}
		flow := res.CashFlow.WeekFlow
		if !floatEquals(flow.EndingCash, prevEnding+flow.NetCashFlow) {
			t.Errorf("week %d: ending %v != previous %v + net %v", w, flow.EndingCash, prevEnding, flow.NetCashFlow)
		}
		prevEnding = flow.EndingCash
	}

	loc, _ := memStore.GetLocation(id)
	seen := map[string]bool{}
	for _, b := range loc.CashFlow.PendingBills {
		if seen[b.ID] {
			t.Errorf("duplicate pending bill %s", b.ID)
		}
		seen[b.ID] = true
		if b.DueWeek <= 8 {
			t.Errorf("bill %s due week %d should have been settled", b.ID, b.DueWeek)
		}
	}
	if len(loc.CashFlow.CashFlowHistory) != 8 {
		t.Errorf("history length = %d, want 8", len(loc.CashFlow.CashFlowHistory))
	}
}

// TestAdvanceWeekSerialized 测试同一门店并发推进时逐周串行
func TestAdvanceWeekSerialized(t *testing.T) {
	runner, memStore, history, _, id := newTestRunner(t, healthyOps(), Defaults{StartingCash: 50000})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := runner.AdvanceWeek(id); err != nil {
				t.Errorf("AdvanceWeek failed: %v", err)
			}
		}()
	}
	wg.Wait()

	loc, _ := memStore.GetLocation(id)
	if loc.CurrentWeek != 11 {
		t.Errorf("CurrentWeek = %d, want 11", loc.CurrentWeek)
	}
	weeks := map[int]bool{}
	for _, e := range history.entries {
		if weeks[e.Week] {
			t.Errorf("week %d processed twice", e.Week)
		}
		weeks[e.Week] = true
	}
	if len(weeks) != 10 {
		t.Errorf("processed %d distinct weeks, want 10", len(weeks))
	}
}

// TestAdvanceWeekHistoryFailureKeepsState 测试历史落库失败不影响游戏状态
func TestAdvanceWeekHistoryFailureKeepsState(t *testing.T) {
	runner, memStore, history, _, id := newTestRunner(t, healthyOps(), Defaults{StartingCash: 50000})
	history.err = errors.New("disk full")

	if _, err := runner.AdvanceWeek(id); err != nil {
		t.Fatalf("AdvanceWeek failed: %v", err)
	}
	loc, _ := memStore.GetLocation(id)
	if loc.CurrentWeek != 2 {
		t.Errorf("CurrentWeek = %d, want 2", loc.CurrentWeek)
	}
}

// TestAdvanceWeekUnknownLocation 测试门店不存在
func TestAdvanceWeekUnknownLocation(t *testing.T) {
	runner := NewRunner(store.NewMemoryStore(), nil, nil, nil)
	if _, err := runner.AdvanceWeek("missing"); !errors.Is(err, store.ErrLocationNotFound) {
		t.Errorf("err = %v, want ErrLocationNotFound", err)
	}
}

// TestAdvanceWeekCashCrunch 测试资金不足时账单逾期并预警
func TestAdvanceWeekCashCrunch(t *testing.T) {
	ops := model.OperatingInputs{
		WeeklyCovers:    50,
		AvgTicket:       20,
		MenuFoodCostPct: 0.35,
		Labor:           model.LaborInputs{HourlyWages: 3000},
		Overhead:        model.OverheadInputs{WeeklyRent: 3000},
	}
	runner, _, _, _, id := newTestRunner(t, ops, Defaults{StartingCash: 1000})

	res, err := runner.AdvanceWeek(id)
	if err != nil {
		t.Fatalf("AdvanceWeek failed: %v", err)
	}

	if !res.CashFlow.NewState.CashCrunchWarning {
		t.Error("expected a cash crunch warning")
	}
	var overdue bool
	for _, a := range res.CashFlow.Alerts {
		if a.Type == model.AlertBillOverdue {
			overdue = true
		}
	}
	if !overdue {
		t.Errorf("expected a bill_overdue alert, got %+v", res.CashFlow.Alerts)
	}
}

// TestNewLocation 测试新门店初始化
func TestNewLocation(t *testing.T) {
	loc, err := NewLocation("Main Street", healthyOps(), Defaults{StartingCash: 25000, CreditLineLimit: 10000, CreditLineRate: 0.12})
	if err != nil {
		t.Fatalf("NewLocation failed: %v", err)
	}
	if loc.ID == "" || loc.CurrentWeek != 1 || loc.OpenedWeek != 1 {
		t.Errorf("unexpected location: %+v", loc)
	}
	if loc.CashFlow.CashOnHand != 25000 || loc.CashFlow.CreditLineAvailable != 10000 || loc.CashFlow.CreditLineInterestRate != 0.12 {
		t.Errorf("unexpected cash flow state: %+v", loc.CashFlow)
	}
	if loc.CashFlow.WeeksOfRunway != 52 {
		t.Errorf("WeeksOfRunway = %d, want 52", loc.CashFlow.WeeksOfRunway)
	}

	if _, err := NewLocation("", healthyOps(), Defaults{}); !errors.Is(err, calculator.ErrInvalidInput) {
		t.Errorf("empty name err = %v, want ErrInvalidInput", err)
	}
	bad := healthyOps()
	bad.AvgTicket = math.NaN()
	if _, err := NewLocation("x", bad, Defaults{}); !errors.Is(err, calculator.ErrInvalidInput) {
		t.Errorf("NaN ticket err = %v, want ErrInvalidInput", err)
	}
}

// TestUpdate 测试锁内修改门店
func TestUpdate(t *testing.T) {
	runner, memStore, _, saver, id := newTestRunner(t, healthyOps(), Defaults{StartingCash: 50000})

	t.Run("修改成功并触发保存", func(t *testing.T) {
		got, err := runner.Update(id, func(loc *model.Location) error {
			loc.Name = "Harbor"
			return nil
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if got.Name != "Harbor" {
			t.Errorf("Name = %q, want Harbor", got.Name)
		}
		stored, _ := memStore.GetLocation(id)
		if stored.Name != "Harbor" {
			t.Errorf("stored Name = %q, want Harbor", stored.Name)
		}
		if saver.calls != 1 {
			t.Errorf("ScheduleSave calls = %d, want 1", saver.calls)
		}
	})

	t.Run("回调报错时不写回", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := runner.Update(id, func(loc *model.Location) error {
			loc.Name = "Ignored"
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
		stored, _ := memStore.GetLocation(id)
		if stored.Name != "Harbor" {
			t.Errorf("stored Name = %q, want Harbor", stored.Name)
		}
	})

	t.Run("门店不存在", func(t *testing.T) {
		_, err := runner.Update("missing", func(*model.Location) error { return nil })
		if !errors.Is(err, store.ErrLocationNotFound) {
			t.Errorf("err = %v, want ErrLocationNotFound", err)
		}
	})
}

// TestLocationLocksReleased 测试并发推进与修改后门店锁全部释放
func TestLocationLocksReleased(t *testing.T) {
	runner, _, _, _, id := newTestRunner(t, healthyOps(), Defaults{StartingCash: 50000})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := runner.AdvanceWeek(id); err != nil {
				t.Errorf("AdvanceWeek failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := runner.Update(id, func(loc *model.Location) error { return nil }); err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	runner.mu.Lock()
	n := len(runner.locks)
	runner.mu.Unlock()
	if n != 0 {
		t.Errorf("lock table size = %d, want 0", n)
	}
}

// TestRemove 测试锁内删除门店
func TestRemove(t *testing.T) {
	runner, memStore, _, _, id := newTestRunner(t, healthyOps(), Defaults{StartingCash: 50000})

	if err := runner.Remove(id); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := memStore.GetLocation(id); !errors.Is(err, store.ErrLocationNotFound) {
		t.Errorf("GetLocation after Remove err = %v, want ErrLocationNotFound", err)
	}
	if _, err := runner.AdvanceWeek(id); !errors.Is(err, store.ErrLocationNotFound) {
		t.Errorf("AdvanceWeek after Remove err = %v, want ErrLocationNotFound", err)
	}
	if err := runner.Remove(id); !errors.Is(err, store.ErrLocationNotFound) {
		t.Errorf("second Remove err = %v, want ErrLocationNotFound", err)
	}
	if len(runner.locks) != 0 {
		t.Errorf("lock table size = %d, want 0", len(runner.locks))
	}
}

// TestWithRecurringIDs 测试补全周期账单 ID
func TestWithRecurringIDs(t *testing.T) {
	in := []model.RecurringBill{
		{ID: "sba", Type: model.BillLoan, Amount: 750, IntervalWeeks: 4, AnchorWeek: 1},
		{Type: model.BillSupplier, Amount: 500, IntervalWeeks: 2, AnchorWeek: 2},
		{Type: model.BillSupplier, Amount: 900, IntervalWeeks: 2, AnchorWeek: 2},
	}
	out := WithRecurringIDs(in)

	if out[0].ID != "sba" {
		t.Errorf("caller ID replaced: %q", out[0].ID)
	}
	if out[1].ID == "" || out[2].ID == "" || out[1].ID == out[2].ID {
		t.Errorf("expected distinct generated IDs, got %q and %q", out[1].ID, out[2].ID)
	}
	if in[1].ID != "" {
		t.Errorf("input mutated: %+v", in[1])
	}
}
