package week

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/service/calculator"
	"github.com/justinnewbold/86d-game-sub000/internal/service/cashflow"
	"github.com/justinnewbold/86d-game-sub000/internal/service/store"
	historystore "github.com/justinnewbold/86d-game-sub000/internal/store"
)

// HistoryWriter 周结算结果落库
type HistoryWriter interface {
	AppendWeek(e historystore.WeekEntry) error
}

// Saver 门店状态变更后触发保存
type Saver interface {
	ScheduleSave()
}

// Result 一次周结算的完整结果
type Result struct {
	LocationID  string                         `json:"locationId"`
	Week        int                            `json:"week"`
	PL          *model.WeeklyPL                `json:"pl"`
	Analysis    model.PLAnalysis               `json:"analysis"`
	NewBills    []model.Bill                   `json:"newBills"`
	CashFlow    *cashflow.WeeklyCashFlowResult `json:"cashFlow"`
	Explanation string                         `json:"explanation"`
	Location    *model.Location                `json:"location"`
}

// Runner 推进门店的游戏周
// 同一门店的推进串行执行，上一周的新台账是下一周的输入
type Runner struct {
	store   *store.MemoryStore
	history HistoryWriter
	saver   Saver
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*locationLock
}

// locationLock 门店锁，refs 为持有和等待者数量，归零时从表中移除
type locationLock struct {
	sync.Mutex
	refs int
}

// NewRunner history 与 saver 可为 nil
func NewRunner(s *store.MemoryStore, history HistoryWriter, saver Saver, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		store:   s,
		history: history,
		saver:   saver,
		logger:  logger,
		locks:   make(map[string]*locationLock),
	}
}

// acquire 锁住门店，返回解锁函数
func (r *Runner) acquire(locationID string) func() {
	r.mu.Lock()
	l, ok := r.locks[locationID]
	if !ok {
		l = &locationLock{}
		r.locks[locationID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, locationID)
		}
		r.mu.Unlock()
	}
}

// Remove 在门店锁内删除门店，与周推进互斥
func (r *Runner) Remove(locationID string) error {
	defer r.acquire(locationID)()
	return r.store.DeleteLocation(locationID)
}

// AdvanceWeek 结算门店当前周：损益 → 账单 → 现金流 → 保存
func (r *Runner) AdvanceWeek(locationID string) (*Result, error) {
	defer r.acquire(locationID)()

	loc, err := r.store.GetLocation(locationID)
	if err != nil {
		return nil, err
	}
	week := loc.CurrentWeek
	if week < 1 {
		week = 1
	}

	pl, err := calculator.CalculateWeeklyPL(loc.Operations)
	if err != nil {
		return nil, fmt.Errorf("week %d P&L: %w", week, err)
	}
	analysis := calculator.AnalyzePL(pl)

	newBills := cashflow.GenerateUpcomingBills(cashflow.BillScheduleInput{
		StartWeek:      week,
		RentAnchorWeek: loc.OpenedWeek,
		WeeklyRent:     pl.Overhead.WeeklyRent,
		WeeklyPayroll:  pl.Labor.Total,
		WeeklyOther:    pl.Overhead.WeeklyUtilities + pl.Overhead.WeeklyInsurance,
		ExistingBills:  loc.CashFlow.PendingBills,
		ExtraRecurring: loc.RecurringBills,
	})

	state := loc.CashFlow
	state.PendingBills = append(append([]model.Bill{}, state.PendingBills...), newBills...)

	netProfit := pl.NetProfit
	res, err := cashflow.ProcessWeeklyCashFlow(cashflow.WeeklyCashFlowInput{
		Week:                week,
		State:               state,
		Receipts:            model.ReceiptsFromRevenue(pl.Revenue),
		WeeklyExpensesTotal: pl.COGS.Total,
		AccountingProfit:    &netProfit,
	})
	if err != nil {
		return nil, fmt.Errorf("week %d cash flow: %w", week, err)
	}

	loc.CashFlow = res.NewState
	loc.CurrentWeek = week + 1
	loc.UpdatedAt = time.Now().UTC()
	if err := r.store.ReplaceLocation(loc); err != nil {
		return nil, err
	}

	if r.history != nil {
		err := r.history.AppendWeek(historystore.WeekEntry{
			LocationID:    loc.ID,
			Week:          week,
			PL:            pl,
			Analysis:      analysis,
			Flow:          res.WeekFlow,
			WeeksOfRunway: res.NewState.WeeksOfRunway,
		})
		if err != nil {
			// 历史记录只用于报表，落库失败不回滚游戏状态
			r.logger.Error("append week history failed",
				zap.String("locationId", loc.ID), zap.Int("week", week), zap.Error(err))
		}
	}
	if r.saver != nil {
		r.saver.ScheduleSave()
	}

	r.logger.Info("week advanced",
		zap.String("locationId", loc.ID),
		zap.Int("week", week),
		zap.Float64("netProfit", pl.NetProfit),
		zap.Float64("endingCash", res.WeekFlow.EndingCash),
		zap.Int("runway", res.NewState.WeeksOfRunway),
		zap.Int("alerts", len(res.Alerts)),
	)

	return &Result{
		LocationID:  loc.ID,
		Week:        week,
		PL:          pl,
		Analysis:    analysis,
		NewBills:    newBills,
		CashFlow:    res,
		Explanation: cashflow.ExplainCashFlowGap(res.WeekFlow),
		Location:    loc,
	}, nil
}

// Update 在门店锁内修改门店，与周推进互斥
// fn 返回错误时不写回
func (r *Runner) Update(locationID string, fn func(loc *model.Location) error) (*model.Location, error) {
	defer r.acquire(locationID)()

	loc, err := r.store.GetLocation(locationID)
	if err != nil {
		return nil, err
	}
	if err := fn(loc); err != nil {
		return nil, err
	}
	loc.UpdatedAt = time.Now().UTC()
	if err := r.store.ReplaceLocation(loc); err != nil {
		return nil, err
	}
	if r.saver != nil {
		r.saver.ScheduleSave()
	}
	return loc, nil
}
