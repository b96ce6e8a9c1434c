package project

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/service/store"
)

func newTestManager(t *testing.T, dataDir string) (*Manager, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	manager, err := NewManager(dataDir, memStore, nil)
	if err != nil {
		t.Fatalf("create manager failed: %v", err)
	}
	return manager, memStore
}

func TestListSavesHasDataRequiresState(t *testing.T) {
	manager, _ := newTestManager(t, t.TempDir())

	summary, err := manager.CreateSave("demo")
	if err != nil {
		t.Fatalf("create save failed: %v", err)
	}

	index := manager.ListSaves()
	if len(index.Items) != 1 {
		t.Fatalf("expected 1 save, got %d", len(index.Items))
	}
	got := index.Items[0]
	if got.SaveID != summary.SaveID {
		t.Fatalf("unexpected save id: %s", got.SaveID)
	}
	if got.HasData {
		t.Fatalf("expected hasData false before first save, got true")
	}

	if err := manager.SaveNow(); err != nil {
		t.Fatalf("save state failed: %v", err)
	}
	if !manager.ListSaves().Items[0].HasData {
		t.Fatalf("expected hasData true after save")
	}
}

// TestSaveAndReload 测试门店随存档写盘并在重启后恢复
func TestSaveAndReload(t *testing.T) {
	dataDir := t.TempDir()
	manager, memStore := newTestManager(t, dataDir)

	if _, err := manager.CreateSave("campaign"); err != nil {
		t.Fatalf("create save failed: %v", err)
	}
	memStore.AddLocation(&model.Location{
		ID:          "loc-1",
		Name:        "Main Street",
		CurrentWeek: 6,
		OpenedWeek:  1,
		Menu:        []model.MenuItem{{ID: "burger", Name: "Burger", Price: 15.99}},
		CashFlow: model.CashFlowState{
			CashOnHand:   42000,
			PendingBills: []model.Bill{{ID: "rent-w9", Type: model.BillRent, Amount: 8000, DueWeek: 9}},
		},
	})
	if err := manager.SaveNow(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	summary := manager.ListSaves().Items[0]
	if summary.LocationCount != 1 || summary.LatestWeek != 5 {
		t.Errorf("summary = %+v, want 1 location at week 5", summary)
	}

	reloaded, reloadedStore := newTestManager(t, dataDir)
	if reloaded.ActiveID() != summary.SaveID {
		t.Fatalf("ActiveID = %s, want %s", reloaded.ActiveID(), summary.SaveID)
	}
	l, err := reloadedStore.GetLocation("loc-1")
	if err != nil {
		t.Fatalf("location not restored: %v", err)
	}
	if l.CurrentWeek != 6 || l.CashFlow.CashOnHand != 42000 || len(l.CashFlow.PendingBills) != 1 {
		t.Errorf("restored location = %+v", l)
	}
	if l.Menu[0].Price != 15.99 {
		t.Errorf("menu price = %v, want 15.99", l.Menu[0].Price)
	}
}

// TestSelectSaveSwitchesLocations 测试切换存档时先保存再加载
func TestSelectSaveSwitchesLocations(t *testing.T) {
	manager, memStore := newTestManager(t, t.TempDir())

	first, _ := manager.CreateSave("first")
	memStore.AddLocation(&model.Location{ID: "a", Name: "A"})

	if _, err := manager.CreateSave("second"); err != nil {
		t.Fatalf("create second save failed: %v", err)
	}
	if memStore.Count() != 0 {
		t.Fatalf("new save should start empty, got %d locations", memStore.Count())
	}
	memStore.AddLocation(&model.Location{ID: "b", Name: "B"})

	if _, err := manager.SelectSave(first.SaveID); err != nil {
		t.Fatalf("select save failed: %v", err)
	}
	if _, err := memStore.GetLocation("a"); err != nil {
		t.Errorf("location a not loaded: %v", err)
	}
	if _, err := memStore.GetLocation("b"); err == nil {
		t.Error("location b should belong to the other save")
	}

	if _, err := manager.SelectSave("missing"); !errors.Is(err, ErrSaveNotFound) {
		t.Errorf("select missing save err = %v, want ErrSaveNotFound", err)
	}
}

// TestDeleteSave 测试删除存档返回门店 ID 并清理目录
func TestDeleteSave(t *testing.T) {
	manager, memStore := newTestManager(t, t.TempDir())

	summary, _ := manager.CreateSave("doomed")
	memStore.AddLocation(&model.Location{ID: "loc-1", Name: "A"})
	if err := manager.SaveNow(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ids, err := manager.DeleteSave(summary.SaveID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "loc-1" {
		t.Errorf("deleted location ids = %v, want [loc-1]", ids)
	}
	if manager.ActiveID() != "" || memStore.Count() != 0 {
		t.Error("deleting the active save should clear the store")
	}
	if _, err := os.Stat(manager.saveDir(summary.SaveID)); !os.IsNotExist(err) {
		t.Errorf("save dir still exists: %v", err)
	}
	if _, err := manager.DeleteSave(summary.SaveID); !errors.Is(err, ErrSaveNotFound) {
		t.Errorf("second delete err = %v, want ErrSaveNotFound", err)
	}
}

// TestCreateSaveRequiresName 测试名称必填
func TestCreateSaveRequiresName(t *testing.T) {
	manager, _ := newTestManager(t, t.TempDir())
	if _, err := manager.CreateSave(""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

// TestEnsureActive 测试没有存档时自动创建
func TestEnsureActive(t *testing.T) {
	manager, _ := newTestManager(t, t.TempDir())

	first, err := manager.EnsureActive("default")
	if err != nil {
		t.Fatalf("EnsureActive failed: %v", err)
	}
	second, err := manager.EnsureActive("other")
	if err != nil {
		t.Fatalf("EnsureActive failed: %v", err)
	}
	if first.SaveID != second.SaveID {
		t.Errorf("EnsureActive created a second save: %s vs %s", first.SaveID, second.SaveID)
	}
	if len(manager.ListSaves().Items) != 1 {
		t.Errorf("expected exactly 1 save")
	}
}

// TestScheduleSaveDebounced 测试防抖保存最终落盘
func TestScheduleSaveDebounced(t *testing.T) {
	manager, memStore := newTestManager(t, t.TempDir())
	summary, _ := manager.CreateSave("auto")
	memStore.AddLocation(&model.Location{ID: "loc-1", Name: "A"})

	manager.ScheduleSave()
	manager.ScheduleSave()

	deadline := time.Now().Add(5 * time.Second)
	for !fileExists(manager.statePath(summary.SaveID)) {
		if time.Now().After(deadline) {
			t.Fatal("debounced save never wrote state.json")
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err := manager.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
