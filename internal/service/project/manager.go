package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/service/store"
)

const (
	schemaVersion     = 1
	saveDebounceDelay = time.Second
)

var (
	// ErrInvalidInput 参数不合法
	ErrInvalidInput = errors.New("invalid input")
	// ErrSaveNotFound 存档不存在
	ErrSaveNotFound = errors.New("save not found")
)

// Manager 存档管理器：负责索引维护、切换存档、持久化与自动保存
type Manager struct {
	dataDir string

	store  *store.MemoryStore
	logger *zap.Logger

	mu        sync.Mutex
	index     SavesIndex
	activeID  string
	saveTimer *time.Timer
}

// NewManager 加载存档索引，并恢复上次打开的存档到内存
func NewManager(dataDir string, store *store.MemoryStore, logger *zap.Logger) (*Manager, error) {
	if err := requireNonEmptyString(dataDir, "dataDir"); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		dataDir: dataDir,
		store:   store,
		logger:  logger,
		index: SavesIndex{
			SchemaVersion: schemaVersion,
			Items:         []SaveSummary{},
		},
	}

	if err := m.loadIndex(); err != nil {
		return nil, err
	}
	m.activeID = m.index.LastActiveSaveID
	if m.activeID != "" {
		if err := m.loadSaveState(m.activeID); err != nil {
			m.logger.Warn("load save state failed", zap.String("saveId", m.activeID), zap.Error(err))
		}
	}
	return m, nil
}

func (m *Manager) indexPath() string {
	return filepath.Join(m.dataDir, "saves.json")
}

func (m *Manager) saveDir(saveID string) string {
	return filepath.Join(m.dataDir, "saves", saveID)
}

func (m *Manager) metaPath(saveID string) string {
	return filepath.Join(m.saveDir(saveID), "meta.json")
}

func (m *Manager) statePath(saveID string) string {
	return filepath.Join(m.saveDir(saveID), "state.json")
}

func (m *Manager) latestXlsxPath(saveID string) string {
	return filepath.Join(m.saveDir(saveID), "latest.xlsx")
}

func (m *Manager) loadIndex() error {
	path := m.indexPath()
	if !fileExists(path) {
		return writeJSONAtomic(path, m.index)
	}
	var idx SavesIndex
	if err := readJSON(path, &idx); err != nil {
		return fmt.Errorf("read saves index: %w", err)
	}
	if idx.SchemaVersion == 0 {
		idx.SchemaVersion = schemaVersion
	}
	if idx.Items == nil {
		idx.Items = []SaveSummary{}
	}
	m.index = idx
	return nil
}

func (m *Manager) saveIndexLocked() error {
	return writeJSONAtomic(m.indexPath(), m.index)
}

// ListSaves 存档列表，最近打开的在前
func (m *Manager) ListSaves() SavesIndex {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshHasDataLocked()

	out := m.index
	out.Items = append([]SaveSummary(nil), m.index.Items...)
	return out
}

// ActiveID 当前存档 ID，未选择时为空
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

func (m *Manager) Current() (*CurrentSave, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID == "" {
		return &CurrentSave{}, nil
	}

	summary, ok := m.findSaveLocked(m.activeID)
	if !ok {
		return nil, ErrSaveNotFound
	}
	return &CurrentSave{Save: summary, HasData: summary.HasData}, nil
}

// EnsureActive 没有当前存档时新建一个
func (m *Manager) EnsureActive(name string) (SaveSummary, error) {
	m.mu.Lock()
	if m.activeID != "" {
		summary, ok := m.findSaveLocked(m.activeID)
		m.mu.Unlock()
		if ok {
			return summary, nil
		}
		return SaveSummary{}, ErrSaveNotFound
	}
	m.mu.Unlock()
	return m.CreateSave(name)
}

// CreateSave 新建存档并切换过去，内存中的门店被清空
func (m *Manager) CreateSave(name string) (SaveSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := requireNonEmptyString(name, "name"); err != nil {
		return SaveSummary{}, err
	}

	if err := m.saveNowLocked(); err != nil {
		return SaveSummary{}, err
	}

	now := time.Now().UTC()
	saveID := fmt.Sprintf("s_%s", uuid.New().String()[:8])
	summary := SaveSummary{
		SaveID:       saveID,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastOpenedAt: now,
	}

	meta := SaveMeta{
		SchemaVersion: schemaVersion,
		SaveID:        saveID,
		Name:          name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := writeJSONAtomic(m.metaPath(saveID), meta); err != nil {
		return SaveSummary{}, err
	}

	m.index.Items = append(m.index.Items, summary)
	m.index.LastActiveSaveID = saveID
	m.activeID = saveID
	m.store.Clear()

	if err := m.saveIndexLocked(); err != nil {
		return SaveSummary{}, err
	}
	m.logger.Info("save created", zap.String("saveId", saveID), zap.String("name", name))
	return summary, nil
}

// SelectSave 切换存档，切换前先保存当前存档
func (m *Manager) SelectSave(saveID string) (SaveSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := requireNonEmptyString(saveID, "saveId"); err != nil {
		return SaveSummary{}, err
	}

	summary, ok := m.findSaveLocked(saveID)
	if !ok {
		return SaveSummary{}, ErrSaveNotFound
	}

	if m.activeID != "" && m.activeID != saveID {
		if err := m.saveNowLocked(); err != nil {
			return SaveSummary{}, err
		}
	}

	summary.LastOpenedAt = time.Now().UTC()
	m.replaceSaveLocked(summary)

	m.index.LastActiveSaveID = saveID
	m.activeID = saveID
	if err := m.loadSaveState(saveID); err != nil {
		return SaveSummary{}, err
	}

	if err := m.saveIndexLocked(); err != nil {
		return SaveSummary{}, err
	}
	return summary, nil
}

// DeleteSave 删除存档，返回其中的门店 ID 以便清理历史记录
func (m *Manager) DeleteSave(saveID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := requireNonEmptyString(saveID, "saveId"); err != nil {
		return nil, err
	}
	if _, ok := m.findSaveLocked(saveID); !ok {
		return nil, ErrSaveNotFound
	}

	var locationIDs []string
	if saveID == m.activeID {
		for _, l := range m.store.ListLocations() {
			locationIDs = append(locationIDs, l.ID)
		}
	} else {
		var state saveState
		if fileExists(m.statePath(saveID)) && readJSON(m.statePath(saveID), &state) == nil {
			for _, l := range state.Locations {
				locationIDs = append(locationIDs, l.ID)
			}
		}
	}

	nextItems := make([]SaveSummary, 0, len(m.index.Items))
	for _, item := range m.index.Items {
		if item.SaveID == saveID {
			continue
		}
		nextItems = append(nextItems, item)
	}
	m.index.Items = nextItems

	// 先删目录再写索引，避免索引指向不存在的目录
	if err := os.RemoveAll(m.saveDir(saveID)); err != nil {
		m.logger.Warn("remove save dir failed", zap.String("saveId", saveID), zap.Error(err))
	}

	if m.activeID == saveID {
		if m.saveTimer != nil {
			m.saveTimer.Stop()
		}
		m.activeID = ""
		m.index.LastActiveSaveID = ""
		m.store.Clear()
	}

	if err := m.saveIndexLocked(); err != nil {
		return nil, err
	}
	return locationIDs, nil
}

// SaveNow 立即保存当前存档
func (m *Manager) SaveNow() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveNowLocked()
}

// ScheduleSave 防抖保存：连续修改只在最后一次修改后写盘
func (m *Manager) ScheduleSave() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID == "" {
		return
	}

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(saveDebounceDelay, func() {
		if err := m.SaveNow(); err != nil {
			m.logger.Error("autosave failed", zap.Error(err))
		}
	})
}

// Close 停止自动保存并立即落盘
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	return m.saveNowLocked()
}

// SaveLatestXlsx 保留当前存档最近一次导出的工作簿
func (m *Manager) SaveLatestXlsx(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID == "" {
		return fmt.Errorf("%w: no active save", ErrInvalidInput)
	}
	return writeBytesAtomic(m.latestXlsxPath(m.activeID), data)
}

func (m *Manager) saveNowLocked() error {
	if m.activeID == "" {
		return nil
	}

	now := time.Now().UTC()
	locations := m.store.ListLocations()

	state := saveState{
		SchemaVersion: schemaVersion,
		SaveID:        m.activeID,
		UpdatedAt:     now,
		Locations:     locations,
	}
	if err := writeJSONAtomic(m.statePath(m.activeID), state); err != nil {
		return fmt.Errorf("write save state: %w", err)
	}

	if summary, ok := m.findSaveLocked(m.activeID); ok {
		summary.UpdatedAt = now
		summary.HasData = true
		summary.LocationCount = len(locations)
		summary.LatestWeek = latestWeek(locations)
		m.replaceSaveLocked(summary)
	}

	if err := m.saveIndexLocked(); err != nil {
		return err
	}
	m.logger.Debug("save written", zap.String("saveId", m.activeID), zap.Int("locations", len(locations)))
	return nil
}

func (m *Manager) loadSaveState(saveID string) error {
	path := m.statePath(saveID)
	if !fileExists(path) {
		m.store.Clear()
		return nil
	}

	var state saveState
	if err := readJSON(path, &state); err != nil {
		return fmt.Errorf("read save state: %w", err)
	}
	if state.SchemaVersion > schemaVersion {
		return fmt.Errorf("%w: save schema version %d is newer than supported %d", ErrInvalidInput, state.SchemaVersion, schemaVersion)
	}
	m.store.SetLocations(state.Locations)
	return nil
}

func (m *Manager) refreshHasDataLocked() {
	for i := range m.index.Items {
		id := m.index.Items[i].SaveID
		m.index.Items[i].HasData = fileExists(m.statePath(id))
	}
	sort.SliceStable(m.index.Items, func(i, j int) bool {
		return m.index.Items[i].LastOpenedAt.After(m.index.Items[j].LastOpenedAt)
	})
}

func (m *Manager) findSaveLocked(saveID string) (SaveSummary, bool) {
	for _, item := range m.index.Items {
		if item.SaveID == saveID {
			return item, true
		}
	}
	return SaveSummary{}, false
}

func (m *Manager) replaceSaveLocked(summary SaveSummary) {
	for i := range m.index.Items {
		if m.index.Items[i].SaveID == summary.SaveID {
			m.index.Items[i] = summary
			return
		}
	}
}

func latestWeek(locations []*model.Location) int {
	week := 0
	for _, l := range locations {
		// CurrentWeek 是下一次要结算的周
		if w := l.CurrentWeek - 1; w > week {
			week = w
		}
	}
	return week
}
