package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

// ErrLocationNotFound 门店不存在
var ErrLocationNotFound = errors.New("location not found")

// MemoryStore 内存数据存储
// 读写都经过副本，调用方拿到的门店可以随意修改
type MemoryStore struct {
	locations map[string]*model.Location
	mu        sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations: make(map[string]*model.Location),
	}
}

// ListLocations 获取所有门店，按创建时间排序
func (s *MemoryStore) ListLocations() []*model.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Location, 0, len(s.locations))
	for _, l := range s.locations {
		result = append(result, cloneLocation(l))
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// GetLocation 获取单个门店
func (s *MemoryStore) GetLocation(id string) (*model.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.locations[id]
	if !ok {
		return nil, ErrLocationNotFound
	}
	return cloneLocation(l), nil
}

// SetLocations 整体替换门店列表（加载存档时使用）
func (s *MemoryStore) SetLocations(locations []*model.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locations = make(map[string]*model.Location, len(locations))
	for _, l := range locations {
		s.locations[l.ID] = cloneLocation(l)
	}
}

// AddLocation 添加单个门店
func (s *MemoryStore) AddLocation(l *model.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = cloneLocation(l)
}

// ReplaceLocation 覆盖已存在的门店
func (s *MemoryStore) ReplaceLocation(l *model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[l.ID]; !ok {
		return ErrLocationNotFound
	}
	s.locations[l.ID] = cloneLocation(l)
	return nil
}

// DeleteLocation 删除门店
func (s *MemoryStore) DeleteLocation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[id]; !ok {
		return ErrLocationNotFound
	}
	delete(s.locations, id)
	return nil
}

// Count 获取门店数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.locations)
}

// Clear 清空所有门店
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = make(map[string]*model.Location)
}

// cloneLocation 深拷贝门店中的切片字段
func cloneLocation(l *model.Location) *model.Location {
	if l == nil {
		return nil
	}
	c := *l
	c.Menu = cloneSlice(l.Menu)
	for i := range c.Menu {
		c.Menu[i].Recipe = cloneSlice(l.Menu[i].Recipe)
	}
	c.RecurringBills = cloneSlice(l.RecurringBills)
	c.CashFlow.PendingBills = cloneSlice(l.CashFlow.PendingBills)
	c.CashFlow.CashFlowHistory = cloneSlice(l.CashFlow.CashFlowHistory)
	return &c
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
