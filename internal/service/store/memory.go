package store

import (
	"errors"
	"sync"

	"leadreport/internal/model"
)

// DefaultCapacity 默认保留的运行结果数
const DefaultCapacity = 10

// ErrResultNotFound 运行结果不在内存中（已淘汰或不存在）
var ErrResultNotFound = errors.New("result not found")

// RunReport 一次运行生成的报表
type RunReport struct {
	RunID    string        `json:"runId"`
	Sheets   []model.Sheet `json:"sheets"`
	Warnings []string      `json:"warnings"`
}

// MemoryStore 最近运行结果的内存缓存（供 API 预览）
type MemoryStore struct {
	capacity int
	order    []string
	reports  map[string]*RunReport
	mu       sync.RWMutex
}

// NewMemoryStore 创建内存存储；capacity <= 0 时使用默认值
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		reports:  make(map[string]*RunReport),
	}
}

// Put 保存一次运行结果，超出容量时淘汰最早的
func (s *MemoryStore) Put(report *RunReport) {
	if report == nil || report.RunID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[report.RunID]; !ok {
		s.order = append(s.order, report.RunID)
	}
	s.reports[report.RunID] = report

	for len(s.order) > s.capacity {
		delete(s.reports, s.order[0])
		s.order = s.order[1:]
	}
}

// Get 获取运行结果
func (s *MemoryStore) Get(runID string) (*RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[runID]
	if !ok {
		return nil, ErrResultNotFound
	}
	return r, nil
}

// Sheet 获取某次运行的单张报表
func (s *MemoryStore) Sheet(runID, name string) (*model.Sheet, error) {
	r, err := s.Get(runID)
	if err != nil {
		return nil, err
	}
	for i := range r.Sheets {
		if r.Sheets[i].Name == name {
			return &r.Sheets[i], nil
		}
	}
	return nil, ErrResultNotFound
}

// Latest 最近一次保存的结果
func (s *MemoryStore) Latest() (*RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return nil, false
	}
	return s.reports[s.order[len(s.order)-1]], true
}

// Count 当前缓存的结果数
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
