package status

import (
	"slices"
	"sync"
)

// MetricMap holds named metrics of type T
// Keys are kept sorted on registration so the stats line is stable without per-call sorting
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
	keys  []string
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, registering it on first use
// Callers cache the pointer; only registration takes the write lock
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	ptr := m.items[key]
	m.mu.RUnlock()
	if ptr != nil {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr = m.items[key]; ptr == nil {
		ptr = new(T)
		m.items[key] = ptr
		at, _ := slices.BinarySearch(m.keys, key)
		m.keys = slices.Insert(m.keys, at, key)
	}
	return ptr
}

// Range calls fn for each metric in key order
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range m.keys {
		fn(k, m.items[k])
	}
}

func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}
