package storage

import (
	"context"
	"sync"
)

// Memory keeps values in process memory. Used by tests and the memory driver.
type Memory struct {
	mu   sync.RWMutex
	objs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.objs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs[key] = append([]byte(nil), value...)
	return nil
}
