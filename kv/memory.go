package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It is used for tests and for runs that do
// not need the collection to outlive the process.
type Memory struct {
	mu     sync.Mutex
	quota  int64
	data   map[string]string
	closed bool
}

// NewMemory returns an empty Memory store. A quota <= 0 disables the limit.
func NewMemory(quota int64) *Memory {
	return &Memory{quota: quota, data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	used := entrySize(key, value)
	for k, v := range m.data {
		if k != key {
			used += entrySize(k, v)
		}
	}
	if overQuota(m.quota, used) {
		return ErrQuotaExceeded
	}

	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

// SetQuota changes the limit applied to later writes.
func (m *Memory) SetQuota(quota int64) {
	m.mu.Lock()
	m.quota = quota
	m.mu.Unlock()
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
