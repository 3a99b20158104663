// Package memory provides an in-process storage medium for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
)

var _ domain.StorageMedium = (*Medium)(nil)

type Medium struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMedium() *Medium {
	return &Medium{entries: make(map[string]string)}
}

func (m *Medium) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *Medium) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *Medium) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Medium) Entries(_ context.Context) ([]domain.StorageEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]domain.StorageEntry, 0, len(keys))
	for _, key := range keys {
		out = append(out, domain.StorageEntry{Key: key, Value: m.entries[key]})
	}
	return out, nil
}
