package settings

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns a backend that keeps values for the life of the process.
func NewMemory() Backend {
	return &memoryBackend{values: make(map[string]string)}
}

func (m *memoryBackend) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryBackend) Apply(ctx context.Context, b Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range b.Set {
		m.values[k] = v
	}
	for _, k := range b.Delete {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryBackend) Close() error { return nil }
