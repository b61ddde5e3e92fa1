package backends

import (
	"errors"
	"sync"
)

// InMemoryBackend is a process-local key-value store used as the upload
// ledger. Nothing is persisted across runs.
type InMemoryBackend struct {
	mu sync.RWMutex
	kv map[string]interface{}
}

func (m *InMemoryBackend) Init() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv = make(map[string]interface{})
}

func (m *InMemoryBackend) SetKey(key string, val interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kv == nil {
		return errors.New("store not initialised")
	}
	m.kv[key] = val
	return nil
}

func (m *InMemoryBackend) GetKey(key string) (interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (m *InMemoryBackend) DeleteKey(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kv[key]; !ok {
		return errors.New("not found")
	}
	delete(m.kv, key)
	return nil
}

// GetAll returns a copy of the stored records.
func (m *InMemoryBackend) GetAll() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]interface{}, len(m.kv))
	for k, v := range m.kv {
		out[k] = v
	}
	return out
}
