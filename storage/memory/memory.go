package memory

import "sync"

// Store is an in-memory implementation of storage.CodeStore.
type Store struct {
	mu    sync.RWMutex
	codes map[[32]byte][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		codes: make(map[[32]byte][]byte),
	}
}

func (m *Store) GetCode(key [32]byte) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.codes[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), c...), true
}

func (m *Store) PutCode(key [32]byte, code []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[key] = append([]byte(nil), code...)
	return nil
}

// Len returns the number of cached entries.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.codes)
}

func (m *Store) Close() error { return nil }
