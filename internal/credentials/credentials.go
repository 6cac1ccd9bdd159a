// Package credentials persists small secrets, such as the signed-in user
// identifier, across restarts.
package credentials

import (
	"errors"
	"sync"
)

// ErrEmptyKey is returned when a key is blank.
var ErrEmptyKey = errors.New("credential key is empty")

// Store saves, reads and deletes string secrets by key. Read reports
// found=false, without an error, when the key is absent.
type Store interface {
	Save(key, value string) error
	Read(key string) (value string, found bool, err error)
	Delete(key string) error
}

// MemoryStore keeps secrets for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Save(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Read(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Delete is a no-op for absent keys.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
