package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tiwariParth/taskboard/internal/storage"
)

// MemoryStore implements the storage.Storage interface using in-memory storage
type MemoryStore struct {
	values   map[string][]byte
	quota    int
	mu       sync.RWMutex
	isActive bool
}

// Option configures a MemoryStore
type Option func(*MemoryStore)

// WithQuota limits the total bytes the store will hold. Zero means unlimited.
func WithQuota(bytes int) Option {
	return func(m *MemoryStore) {
		m.quota = bytes
	}
}

// NewMemoryStore creates a new instance of MemoryStore
func NewMemoryStore(opts ...Option) *MemoryStore {
	m := &MemoryStore{
		values:   make(map[string][]byte),
		isActive: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close cleans up resources
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isActive {
		return fmt.Errorf("store is already closed")
	}
	m.isActive = false
	return nil
}

// Ping checks if the store is active
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.checkActive()
}

// Get returns a copy of the value stored under key
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkActive(); err != nil {
		return nil, err
	}

	value, exists := m.values[key]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of value under key
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkActive(); err != nil {
		return err
	}

	if m.quota > 0 {
		used := len(key) + len(value)
		for k, v := range m.values {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used > m.quota {
			return fmt.Errorf("%w: %d of %d bytes", storage.ErrQuotaExceeded, used, m.quota)
		}
	}

	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key from the store
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkActive(); err != nil {
		return err
	}
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) checkActive() error {
	if !m.isActive {
		return storage.ErrStorageConnection
	}
	return nil
}
