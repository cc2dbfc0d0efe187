package testutil

import (
	"context"
	"sync"

	"github.com/tiwariParth/taskboard/internal/storage"
	"github.com/tiwariParth/taskboard/internal/storage/memory"
)

// FaultyStorage wraps an in-memory store and injects errors on demand.
type FaultyStorage struct {
	*memory.MemoryStore

	mu sync.Mutex

	// Error injection for testing
	GetErr  error
	SetErr  error
	PingErr error

	// Sets counts calls to Set, failed ones included.
	Sets int
}

var _ storage.Storage = (*FaultyStorage)(nil)

// NewFaultyStorage returns a FaultyStorage with no faults configured.
func NewFaultyStorage() *FaultyStorage {
	return &FaultyStorage{MemoryStore: memory.NewMemoryStore()}
}

// Get returns GetErr if set.
func (f *FaultyStorage) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	err := f.GetErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.MemoryStore.Get(ctx, key)
}

// Set returns SetErr if set.
func (f *FaultyStorage) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.Sets++
	err := f.SetErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Set(ctx, key, value)
}

// Ping returns PingErr if set.
func (f *FaultyStorage) Ping(ctx context.Context) error {
	f.mu.Lock()
	err := f.PingErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Ping(ctx)
}

// SetFault replaces the Set error under the lock.
func (f *FaultyStorage) SetFault(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetErr = err
}
