package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tiwariParth/taskboard/internal/storage"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if _, err := m.Get(ctx, "tasks"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.Set(ctx, "tasks", []byte("[]")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := m.Get(ctx, "tasks")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("expected %q, got %q", "[]", got)
	}

	// Returned slices must not alias the stored value.
	got[0] = 'x'
	again, _ := m.Get(ctx, "tasks")
	if string(again) != "[]" {
		t.Errorf("stored value was mutated through Get result: %q", again)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_ = m.Set(ctx, "tasks", []byte("[]"))
	if err := m.Delete(ctx, "tasks"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := m.Delete(ctx, "tasks"); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
	if _, err := m.Get(ctx, "tasks"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreQuota(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(WithQuota(16))

	if err := m.Set(ctx, "tasks", []byte("0123456789")); err != nil {
		t.Fatalf("Set within quota failed: %v", err)
	}
	err := m.Set(ctx, "tasks", []byte("0123456789abcdef"))
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	got, _ := m.Get(ctx, "tasks")
	if string(got) != "0123456789" {
		t.Errorf("failed Set should keep previous value, got %q", got)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := m.Ping(ctx); !errors.Is(err, storage.ErrStorageConnection) {
		t.Errorf("expected ErrStorageConnection, got %v", err)
	}
	if err := m.Close(); err == nil {
		t.Error("expected error closing twice")
	}
}

func TestMemoryStoreInvalidKey(t *testing.T) {
	m := NewMemoryStore()
	if err := m.Set(context.Background(), "a/b", nil); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}
