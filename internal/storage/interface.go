package storage

import (
	"context"
	"errors"
	"strings"
)

// Common errors that can be returned by any storage implementation
var (
	ErrNotFound          = errors.New("key not found")
	ErrInvalidKey        = errors.New("invalid storage key")
	ErrStorageConnection = errors.New("storage connection error")
	ErrQuotaExceeded     = errors.New("storage quota exceeded")
)

// Storage is a durable key-value store holding one serialized value per key.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound if there is none.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks that the backend is usable.
	Ping(ctx context.Context) error

	// Close releases the backend
	Close() error
}

// ValidateKey rejects keys that no backend can address safely.
func ValidateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return ErrInvalidKey
	}
	return nil
}
