package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tiwariParth/taskboard/internal/storage"
)

const (
	fileExt      = ".json"
	backupMarker = ".backup."
	// Fixed width so ids sort in creation order.
	backupLayout = "20060102150405.000000000"
)

// FileStore implements the storage.Storage interface with one file per key
// inside a data directory.
type FileStore struct {
	dir      string
	mu       sync.RWMutex
	isActive bool
}

// NewFileStore creates a new instance of FileStore rooted at dir.
// An empty dir selects $HOME/.taskboard.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".taskboard")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &FileStore{
		dir:      dir,
		isActive: true,
	}, nil
}

// Dir returns the data directory
func (f *FileStore) Dir() string {
	return f.dir
}

// Close marks the store closed. Writes are synchronous so nothing is pending.
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.isActive {
		return fmt.Errorf("store is already closed")
	}
	f.isActive = false
	return nil
}

// Ping checks that the data directory is still reachable
func (f *FileStore) Ping(ctx context.Context) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.checkActive(); err != nil {
		return err
	}
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageConnection, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", storage.ErrStorageConnection, f.dir)
	}
	return nil
}

// Get reads the file holding key
func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.checkActive(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Set writes value for key. The file is replaced atomically so a reader
// never sees a partial write.
func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkActive(); err != nil {
		return err
	}
	return writeFileAtomic(f.path(key), value)
}

// Delete removes the file holding key
func (f *FileStore) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkActive(); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Backup copies the current value of key to a timestamped file and returns
// the backup ID that Restore accepts.
func (f *FileStore) Backup(ctx context.Context, key string) (string, error) {
	data, err := f.Get(ctx, key)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	backupID := nextBackupID(f.path(key)+backupMarker, time.Now())
	if err := writeFileAtomic(f.path(key)+backupMarker+backupID, data); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	return backupID, nil
}

// Backups lists the backup IDs of key, oldest first
func (f *FileStore) Backups(ctx context.Context, key string) ([]string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	prefix := key + fileExt + backupMarker
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			ids = append(ids, strings.TrimPrefix(e.Name(), prefix))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Restore replaces the value of key with a previous backup
func (f *FileStore) Restore(ctx context.Context, key, backupID string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if err := storage.ValidateKey(backupID); err != nil {
		return fmt.Errorf("invalid backup id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkActive(); err != nil {
		return err
	}

	data, err := os.ReadFile(f.path(key) + backupMarker + backupID)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}
	return writeFileAtomic(f.path(key), data)
}

// Helper functions

// nextBackupID returns the first id at or after now whose backup file does
// not exist yet. Two backups on a coarse clock get distinct, ordered ids.
func nextBackupID(prefix string, now time.Time) string {
	for {
		id := now.Format(backupLayout)
		if _, err := os.Stat(prefix + id); errors.Is(err, os.ErrNotExist) {
			return id
		}
		now = now.Add(time.Nanosecond)
	}
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

func (f *FileStore) checkActive() error {
	if !f.isActive {
		return storage.ErrStorageConnection
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
