package app

import (
	"fmt"

	"github.com/tiwariParth/taskboard/internal/config"
	"github.com/tiwariParth/taskboard/internal/storage"
	"github.com/tiwariParth/taskboard/internal/storage/file"
	"github.com/tiwariParth/taskboard/internal/storage/memory"
	"github.com/tiwariParth/taskboard/internal/storage/sqlite"
)

// OpenStorage opens the backend the configuration selects
func OpenStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		fs, err := file.NewFileStore(cfg.StoragePath())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrStorageConnection, err)
		}
		return fs, nil
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.StoragePath())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrStorageConnection, err)
		}
		return db, nil
	case config.BackendMemory:
		return memory.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
