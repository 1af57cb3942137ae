// Package storage selects where reconciled notification feeds are persisted
// for offline reads.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/storage/sqlite"
)

const (
	// BackendMemory keeps snapshots for the life of the process only.
	BackendMemory = "memory"
	// BackendSQLite persists snapshots in the state directory.
	BackendSQLite = "sqlite"

	// DBFileName is the SQLite file inside the state directory.
	DBFileName = "snapshots.db"

	// FileModeDir is the permission for the state directory (rwxr-xr-x).
	FileModeDir os.FileMode = 0o755
)

// Snapshotter saves and loads the last reconciled feed per role.
type Snapshotter interface {
	Save(ctx context.Context, role domain.Role, items []domain.Notification, unread int) error
	Load(ctx context.Context, role domain.Role) (domain.Snapshot, error)
	Clear(ctx context.Context) error
	Close() error
}

var _ Snapshotter = (*sqlite.Store)(nil)
var _ Snapshotter = (*MemoryStore)(nil)

// NewForBackend creates the snapshot store for backend. A SQLite store
// that cannot be opened falls back to memory with a warning.
func NewForBackend(backend, stateDir string) (Snapshotter, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		if strings.TrimSpace(stateDir) == "" {
			return nil, fmt.Errorf("storage: state_dir must be set for the %s backend", BackendSQLite)
		}
		if err := os.MkdirAll(stateDir, FileModeDir); err != nil {
			return nil, fmt.Errorf("storage: create state directory: %w", err)
		}
		store, err := sqlite.Open(filepath.Join(stateDir, DBFileName))
		if err != nil {
			colors.Warning(fmt.Sprintf("failed to initialize sqlite backend, falling back to memory: %v", err))
			return NewMemoryStore(), nil
		}
		return store, nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q (want %s or %s)", backend, BackendMemory, BackendSQLite)
	}
}
