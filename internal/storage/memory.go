package storage

import (
	"context"
	"sync"
	"time"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[domain.Role]domain.Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[domain.Role]domain.Snapshot)}
}

// Save implements Snapshotter.
func (m *MemoryStore) Save(_ context.Context, role domain.Role, items []domain.Notification, unread int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[role] = domain.Snapshot{
		Role:    role,
		Items:   append([]domain.Notification(nil), items...),
		Unread:  unread,
		SavedAt: time.Now().UTC(),
	}
	return nil
}

// Load implements Snapshotter.
func (m *MemoryStore) Load(_ context.Context, role domain.Role) (domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[role]
	if !ok {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	snap.Items = append([]domain.Notification(nil), snap.Items...)
	return snap, nil
}

// Clear implements Snapshotter.
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = make(map[domain.Role]domain.Snapshot)
	return nil
}

// Close implements Snapshotter.
func (m *MemoryStore) Close() error { return nil }
