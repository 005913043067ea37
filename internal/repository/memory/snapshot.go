// Package memory holds the latest ingested snapshot. The engine never
// persists punch data; the store only bridges the refresh cycle and the
// request handlers, swapping whole immutable snapshots.
package memory

import (
	"sync"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
)

type SnapshotStore struct {
	mu       sync.RWMutex
	snapshot *punch.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Latest implements punch.SnapshotRepository.
func (s *SnapshotStore) Latest() (*punch.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, punch.ErrSnapshotUnavailable
	}
	return s.snapshot, nil
}

// Replace implements punch.SnapshotRepository.
func (s *SnapshotStore) Replace(snapshot *punch.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}
