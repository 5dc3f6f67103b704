package mocks

import (
	"image"
	"sync"

	"github.com/user/zonecam/pkg/ports"
)

// SnapshotSink is a mock implementation of ports.SnapshotSink.
type SnapshotSink struct {
	mu sync.RWMutex

	SaveFunc func(path string, img image.Image) error
	Disabled bool

	Saved map[string]image.Image
	Order []string
}

// NewSnapshotSink creates a new mock SnapshotSink.
func NewSnapshotSink() *SnapshotSink {
	return &SnapshotSink{Saved: make(map[string]image.Image)}
}

func (m *SnapshotSink) Enabled() bool {
	return !m.Disabled
}

func (m *SnapshotSink) SaveSnapshot(path string, img image.Image) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(path, img); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved[path] = img
	m.Order = append(m.Order, path)
	return nil
}

// Count returns the number of saved snapshots.
func (m *SnapshotSink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Order)
}

var _ ports.SnapshotSink = (*SnapshotSink)(nil)
