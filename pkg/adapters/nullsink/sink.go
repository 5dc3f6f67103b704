// Package nullsink provides a snapshot sink that discards everything.
package nullsink

import (
	"image"

	"github.com/user/zonecam/pkg/ports"
)

// Sink is used when snapshots are disabled in the configuration.
type Sink struct{}

// New creates a sink that discards snapshots.
func New() *Sink {
	return &Sink{}
}

func (s *Sink) Enabled() bool {
	return false
}

// SaveSnapshot does nothing.
func (s *Sink) SaveSnapshot(path string, img image.Image) error {
	return nil
}

var _ ports.SnapshotSink = (*Sink)(nil)
