package ports

import (
	"image"
)

// SnapshotSink persists single frames as image files.
type SnapshotSink interface {
	// Enabled returns true if snapshots are persisted.
	Enabled() bool

	// SaveSnapshot writes img to path, encoding from the path extension.
	SaveSnapshot(path string, img image.Image) error
}
