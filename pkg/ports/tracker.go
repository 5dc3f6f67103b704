package ports

import (
	"image"

	"github.com/user/zonecam/pkg/pipeline"
)

// Tracker is a single-object tracking algorithm.
type Tracker interface {
	// Init starts tracking the region box of frame.
	// Returns false when the algorithm cannot lock on the region.
	Init(frame *image.RGBA, box pipeline.BBox) bool

	// Update locates the tracked region in a new frame.
	// Returns false when the target was lost in this frame.
	Update(frame *image.RGBA) (pipeline.BBox, bool)

	// Close releases algorithm resources.
	Close() error
}

// TrackerFactory creates a fresh tracker instance.
type TrackerFactory func() (Tracker, error)
