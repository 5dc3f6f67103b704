package ports

import (
	"image"
)

// VideoWriter appends frames to an open video container.
type VideoWriter interface {
	// Write appends one frame.
	Write(img *image.RGBA) error

	// Close flushes and finalizes the container.
	Close() error
}

// VideoWriterOptions describes the video to create.
type VideoWriterOptions struct {
	Path   string  // Output file path, the extension selects the container
	FourCC string  // Four-character codec tag (e.g. "I420", "MJPG", "XVID")
	FPS    float64 // Frame rate written into the container
	Width  int
	Height int
}

// VideoWriterFactory creates video writers.
type VideoWriterFactory interface {
	// Create opens a new writer. Called lazily once a frame rate is known.
	Create(opts VideoWriterOptions) (VideoWriter, error)
}

// VideoWriterFactoryFunc adapts a function to VideoWriterFactory.
type VideoWriterFactoryFunc func(opts VideoWriterOptions) (VideoWriter, error)

// Create implements VideoWriterFactory.
func (f VideoWriterFactoryFunc) Create(opts VideoWriterOptions) (VideoWriter, error) {
	return f(opts)
}
