// Package ports defines interfaces for external dependencies.
package ports

import (
	"image"
	"strconv"
)

// CaptureDevice abstracts a video capture handle: a camera, a file or a stream.
type CaptureDevice interface {
	// Grab advances to the next frame without decoding it.
	// Returns false when no frame is available (end of stream, device error, closed).
	Grab() bool

	// Retrieve decodes the most recently grabbed frame.
	// Returns false when there is nothing to decode.
	Retrieve() (*image.RGBA, bool)

	// Width returns the current frame width in pixels.
	Width() int

	// Height returns the current frame height in pixels.
	Height() int

	// SetWidth requests a frame width. Rejections are returned as errors.
	SetWidth(width int) error

	// SetHeight requests a frame height. Rejections are returned as errors.
	SetHeight(height int) error

	// FPS returns the frame rate announced by the device, 0 when unknown.
	FPS() float64

	// OpenSettings opens the backend's settings dialog, when it has one.
	OpenSettings() error

	// IsOpened reports whether the device is open.
	IsOpened() bool

	// Close releases the device.
	Close() error
}

// SourceKind tells how a capture source string is interpreted.
type SourceKind int

const (
	// SourceDevice is a camera selected by index.
	SourceDevice SourceKind = iota
	// SourceFile is a local video file.
	SourceFile
	// SourceURL is a network stream.
	SourceURL
)

// String returns the string representation of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceDevice:
		return "device"
	case SourceFile:
		return "file"
	case SourceURL:
		return "url"
	default:
		return "unknown"
	}
}

// Source identifies where frames come from.
type Source struct {
	Kind   SourceKind
	Device int    // Device index, for SourceDevice
	Path   string // File path or URL
}

// String returns a human readable form of the source.
func (s Source) String() string {
	if s.Kind == SourceDevice {
		return "device " + strconv.Itoa(s.Device)
	}
	return s.Path
}

// CaptureOptions configures how a capture device is opened.
type CaptureOptions struct {
	Width  int     // Requested frame width (0 = backend default)
	Height int     // Requested frame height (0 = backend default)
	FPS    float64 // Frame rate to request/announce for devices (0 = unknown)
}

// CaptureOpener opens capture devices for a source.
type CaptureOpener interface {
	Open(src Source, opts CaptureOptions) (CaptureDevice, error)
}

// CaptureOpenerFunc adapts a function to CaptureOpener.
type CaptureOpenerFunc func(src Source, opts CaptureOptions) (CaptureDevice, error)

// Open implements CaptureOpener.
func (f CaptureOpenerFunc) Open(src Source, opts CaptureOptions) (CaptureDevice, error) {
	return f(src, opts)
}
