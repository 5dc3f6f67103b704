//go:build !withcv

package opencv

import (
	"image"

	"github.com/user/zonecam/pkg/ports"
)

// Opener fails every open without OpenCV.
type Opener struct{}

// Open implements ports.CaptureOpener.
func (Opener) Open(src ports.Source, opts ports.CaptureOptions) (ports.CaptureDevice, error) {
	return nil, ErrOpenCVUnavailable
}

// Available reports whether OpenCV support is compiled in.
func Available() bool { return false }

// TrackerFactories returns no factories without OpenCV.
func TrackerFactories() map[string]ports.TrackerFactory { return nil }

// Window is a placeholder so callers compile without OpenCV.
type Window struct{}

// NewWindow always fails without OpenCV.
func NewWindow(name string) (*Window, error) {
	return nil, ErrOpenCVUnavailable
}

func (w *Window) Show(img *image.RGBA) {}
func (w *Window) PollKey(delayMs int) int { return ports.KeyNone }
func (w *Window) Close() error            { return nil }

// WriterFactory fails every create without OpenCV.
type WriterFactory struct{}

// Create implements ports.VideoWriterFactory.
func (WriterFactory) Create(opts ports.VideoWriterOptions) (ports.VideoWriter, error) {
	return nil, ErrOpenCVUnavailable
}
